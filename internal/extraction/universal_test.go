package extraction

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deposit-radar/internal/scraper"
	"deposit-radar/pkg/models"
)

// fakeFetcher serves pages from memory for rule tests.
type fakeFetcher struct {
	pages map[string]*scraper.Page
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*scraper.Page, error) {
	p, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("get %s: no such page", url)
	}
	return p, nil
}

func page(url, body string) *scraper.Page {
	return &scraper.Page{
		URL:        url,
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body:       body,
	}
}

const tablePage = `<html><head><title>Demo Bank — Deposits</title></head><body>
<h1>Demo Bank</h1>
<table>
<tr><th>Deposit</th><th>Currency</th><th>Annual rate</th></tr>
<tr><td>Premium</td><td>USD</td><td>16.5% — 12 months</td></tr>
<tr><td>Lokal</td><td>UZS</td><td>21%</td></tr>
</table>
</body></html>`

func TestUniversalRuleTables(t *testing.T) {
	p := page("https://demo-bank.uz/deposits", tablePage)
	offers, err := (&UniversalRule{}).Extract(context.Background(), &fakeFetcher{}, p)
	require.NoError(t, err)
	require.NotEmpty(t, offers)

	var premium *models.RawOffer
	for i := range offers {
		if offers[i].Name == "Premium" {
			premium = &offers[i]
		}
		assert.NotContains(t, offers[i].Conditions, "Lokal", "UZS-only rows must be dropped")
	}

	require.NotNil(t, premium, "offers: %+v", offers)
	assert.Equal(t, "Demo Bank", premium.Bank)
	assert.Equal(t, "demo-bank.uz", premium.Site)
	assert.Equal(t, "16.5%", premium.RateText)
	assert.Contains(t, premium.TermText, "12 months")
}

func TestUniversalRuleBlocks(t *testing.T) {
	body := `<html><head><title>Block Bank</title></head><body>
<section><h3>Dollar saver</h3><p>Annual rate 7% in USD, 6 months</p></section>
<section><h3>Subscribe</h3><p>Get our newsletter about USD rates, 5% off</p></section>
</body></html>`

	p := page("https://block-bank.uz/", body)
	offers, err := (&UniversalRule{}).Extract(context.Background(), &fakeFetcher{}, p)
	require.NoError(t, err)
	require.NotEmpty(t, offers)

	names := make([]string, 0, len(offers))
	for _, o := range offers {
		names = append(names, o.Name)
	}
	assert.Contains(t, names, "Dollar saver")
	assert.NotContains(t, names, "Subscribe")
}

func TestUniversalRuleImplausibleRates(t *testing.T) {
	body := `<html><body><h1>Noise Bank</h1>
<table>
<tr><th>Deposit</th><th>Rate</th></tr>
<tr><td>Impossible USD</td><td>85%</td></tr>
</table>
</body></html>`

	offers, err := (&UniversalRule{}).Extract(context.Background(), &fakeFetcher{}, page("https://noise-bank.uz/", body))
	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestUniversalRuleFollowsDepositLinks(t *testing.T) {
	home := `<html><head><title>Link Bank</title></head><body>
<h1>Link Bank</h1>
<a href="/deposits">Omonatlar</a>
<a href="https://elsewhere.example/deposits">other bank</a>
</body></html>`

	fetcher := &fakeFetcher{pages: map[string]*scraper.Page{
		"https://link-bank.uz/deposits": page("https://link-bank.uz/deposits", tablePage),
	}}

	offers, err := (&UniversalRule{}).Extract(context.Background(), fetcher, page("https://link-bank.uz/", home))
	require.NoError(t, err)
	require.NotEmpty(t, offers)
	assert.Equal(t, "https://link-bank.uz/deposits", offers[0].SourceURL)
}

func TestDedup(t *testing.T) {
	offers := []models.RawOffer{
		{Site: "a.uz", Name: "Premium", RateText: "16.5%"},
		{Site: "a.uz", Name: " premium ", RateText: "16.5%"},
		{Site: "a.uz", Name: "Premium", RateText: "7%"},
	}
	assert.Len(t, Dedup(offers), 2)
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "demo-bank.uz", DomainOf("https://www.demo-bank.uz/deposits?currency=usd"))
	assert.Equal(t, "demo-bank.uz", DomainOf("http://demo-bank.uz"))
	assert.Equal(t, "", DomainOf("://bad"))
}

func TestRuleFor(t *testing.T) {
	assert.IsType(t, &XBOpenDataRule{}, RuleFor("xb.uz"))
	assert.IsType(t, &XBOpenDataRule{}, RuleFor("old.xb.uz"))
	assert.IsType(t, &UniversalRule{}, RuleFor("demo-bank.uz"))
}
