package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"deposit-radar/internal/scraper"
	"deposit-radar/pkg/models"
)

// xbAPIURL is Xalq banki's deposit table on the national open-data
// portal. The bank's own site renders client-side, the portal does not.
const xbAPIURL = "https://data.egov.uz/apiData/MainData/GetByFile" +
	"?fileType=1&id=61121d80db32b99538e0833c&lang=1&tableType=2"

// XBOpenDataRule reads Xalq banki deposits from the open-data API
// instead of scraping the bank's page markup.
type XBOpenDataRule struct{}

func (r *XBOpenDataRule) Extract(ctx context.Context, fetcher scraper.Fetcher, page *scraper.Page) ([]models.RawOffer, error) {
	apiPage, err := fetcher.Fetch(ctx, xbAPIURL)
	if err != nil {
		return nil, fmt.Errorf("xb open data: %w", err)
	}
	if !apiPage.OK() {
		return nil, &scraper.StatusError{URL: xbAPIURL, StatusCode: apiPage.StatusCode}
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(apiPage.Body), &items); err != nil {
		return nil, fmt.Errorf("xb open data: %w", err)
	}

	seen := make(map[string]bool)
	var out []models.RawOffer

	for _, item := range items {
		name := strings.TrimSpace(stringField(item, "Omonat nomi"))
		rateRaw := strings.TrimSpace(stringField(item, "Yillik foiz"))
		initial := strings.TrimSpace(stringField(item, "Boshlang'ich badal miqdori"))
		other := strings.TrimSpace(stringField(item, "Boshqa shartlar"))
		term := strings.TrimSpace(stringField(item, "Omonat muddati"))
		blob := strings.Join([]string{name, rateRaw, initial, other}, " ")

		if name == "" || !isUSDContext(blob) {
			continue
		}

		rate, ok := pickRateText(rateRaw)
		if !ok {
			continue
		}

		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, models.RawOffer{
			Bank:       "Xalq banki",
			Site:       "xb.uz",
			Name:       name,
			RateText:   rate,
			TermText:   term,
			Conditions: strings.TrimSpace(initial + " " + other),
			SourceURL:  page.URL,
		})
	}

	return out, nil
}

func stringField(item map[string]any, key string) string {
	switch v := item[key].(type) {
	case string:
		return v
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
	default:
		return ""
	}
}
