package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"deposit-radar/internal/scraper"
	"deposit-radar/pkg/models"
)

const maxJSONEndpoints = 40

var jsonURLRe = regexp.MustCompile(`(?i)https?://[^\s"'<>]+(?:\.json|/api/[^\s"'<>]+|get_list_pages/[^\s"'<>]+)`)

// extractFromJSONEndpoints is the last resort for pages whose markup
// yielded nothing: find same-domain JSON/API URLs referenced by the page
// and walk whatever they return for USD deposit entries.
func extractFromJSONEndpoints(ctx context.Context, fetcher scraper.Fetcher, pageURL, bank, html string) []models.RawOffer {
	var out []models.RawOffer

	for _, endpoint := range discoverJSONURLs(pageURL, html) {
		page, err := fetcher.Fetch(ctx, endpoint)
		if err != nil || !page.OK() {
			continue
		}

		contentType := ""
		if page.Header != nil {
			contentType = strings.ToLower(page.Header.Get("Content-Type"))
		}
		body := strings.TrimSpace(page.Body)
		if !strings.Contains(contentType, "json") &&
			!strings.HasPrefix(body, "{") && !strings.HasPrefix(body, "[") {
			continue
		}

		var data any
		if err := json.Unmarshal([]byte(body), &data); err != nil {
			continue
		}
		walkJSON(data, endpoint, bank, &out)
	}

	return out
}

// discoverJSONURLs finds candidate API endpoints both in the raw markup
// (script bodies included) and in anchor hrefs.
func discoverJSONURLs(baseURL, html string) []string {
	found := make(map[string]bool)

	for _, m := range jsonURLRe.FindAllString(html, -1) {
		found[m] = true
	}

	base, baseErr := url.Parse(baseURL)
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil && baseErr == nil {
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href := strings.TrimSpace(a.AttrOr("href", ""))
			if href == "" {
				return
			}
			h := strings.ToLower(href)
			if !strings.Contains(h, "/api/") && !strings.Contains(h, "get_list_pages") && !strings.HasSuffix(h, ".json") {
				return
			}
			if ref, err := url.Parse(href); err == nil {
				found[base.ResolveReference(ref).String()] = true
			}
		})
	}

	var out []string
	for u := range found {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			continue
		}
		if !sameDomain(baseURL, u) {
			continue
		}
		out = append(out, u)
		if len(out) >= maxJSONEndpoints {
			break
		}
	}
	return out
}

// walkJSON recursively scans decoded JSON for objects that look like USD
// deposit entries: an explicit currency field or USD markers in the
// object's scalar values, plus a plausible rate.
func walkJSON(obj any, sourceURL, bank string, out *[]models.RawOffer) {
	switch v := obj.(type) {
	case map[string]any:
		var scalars []string
		for _, val := range v {
			switch s := val.(type) {
			case string:
				scalars = append(scalars, normSpace(s))
			case float64:
				scalars = append(scalars, strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", s), "0"), "."))
			}
		}
		text := strings.Join(scalars, " ")

		currency := ""
		for _, k := range []string{"currency", "valyuta", "валюта"} {
			if s, ok := v[k].(string); ok {
				currency = strings.ToUpper(strings.TrimSpace(s))
				break
			}
		}

		if currency == "USD" || (isUSDContext(text) && strings.Contains(strings.ToLower(text), "usd")) {
			rateRaw := ""
			for _, k := range []string{"percent", "rate", "stavka", "foiz"} {
				switch rv := v[k].(type) {
				case string:
					rateRaw = rv
				case float64:
					rateRaw = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", rv), "0"), ".")
				}
				if rateRaw != "" {
					break
				}
			}

			if rate, ok := pickRateText(firstNonEmpty(rateRaw, text)); ok {
				name := ""
				for _, k := range []string{"name", "title", "deposit", "product", "caption"} {
					if s, ok := v[k].(string); ok && normSpace(s) != "" {
						name = normSpace(s)
						break
					}
				}
				if name == "" {
					name = bank
				}

				*out = append(*out, models.RawOffer{
					Bank:       bank,
					Site:       DomainOf(sourceURL),
					Name:       truncate(name, 120),
					RateText:   rate,
					TermText:   text,
					Conditions: text,
					SourceURL:  sourceURL,
				})
			}
		}

		for _, val := range v {
			walkJSON(val, sourceURL, bank, out)
		}

	case []any:
		for _, item := range v {
			walkJSON(item, sourceURL, bank, out)
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
