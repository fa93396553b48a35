// Package extraction turns fetched bank pages into raw deposit offers.
// Extraction rules are keyed by registrable domain so a bank with an odd
// page structure (or a usable open-data API) gets its own rule while
// everything else goes through the universal heuristics.
package extraction

import (
	"context"
	"strings"

	"deposit-radar/internal/scraper"
	"deposit-radar/pkg/models"
)

// Rule extracts deposit offers from a fetched page. Rules may use the
// fetcher to follow same-domain links or call site APIs.
type Rule interface {
	Extract(ctx context.Context, fetcher scraper.Fetcher, page *scraper.Page) ([]models.RawOffer, error)
}

// rules maps domain suffixes to site-specific rules. Domains without an
// entry fall back to the universal rule.
var rules = map[string]Rule{
	"xb.uz": &XBOpenDataRule{},
}

// RuleFor returns the extraction rule for a domain.
func RuleFor(domain string) Rule {
	for suffix, rule := range rules {
		if domain == suffix || strings.HasSuffix(domain, "."+suffix) {
			return rule
		}
	}
	return &UniversalRule{}
}

// Dedup drops offers that repeat the same (site, name, rate text) tuple.
// The depth-1 link follow routinely lands on the same table twice.
func Dedup(offers []models.RawOffer) []models.RawOffer {
	type key struct {
		site, name, rate string
	}
	seen := make(map[key]bool, len(offers))
	out := make([]models.RawOffer, 0, len(offers))
	for _, o := range offers {
		k := key{o.Site, strings.ToLower(strings.TrimSpace(o.Name)), o.RateText}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, o)
	}
	return out
}
