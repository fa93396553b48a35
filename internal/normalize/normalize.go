// Package normalize converts raw extracted offer text into typed deposit
// records. Unparseable fields are marked unavailable rather than dropping
// the record, so every configured site stays traceable in the output.
package normalize

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"deposit-radar/pkg/models"
)

var (
	rangeRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*[-–—]\s*(\d+(?:[.,]\d+)?)\s*%`)
	pctRe   = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*%`)

	monthsRe = regexp.MustCompile(`(?i)(\d+)\s*(months?|mo\b|oy\b|ой\b|мес\w*)`)
	yearsRe  = regexp.MustCompile(`(?i)(\d+)\s*(years?|yil\b|год\w*|лет)`)
	daysRe   = regexp.MustCompile(`(?i)(\d+)\s*(days?|kun\b|дн\w*)`)
)

// ParsePercent parses rate text into percent points: "16.5%" and "16,5"
// both yield 16.5. A bare fraction like "0.165" is scaled up. A range
// like "15-17%" yields its minimum; quoting the low end is the
// conservative reading and keeps reruns stable.
func ParsePercent(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	if m := rangeRe.FindStringSubmatch(s); m != nil {
		lo, err1 := parseNum(m[1])
		hi, err2 := parseNum(m[2])
		if err1 == nil && err2 == nil {
			if hi < lo {
				lo = hi
			}
			return lo, true
		}
	}

	if m := pctRe.FindStringSubmatch(s); m != nil {
		v, err := parseNum(m[1])
		if err != nil {
			return 0, false
		}
		return v, true
	}

	v, err := parseNum(s)
	if err != nil {
		return 0, false
	}
	if v <= 1.0 {
		return v * 100, true
	}
	return v, true
}

func parseNum(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

// ParseTermMonths maps a term description to whole months. Month, year
// and day vocabularies cover the languages the bank sites publish in.
func ParseTermMonths(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	if m := monthsRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return n, true
		}
	}
	if m := yearsRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return n * 12, true
		}
	}
	if m := daysRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			months := (n + 15) / 30
			if months == 0 {
				months = 1
			}
			return months, true
		}
	}

	return 0, false
}

// CleanConditions trims and collapses whitespace in free-form conditions
// text, bounding it to a spreadsheet-friendly length.
func CleanConditions(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	r := []rune(s)
	if len(r) > 200 {
		s = string(r[:200])
	}
	return s
}

// Offer converts a single raw offer into a deposit record.
func Offer(raw models.RawOffer) models.DepositRecord {
	rec := models.DepositRecord{
		Bank:       raw.Bank,
		Site:       raw.Site,
		Name:       raw.Name,
		Conditions: CleanConditions(raw.Conditions),
		Currency:   "USD",
		SourceURL:  raw.SourceURL,
	}

	if rate, ok := ParsePercent(raw.RateText); ok && rate >= 0 {
		rec.Rate = rate
		rec.RateAvailable = true
	}

	if months, ok := ParseTermMonths(raw.TermText); ok {
		rec.TermMonths = months
	} else if months, ok := ParseTermMonths(raw.Conditions); ok {
		rec.TermMonths = months
	}

	return rec
}

// Placeholder produces the row that keeps a site visible in the main
// report when scraping it yielded no offers.
func Placeholder(inputURL, domain string) models.DepositRecord {
	bank := domain
	if bank == "" {
		bank = inputURL
	}
	return models.DepositRecord{
		Bank:      bank,
		Site:      domain,
		Name:      "-",
		Currency:  "USD",
		SourceURL: inputURL,
	}
}

// Records normalizes all offers and sorts them for the reports: by bank,
// then rate descending, then name. Unavailable rates sort last within a
// bank.
func Records(offers []models.RawOffer) []models.DepositRecord {
	records := make([]models.DepositRecord, 0, len(offers))
	for _, o := range offers {
		records = append(records, Offer(o))
	}
	Sort(records)
	return records
}

// Sort orders records in place using the report ordering.
func Sort(records []models.DepositRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Bank != b.Bank {
			return a.Bank < b.Bank
		}
		if a.RateAvailable != b.RateAvailable {
			return a.RateAvailable
		}
		if a.Rate != b.Rate {
			return a.Rate > b.Rate
		}
		return a.Name < b.Name
	})
}
