package extraction

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"deposit-radar/internal/normalize"
)

// maxUSDRate is the plausibility cap, in percent points. USD deposit
// rates above it are parser noise (pixel sizes, years, sums).
const maxUSDRate = 35.0

var usdPositive = []string{"usd", "us dollar", "dollar", "aqsh dollar", "aqsh doll", "$", "доллар", "долл"}

var usdNegative = []string{"uzs", "so'm", "som", "сум", "sum", "сўм"}

var depositLinkHints = []string{
	"deposit", "deposits", "omonat", "omonatlar", "vklad", "vklady", "депозит", "вклад",
	"savings", "saving", "term-deposit", "time-deposit",
}

var rateHints = []string{"rate", "annual", "stavka", "foiz", "процент", "yillik", "годовых", "%"}

var (
	pctRe   = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*(?:[-–—]\s*\d+(?:[.,]\d+)?\s*)?%`)
	numRe   = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	noiseRe = regexp.MustCompile(`(?i)(\{|\}|@font-face|/\*|\*/|px|rem|vh|vw|var\(|normalize\.css)`)
)

func normSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// isNoise flags text fragments that are obviously CSS or markup debris.
func isNoise(s string) bool {
	t := normSpace(s)
	if len(t) < 2 {
		return true
	}
	return noiseRe.MatchString(t)
}

// isUSDContext reports whether the text is talking about USD. Text that
// only mentions the local currency is rejected outright.
func isUSDContext(text string) bool {
	t := strings.ToLower(text)
	if containsAny(t, usdNegative) && !containsAny(t, usdPositive) {
		return false
	}
	return containsAny(t, usdPositive)
}

func containsAny(t string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(t, tok) {
			return true
		}
	}
	return false
}

// pageForcedUSD reports whether the page as a whole is a USD view, e.g.
// a ?currency=usd filter, so individual rows need no currency marker.
func pageForcedUSD(pageURL, pageText string) bool {
	u := strings.ToLower(pageURL)
	if strings.Contains(u, "currency=usd") || strings.Contains(u, "valyuta=usd") || strings.Contains(u, "usd") {
		return true
	}

	if parsed, err := url.Parse(pageURL); err == nil {
		for k, vals := range parsed.Query() {
			lk := strings.ToLower(k)
			if lk != "currency" && lk != "valyuta" {
				continue
			}
			for _, v := range vals {
				if strings.EqualFold(v, "usd") {
					return true
				}
			}
		}
	}

	t := strings.ToLower(pageText)
	if strings.Contains(" "+t+" ", " usd ") && !containsAny(t, usdNegative) {
		return true
	}
	return false
}

// DomainOf returns the lowercased host of a URL without a leading www.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func sameDomain(a, b string) bool {
	return DomainOf(a) == DomainOf(b)
}

// pickRateText finds the first plausible rate mention in a text fragment
// and returns it verbatim. Explicit percent values win; otherwise the
// first few bare numbers are tried against the plausibility cap.
func pickRateText(text string) (string, bool) {
	t := normSpace(text)
	if t == "" {
		return "", false
	}

	if m := pctRe.FindString(t); m != "" {
		if v, ok := normalize.ParsePercent(m); ok && v > 0 && v <= maxUSDRate {
			return m, true
		}
	}

	nums := numRe.FindAllString(t, 4)
	for _, raw := range nums {
		if v, ok := normalize.ParsePercent(raw); ok && v > 0 && v <= maxUSDRate {
			return raw, true
		}
	}

	return "", false
}
