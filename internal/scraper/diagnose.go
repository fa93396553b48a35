package scraper

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	antibotCookieRe = regexp.MustCompile(`(?i)(cf_clearance|__cf_bm|_abck|bm_sz|ak_bmsc)`)
	antibotBodyRe   = regexp.MustCompile(`(?i)(captcha|hcaptcha|recaptcha|checking your browser|just a moment|access denied|request blocked|cf-challenge|challenge-platform|enable javascript|javascript required)`)
	jsShellRe       = regexp.MustCompile(`(?i)(<div[^>]+id=['"]app['"][^>]*>|<div[^>]+id=['"]root['"][^>]*>)`)
)

// LooksJSEmpty reports whether the markup is too thin to contain deposit
// data, or is a single-page-app shell with no rates rendered server-side.
func LooksJSEmpty(html string) bool {
	t := strings.TrimSpace(html)
	if len(t) < 1500 {
		return true
	}
	if jsShellRe.MatchString(t) && !strings.Contains(t, "%") && !strings.Contains(strings.ToLower(t), "usd") {
		return true
	}
	return false
}

// Diagnose inspects a fetched page for WAF and antibot markers and
// returns a comma-joined signal string for the diagnostics output.
func Diagnose(p *Page) string {
	var signals []string

	switch p.StatusCode {
	case 401, 403, 429, 503:
		signals = append(signals, fmt.Sprintf("status=%d", p.StatusCode))
	}

	if p.Header != nil {
		server := strings.ToLower(p.Header.Get("Server"))
		if p.Header.Get("Cf-Ray") != "" || strings.Contains(server, "cloudflare") {
			signals = append(signals, "cloudflare")
		}
		if p.Header.Get("X-Sucuri-Id") != "" || p.Header.Get("X-Sucuri-Cache") != "" {
			signals = append(signals, "sucuri")
		}
		if antibotCookieRe.MatchString(strings.Join(p.Header.Values("Set-Cookie"), ";")) {
			signals = append(signals, "antibot_cookie")
		}
	}

	body := p.Body
	if len(body) > 20000 {
		body = body[:20000]
	}
	if antibotBodyRe.MatchString(body) {
		signals = append(signals, "antibot_page")
	}

	if p.StatusCode == 200 && LooksJSEmpty(p.Body) {
		signals = append(signals, "thin_html_or_js_shell")
	}

	return strings.Join(signals, ",")
}

// IsHardBlock decides whether a response is not worth parsing: an
// outright denial status, or a WAF sitting in front of an antibot
// challenge. Soft signals alone still get a parse attempt.
func IsHardBlock(statusCode int, signals string) bool {
	switch statusCode {
	case 401, 403, 429, 503:
		return true
	}

	s := strings.ToLower(signals)
	hasWAF := strings.Contains(s, "cloudflare") || strings.Contains(s, "sucuri")
	hasAntibot := strings.Contains(s, "antibot_cookie") || strings.Contains(s, "antibot_page")

	return hasWAF && hasAntibot
}
