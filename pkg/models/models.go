package models

import (
	"time"
)

// Result codes recorded per site in the diagnostics output.
const (
	ResultOK                 = "OK"
	ResultBlocked            = "BLOCKED"
	ResultError              = "ERROR"
	ResultJSRenderRequired   = "JS_RENDER_REQUIRED"
	ResultNoUSDMatch         = "NO_USD_MATCH"
	ResultNoRatesFound       = "NO_RATES_FOUND"
	ResultNoMatchingDeposits = "NO_MATCHING_DEPOSITS"
)

// RawOffer represents a deposit offer as extracted from a page, before
// normalization. Text fields carry whatever the site published.
type RawOffer struct {
	Bank       string `json:"bank"`
	Site       string `json:"site"`
	Name       string `json:"name"`
	RateText   string `json:"rate_text"`
	TermText   string `json:"term_text,omitempty"`
	Conditions string `json:"conditions,omitempty"`
	SourceURL  string `json:"source_url"`
}

// DepositRecord is the normalized output row. Rate is in percent points
// (16.5 means 16.5% per annum) and is only meaningful when RateAvailable
// is true. TermMonths is 0 when the term could not be determined.
type DepositRecord struct {
	Bank          string  `json:"bank"`
	Site          string  `json:"site"`
	Name          string  `json:"name"`
	Rate          float64 `json:"rate"`
	RateAvailable bool    `json:"rate_available"`
	TermMonths    int     `json:"term_months"`
	Conditions    string  `json:"conditions,omitempty"`
	Currency      string  `json:"currency"`
	SourceURL     string  `json:"source_url"`
}

// SiteStatus is the per-URL diagnostic entry. Exactly one is produced for
// every configured URL, whatever the scrape outcome.
type SiteStatus struct {
	InputURL   string    `json:"input_url"`
	Domain     string    `json:"domain"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Signals    string    `json:"signals,omitempty"`
	Result     string    `json:"result"`
	Note       string    `json:"note,omitempty"`
	RowsFound  int       `json:"rows_found"`
	Timestamp  time.Time `json:"timestamp"`
}

// Success reports whether the site produced at least one offer.
func (s SiteStatus) Success() bool {
	return s.Result == ResultOK
}
