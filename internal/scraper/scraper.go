package scraper

import (
	"context"
	"fmt"
	"net/http"

	"deposit-radar/internal/config"
)

// Page is the outcome of fetching a single URL. Body is the page markup
// transcoded to UTF-8. Header is nil for browser-rendered pages, which
// have no single HTTP response.
type Page struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       string
}

// OK reports whether the response carried a 2xx status.
func (p *Page) OK() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}

// StatusError reports a non-2xx response for a URL whose body was still
// received.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.URL, e.StatusCode)
}

// Fetcher defines the interface for retrieving page content. A transport
// failure returns a nil Page and an error; an HTTP error status returns
// the Page so the response can still be diagnosed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// New creates a fetcher based on the configuration. When browser
// rendering is enabled the HTTP fetcher is still used first; the browser
// only re-renders pages that look like JS shells (see pipeline).
func New(cfg *config.AppConfig) Fetcher {
	return NewHTTPFetcher(cfg)
}
