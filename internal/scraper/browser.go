package scraper

import (
	"context"
	"fmt"
	"net/http"

	"github.com/chromedp/chromedp"

	"deposit-radar/internal/config"
)

// BrowserFetcher renders pages in a headless browser. It is used for
// sites that serve a JS shell and only draw their deposit tables
// client-side.
type BrowserFetcher struct {
	Config *config.AppConfig
}

// NewBrowserFetcher creates a new browser fetcher
func NewBrowserFetcher(cfg *config.AppConfig) *BrowserFetcher {
	return &BrowserFetcher{
		Config: cfg,
	}
}

// Fetch navigates to the URL, waits for client-side rendering, and
// returns the resulting document. The page carries no headers and
// reports a 200 status; a navigation failure is returned as an error.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Config.HTTP.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.Config.Browser.Headless),
		chromedp.UserAgent(f.Config.Browser.UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(f.Config.Browser.WaitTime),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", url, err)
	}

	return &Page{
		URL:        url,
		StatusCode: http.StatusOK,
		Body:       html,
	}, nil
}
