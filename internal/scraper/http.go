package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"deposit-radar/internal/config"
)

// HTTPFetcher implements plain HTTP fetching
type HTTPFetcher struct {
	Config *config.AppConfig
	Client *resty.Client
	Proxy  *ProxyManager
}

// NewHTTPFetcher creates a new HTTP fetcher
func NewHTTPFetcher(cfg *config.AppConfig) *HTTPFetcher {
	client := resty.New().
		SetTimeout(cfg.HTTP.Timeout).
		SetHeaders(map[string]string{
			"User-Agent":      cfg.HTTP.UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": cfg.HTTP.AcceptLanguage,
			"Connection":      "keep-alive",
		})

	proxies := NewProxyManager(&cfg.Proxies)
	if p := proxies.Next(); p != "" {
		client.SetProxy(p)
	}

	return &HTTPFetcher{
		Config: cfg,
		Client: client,
		Proxy:  proxies,
	}
}

// Fetch issues a GET and returns the page with its body transcoded to
// UTF-8. Redirects are followed. A non-2xx response is not an error here;
// callers inspect Page.StatusCode so blocked responses can be diagnosed.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	if f.Config.Proxies.Enabled && f.Config.Proxies.Rotate {
		if p := f.Proxy.Next(); p != "" {
			f.Client.SetProxy(p)
		}
	}

	resp, err := f.Client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}

	body, err := decodeBody(resp.Body(), resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}

	return &Page{
		URL:        url,
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       body,
	}, nil
}

// decodeBody converts a response body to UTF-8 using the declared or
// sniffed charset. Several of the bank sites still serve windows-1251.
func decodeBody(raw []byte, contentType string) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	head := raw
	if len(head) > 1024 {
		head = head[:1024]
	}

	e, _, _ := charset.DetermineEncoding(head, contentType)
	if e == nil {
		e = unicode.UTF8
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), e.NewDecoder()))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
