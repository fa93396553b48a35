package scraper

import (
	"math/rand"
	"net/url"

	"deposit-radar/internal/config"
)

// ProxyManager handles proxy selection and rotation
type ProxyManager struct {
	Config *config.ProxyConfig
}

// NewProxyManager creates a new proxy manager
func NewProxyManager(cfg *config.ProxyConfig) *ProxyManager {
	return &ProxyManager{
		Config: cfg,
	}
}

// Next returns the proxy URL to use for the next request, with
// credentials applied, or "" when proxying is disabled.
func (m *ProxyManager) Next() string {
	if !m.Config.Enabled || len(m.Config.List) == 0 {
		return ""
	}

	proxyStr := m.Config.List[0]
	if m.Config.Rotate && len(m.Config.List) > 1 {
		proxyStr = m.Config.List[rand.Intn(len(m.Config.List))]
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return ""
	}

	if m.Config.Auth.Username != "" && m.Config.Auth.Password != "" {
		proxyURL.User = url.UserPassword(m.Config.Auth.Username, m.Config.Auth.Password)
	}

	return proxyURL.String()
}
