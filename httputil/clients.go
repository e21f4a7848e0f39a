package httputil

import (
	"net/http"
	"net/url"
	"time"

	"watchmarket/config"
)

// Clients splits HTTP traffic in two: marketplace reachability checks go
// through the scraping client (optionally proxied, redirects suppressed so
// delist redirects stay observable; the browser session shares the same
// proxy), token and API calls go direct.
type Clients struct {
	Scraping *http.Client
	API      *http.Client
}

func NewClients(proxyCfg *config.ProxyConfig) *Clients {
	transport := &http.Transport{}
	if proxyCfg.URL != "" {
		if proxyURL, err := url.Parse(proxyCfg.URL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	scraping := &http.Client{
		Timeout:   20 * time.Second,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &Clients{
		Scraping: scraping,
		API:      &http.Client{Timeout: 30 * time.Second},
	}
}
