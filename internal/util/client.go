package util

import (
	"net/http"
	"time"

	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/sources"
)

// maxRedirects caps redirect chains followed by source requests
const maxRedirects = 3

// NewHTTPClient builds the client shared by probes, citation fetches and search calls.
// Per-request deadlines are applied by callers through the request context.
func NewHTTPClient(cfg model.HTTPConfig) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
	transport.MaxIdleConnsPerHost = 4
	transport.IdleConnTimeout = 30 * time.Second

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Hand the redirect back instead of requesting a Wikipedia page
			if len(via) >= maxRedirects || sources.IsWikipediaHost(req.URL.Hostname()) {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}
