package search

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/ppiankov/scaleproof/internal/citation"
	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/sources"
	"github.com/ppiankov/scaleproof/internal/worker"
	"github.com/tidwall/gjson"
)

// DefaultResultPath matches the hit list of Google Custom Search style responses
const DefaultResultPath = "items"

// maxSearchBody caps search responses
const maxSearchBody = 1 << 20

// HTTPProvider queries a JSON search endpoint restricted to one site per call.
// Endpoint is a URL template with {query} and {site} placeholders.
type HTTPProvider struct {
	client     *http.Client
	endpoint   string
	resultPath string
	apiKey     string
	userAgent  string
	limiter    *worker.Limiter
}

// NewHTTPProvider creates a search provider for cfg.Endpoint
func NewHTTPProvider(client *http.Client, cfg model.SearchConfig, userAgent string, limiter *worker.Limiter) (*HTTPProvider, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("search endpoint is required for the http provider")
	}
	if !strings.Contains(cfg.Endpoint, "{query}") {
		return nil, fmt.Errorf("search endpoint must contain a {query} placeholder")
	}
	if client == nil {
		client = http.DefaultClient
	}
	resultPath := cfg.ResultPath
	if resultPath == "" {
		resultPath = DefaultResultPath
	}
	return &HTTPProvider{
		client:     client,
		endpoint:   cfg.Endpoint,
		resultPath: resultPath,
		apiKey:     cfg.APIKey,
		userAgent:  userAgent,
		limiter:    limiter,
	}, nil
}

// Name returns the provider name
func (p *HTTPProvider) Name() string {
	return "http"
}

// Search runs q against the endpoint and looks for hits on the source's domain
func (p *HTTPProvider) Search(ctx context.Context, q Query, source model.ApprovedSource) (Result, error) {
	result := Result{Source: source.Hostname, Query: q.Text}

	body, err := p.get(ctx, p.buildURL(q.Text, source.Hostname))
	if err != nil {
		return result, err
	}

	hits := gjson.GetBytes(body, p.resultPath)
	if !hits.Exists() {
		// Providers omit the list entirely when nothing matched
		return result, nil
	}
	if !hits.IsArray() {
		return result, fmt.Errorf("result path %q is not an array", p.resultPath)
	}

	name := citation.Normalize(q.ScaleName)
	nameMatch := false
	hits.ForEach(func(_, hit gjson.Result) bool {
		link := hit.Get("link").String()
		if link == "" {
			link = hit.Get("url").String()
		}
		host, err := sources.Hostname(link)
		if err != nil || !sources.MatchesDomain(host, source.Hostname) {
			return true
		}

		if !result.Found {
			result.Found = true
			result.URL = link
		}
		text := " " + citation.Normalize(hit.Get("title").String()+" "+hit.Get("snippet").String()+" "+hit.Get("description").String()) + " "
		if name != "" && strings.Contains(text, " "+name+" ") {
			nameMatch = true
			result.URL = link
			return false
		}
		return true
	})

	if result.Found {
		bonus := 0.0
		if nameMatch {
			bonus = KeywordBonus
		}
		result.Confidence = math.Min(source.Reliability+bonus, 1)
	}
	return result, nil
}

func (p *HTTPProvider) buildURL(query, site string) string {
	return strings.NewReplacer(
		"{query}", url.QueryEscape(query),
		"{site}", url.QueryEscape(site),
	).Replace(p.endpoint)
}

func (p *HTTPProvider) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	if err := p.limiter.Wait(ctx, rawURL); err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBody))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search endpoint returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
