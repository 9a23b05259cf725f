package citation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ppiankov/scaleproof/internal/cache"
	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/sources"
	"github.com/ppiankov/scaleproof/internal/util"
	"github.com/ppiankov/scaleproof/internal/worker"
)

// Options configure the citation engine
type Options struct {
	Client           *http.Client
	Timeout          time.Duration // Per attempt
	RetryAttempts    int
	RetryDelay       time.Duration
	UserAgent        string
	MaxBodyBytes     int64
	KeywordThreshold float64
	Cache            cache.Cache         // Optional body cache for successful fetches
	CacheTTL         time.Duration       // 0 uses the cache's default
	Robots           *util.RobotsChecker // Optional robots.txt gate
	Limiter          *worker.Limiter     // Optional per-host politeness
	Log              io.Writer
	Verbose          bool
}

// Engine validates one candidate URL against one reference title
type Engine struct {
	fetcher *Fetcher
	matcher Matcher
	cache   cache.Cache
	ttl     time.Duration
	robots  *util.RobotsChecker
	log     io.Writer
	verbose bool
}

// NewEngine creates a citation engine
func NewEngine(opts Options) *Engine {
	if opts.UserAgent == "" {
		opts.UserAgent = model.DefaultUserAgent
	}
	if opts.Log == nil {
		opts.Log = os.Stderr
	}
	return &Engine{
		fetcher: NewFetcher(opts.Client, opts.UserAgent, opts.MaxBodyBytes, opts.Timeout, opts.RetryAttempts, opts.RetryDelay, opts.Limiter),
		matcher: NewMatcher(opts.KeywordThreshold),
		cache:   opts.Cache,
		ttl:     opts.CacheTTL,
		robots:  opts.Robots,
		log:     opts.Log,
		verbose: opts.Verbose,
	}
}

// ValidateCitation checks that rawURL is reachable and about expectedTitle.
// It always returns a fully populated result and never panics.
func (e *Engine) ValidateCitation(ctx context.Context, rawURL, expectedTitle string) (result model.CitationResult) {
	result = model.CitationResult{
		URL:   rawURL,
		Title: expectedTitle,
		Notes: []string{},
	}

	defer func() {
		if r := recover(); r != nil {
			result.Accessible = false
			result.ContentMatch = false
			result.DualValidated = true
			result.ErrorDetails = newErrorDetails(model.CategoryConfiguration, model.SeverityCritical, model.CodeSystemError,
				fmt.Sprintf("citation check panicked: %v", r), "Report this as a bug", false)
			result.Notes = append(result.Notes, "internal error during citation check")
		}
	}()

	host, err := sources.Hostname(rawURL)
	if err != nil {
		result.DualValidated = true
		result.ErrorDetails = newErrorDetails(model.CategoryConfiguration, model.SeverityMedium, model.CodeInvalidURL,
			fmt.Sprintf("malformed URL: %v", err), "Fix the source access pattern to produce absolute http(s) URLs", false)
		result.Notes = append(result.Notes, "malformed URL, no request made")
		return result
	}

	if sources.IsWikipediaHost(host) {
		result.ErrorDetails = newErrorDetails(model.CategorySource, model.SeverityMedium, model.CodeWikipediaRejected,
			fmt.Sprintf("Wikipedia-family host %s is not an accepted citation source", host),
			"Cite an approved non-Wikipedia source", false)
		result.Notes = append(result.Notes, "Wikipedia source rejected")
		return result
	}

	// Every remaining path records both the access and the content decision
	result.DualValidated = true

	if e.robots != nil && !e.robots.Allowed(ctx, rawURL) {
		result.ErrorDetails = newErrorDetails(model.CategorySource, model.SeverityMedium, model.CodeRobotsDisallowed,
			fmt.Sprintf("robots.txt disallows %s", rawURL),
			"Use another approved source or disable robots checking for this run", false)
		result.Notes = append(result.Notes, "blocked by robots.txt")
		return result
	}

	body, status, err := e.fetch(ctx, rawURL, &result)
	var redirected *wikipediaRedirectError
	if errors.As(err, &redirected) {
		result.HTTPStatus = redirected.status
		result.ErrorDetails = newErrorDetails(model.CategorySource, model.SeverityMedium, model.CodeWikipediaRejected,
			fmt.Sprintf("%s redirects to Wikipedia-family page %s", rawURL, redirected.finalURL),
			"Cite an approved non-Wikipedia source", false)
		result.Notes = append(result.Notes, "redirect to Wikipedia rejected")
		if e.verbose {
			_, _ = fmt.Fprintf(e.log, "  ✗ %s: redirected to %s\n", rawURL, redirected.finalURL)
		}
		return result
	}
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			result.HTTPStatus = statusErr.StatusCode
			result.ErrorDetails = classifyStatus(statusErr.StatusCode)
		} else {
			result.ErrorDetails = classifyTransport(err)
		}
		result.Notes = append(result.Notes, fmt.Sprintf("fetch failed: %v", err))
		if e.verbose {
			_, _ = fmt.Fprintf(e.log, "  ✗ %s: %s\n", rawURL, result.ErrorDetails.Code)
		}
		return result
	}

	result.Accessible = true
	result.HTTPStatus = status

	match, diag := e.matcher.Match(body, expectedTitle)
	result.ContentMatch = match
	result.ContentMatchDiagnostics = &diag

	if !match {
		result.ErrorDetails = newErrorDetails(model.CategoryContent, model.SeverityMedium, model.CodeContentMismatch,
			fmt.Sprintf("page matched %.0f%% of keywords for %q (need %.0f%%)", diag.MatchPercentage*100, expectedTitle, e.matcher.Threshold*100),
			"Check that the source's page for this scale uses the same name", false)
		result.Notes = append(result.Notes, fmt.Sprintf("missing keywords: %v", diag.MissingKeywords))
	}

	if e.verbose {
		mark := "✓"
		if !match {
			mark = "⚠️"
		}
		_, _ = fmt.Fprintf(e.log, "  %s %s (%d, %.0f%% keywords)\n", mark, rawURL, status, diag.MatchPercentage*100)
	}
	return result
}

// fetch returns the page body, from cache when possible
func (e *Engine) fetch(ctx context.Context, rawURL string, result *model.CitationResult) (string, int, error) {
	key := cache.CacheKey(rawURL)
	if e.cache != nil {
		if data, ok := e.cache.Get(key); ok {
			result.Notes = append(result.Notes, "served from cache")
			return string(data), http.StatusOK, nil
		}
	}

	fetched, err := e.fetcher.FetchWithRetry(ctx, rawURL)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Location != "" && sources.IsWikipediaURL(statusErr.Location) {
		return "", 0, &wikipediaRedirectError{finalURL: statusErr.Location, status: statusErr.StatusCode}
	}
	if err != nil {
		return "", 0, err
	}
	// An approved page that lands on Wikipedia is still Wikipedia; never cache it
	if fetched.FinalURL != "" && sources.IsWikipediaURL(fetched.FinalURL) {
		return "", 0, &wikipediaRedirectError{finalURL: fetched.FinalURL, status: fetched.StatusCode}
	}
	if fetched.Attempts > 1 {
		result.Notes = append(result.Notes, fmt.Sprintf("succeeded after %d attempts", fetched.Attempts))
	}

	if e.cache != nil {
		if err := e.cache.Set(key, []byte(fetched.Body), e.ttl); err != nil {
			_, _ = fmt.Fprintf(e.log, "⚠️  Warning: failed to cache %s: %v\n", rawURL, err)
		}
	}
	return fetched.Body, fetched.StatusCode, nil
}

// wikipediaRedirectError reports a fetch that ended on a Wikipedia-family host
type wikipediaRedirectError struct {
	finalURL string
	status   int
}

func (e *wikipediaRedirectError) Error() string {
	return "redirected to Wikipedia-family page " + e.finalURL
}
