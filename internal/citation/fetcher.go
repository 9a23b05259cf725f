package citation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/scaleproof/internal/worker"
)

// fetchSleepFunc is the sleep function used between retries (injectable for tests)
var fetchSleepFunc = time.Sleep

// Fetcher retrieves citation pages with bounded, linearly backed-off retries
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxBytes   int64
	timeout    time.Duration // Per attempt
	attempts   int
	retryDelay time.Duration
	limiter    *worker.Limiter
}

// FetchResult contains the fetched body and response metadata
type FetchResult struct {
	Body        string
	StatusCode  int
	ContentType string
	FinalURL    string
	Attempts    int
}

// StatusError is returned for non-2xx responses. Location is set for an
// unfollowed redirect.
type StatusError struct {
	StatusCode int
	Status     string
	Location   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// requestError marks failures that happen before anything is sent
type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// bodyError marks failures reading an otherwise successful response
type bodyError struct{ err error }

func (e *bodyError) Error() string { return e.err.Error() }
func (e *bodyError) Unwrap() error { return e.err }

// NewFetcher creates a fetcher. attempts < 1 is treated as a single try.
func NewFetcher(client *http.Client, userAgent string, maxBytes int64, timeout time.Duration, attempts int, retryDelay time.Duration, limiter *worker.Limiter) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if attempts < 1 {
		attempts = 1
	}
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}
	return &Fetcher{
		client:     client,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
		timeout:    timeout,
		attempts:   attempts,
		retryDelay: retryDelay,
		limiter:    limiter,
	}
}

// Fetch performs a single GET bounded by the per-attempt timeout
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &requestError{err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
		if loc, err := resp.Location(); err == nil {
			statusErr.Location = loc.String()
		}
		return nil, statusErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, &bodyError{err: fmt.Errorf("read body: %w", err)}
	}

	return &FetchResult{
		Body:        string(body),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// FetchWithRetry retries transient failures (5xx, transport errors) with a
// delay of retryDelay*attempt. The last failure is returned when every attempt fails.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			result.Attempts = attempt
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryableFetchError(err) {
			break
		}
		if attempt < f.attempts {
			fetchSleepFunc(f.retryDelay * time.Duration(attempt))
		}
	}
	return nil, lastErr
}

// isRetryableFetchError reports whether another attempt could succeed
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		// 4xx (429 included) and unfollowed redirects are final; the
		// recorded error must agree with classifyStatus
		return statusErr.StatusCode >= 500
	}

	var reqErr *requestError
	var bodyErr *bodyError
	if errors.As(err, &reqErr) || errors.As(err, &bodyErr) {
		return false
	}

	// Transport failures: timeouts, refused connections, resets, DNS
	return true
}
