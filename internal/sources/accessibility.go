package sources

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// probeSleepFunc is the sleep function used between retries (injectable for tests)
var probeSleepFunc = time.Sleep

// ValidateSourceAccessibility probes a URL with HEAD. 2xx/3xx is reachable, 4xx is
// rejected without retrying, and 5xx or network errors are retried with a delay of
// RetryDelay*attempt before giving up.
func (m *Manager) ValidateSourceAccessibility(ctx context.Context, rawURL string) bool {
	for attempt := 1; attempt <= m.opts.RetryAttempts; attempt++ {
		status, err := m.head(ctx, rawURL)
		if err == nil {
			switch {
			case status >= 200 && status < 400:
				return true
			case status >= 400 && status < 500:
				return false
			}
		} else if ctx.Err() != nil || !isRetryableProbeError(err) {
			return false
		}

		if attempt < m.opts.RetryAttempts {
			probeSleepFunc(m.opts.RetryDelay * time.Duration(attempt))
		}
	}
	return false
}

// ValidateAllApprovedSources probes each distinct approved hostname once.
// Wikipedia-family hosts are intentionally excluded and never probed.
func (m *Manager) ValidateAllApprovedSources(ctx context.Context) map[string]bool {
	results := make(map[string]bool)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.ProbeWorkers)

	for _, src := range m.registry.Sources() {
		if IsWikipediaHost(src.Hostname) {
			continue
		}
		host := src.Hostname
		target := src.BaseURL() + "/"
		g.Go(func() error {
			ok := m.ValidateSourceAccessibility(gctx, target)
			mu.Lock()
			results[host] = ok
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// head issues a single HEAD request bounded by the configured timeout
func (m *Manager) head(ctx context.Context, rawURL string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, &requestError{err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", m.opts.UserAgent)

	if err := m.opts.Limiter.Wait(ctx, rawURL); err != nil {
		return 0, err
	}

	resp, err := m.opts.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode, nil
}

// requestError marks failures that happen before anything is sent
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// isRetryableProbeError returns false for malformed requests, true for transport failures
func isRetryableProbeError(err error) bool {
	_, malformed := err.(*requestError)
	return !malformed
}
