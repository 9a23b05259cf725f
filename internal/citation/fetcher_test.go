package citation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func stubFetchSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	orig := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) { delays = append(delays, d) }
	t.Cleanup(func() { fetchSleepFunc = orig })
	return &delays
}

func testFetcher(attempts int) *Fetcher {
	return NewFetcher(nil, "test-agent", 1<<20, 5*time.Second, attempts, 50*time.Millisecond, nil)
}

func TestFetchWithRetry_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><body>OK</body></html>")
	}))
	defer server.Close()

	result, err := testFetcher(3).FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Body != "<html><body>OK</body></html>" {
		t.Errorf("Unexpected body: %s", result.Body)
	}
	if result.StatusCode != http.StatusOK || result.Attempts != 1 {
		t.Errorf("Unexpected metadata: %+v", result)
	}
}

func TestFetchWithRetry_TransientThenSuccess(t *testing.T) {
	delays := stubFetchSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, "<html>OK</html>")
	}))
	defer server.Close()

	result, err := testFetcher(3).FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if result.Attempts != 3 || attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d (server saw %d)", result.Attempts, attempts.Load())
	}

	want := []time.Duration{50 * time.Millisecond, 100 * time.Millisecond}
	if len(*delays) != 2 || (*delays)[0] != want[0] || (*delays)[1] != want[1] {
		t.Errorf("Expected linear backoff %v, got %v", want, *delays)
	}
}

func TestFetchWithRetry_PermanentFailure(t *testing.T) {
	stubFetchSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testFetcher(3).FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404, got nil")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected StatusError 404, got %v", err)
	}
	if got := err.Error(); got != "unexpected status: 404 Not Found" {
		t.Errorf("Unexpected error: %s", got)
	}
	// 404 is not retryable, so should fail immediately
	if attempts.Load() != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_AllRetriesExhausted(t *testing.T) {
	stubFetchSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testFetcher(3).FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error after all retries exhausted")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected last failure to be propagated, got %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_ClientAndRedirectStatusesNotRetried(t *testing.T) {
	stubFetchSleep(t)
	for _, status := range []int{http.StatusTooManyRequests, http.StatusFound} {
		t.Run(fmt.Sprint(status), func(t *testing.T) {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				w.WriteHeader(status)
			}))
			defer server.Close()

			_, err := testFetcher(3).FetchWithRetry(context.Background(), server.URL)
			var statusErr *StatusError
			if !errors.As(err, &statusErr) || statusErr.StatusCode != status {
				t.Fatalf("expected status error %d, got %v", status, err)
			}
			if attempts.Load() != 1 {
				t.Errorf("expected a single attempt, got %d", attempts.Load())
			}
			if classifyStatus(status).Retryable {
				t.Error("error record must not claim retryable for a status the fetcher does not retry")
			}
		})
	}
}

func TestFetch_TimeoutPerAttempt(t *testing.T) {
	stubFetchSleep(t)
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	f := NewFetcher(nil, "test-agent", 1<<20, 20*time.Millisecond, 2, 0, nil)
	_, err := f.FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if !isTimeout(err) {
		t.Errorf("Expected a timeout, got %v", err)
	}
}

func TestFetch_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "0123456789")
	}))
	defer server.Close()

	f := NewFetcher(nil, "test-agent", 4, time.Second, 1, 0, nil)
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.Body != "0123" {
		t.Errorf("Expected truncated body, got %q", result.Body)
	}
}

func TestIsRetryableFetchError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"503", &StatusError{StatusCode: 503, Status: "503 Service Unavailable"}, true},
		{"500", &StatusError{StatusCode: 500, Status: "500 Internal Server Error"}, true},
		{"429", &StatusError{StatusCode: 429, Status: "429 Too Many Requests"}, false},
		{"302", &StatusError{StatusCode: 302, Status: "302 Found"}, false},
		{"404", &StatusError{StatusCode: 404, Status: "404 Not Found"}, false},
		{"403", &StatusError{StatusCode: 403, Status: "403 Forbidden"}, false},
		{"401", &StatusError{StatusCode: 401, Status: "401 Unauthorized"}, false},
		{"connection refused", fmt.Errorf("fetch: connection refused"), true},
		{"connection reset", fmt.Errorf("fetch: connection reset by peer"), true},
		{"bad request", &requestError{err: fmt.Errorf("create request: invalid URL")}, false},
		{"body", &bodyError{err: fmt.Errorf("read body: unexpected EOF")}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableFetchError(tt.err); got != tt.retryable {
				t.Errorf("isRetryableFetchError(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}
