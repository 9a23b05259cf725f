package util

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/ppiankov/scaleproof/internal/model"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestNewHTTPClient_DoesNotFollowIntoWikipedia(t *testing.T) {
	var hosts []string
	client := NewHTTPClient(model.HTTPConfig{})
	client.Transport = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		hosts = append(hosts, r.URL.Hostname())
		resp := &http.Response{StatusCode: http.StatusOK, Header: make(http.Header), Body: io.NopCloser(strings.NewReader("")), Request: r}
		switch r.URL.Hostname() {
		case "teoria.com":
			resp.StatusCode = http.StatusFound
			resp.Header.Set("Location", "https://www.musictheory.net/lessons/21")
		case "www.musictheory.net":
			resp.StatusCode = http.StatusMovedPermanently
			resp.Header.Set("Location", "https://de.m.wikipedia.org/wiki/Dur")
		}
		return resp, nil
	})

	resp, err := client.Get("https://teoria.com/en/reference/s/major.php")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMovedPermanently {
		t.Errorf("expected the redirect to be handed back, got %d", resp.StatusCode)
	}
	if got := strings.Join(hosts, ","); got != "teoria.com,www.musictheory.net" {
		t.Errorf("requested hosts = %s", got)
	}
	if loc, _ := resp.Location(); loc == nil || loc.Hostname() != "de.m.wikipedia.org" {
		t.Errorf("expected Wikipedia location, got %v", loc)
	}
}
