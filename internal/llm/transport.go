package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/scaleproof/internal/util"
)

// apiClient is the JSON-over-HTTP plumbing shared by the hand-rolled providers.
type apiClient struct {
	baseURL string
	headers map[string]string
	http    *http.Client
	// describe extracts a readable message from a provider error body
	describe func(body []byte) string
}

func newAPIClient(config Config, fallbackURL string, fallbackTimeout time.Duration, headers map[string]string, describe func([]byte) string) *apiClient {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = fallbackURL
	}
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = fallbackTimeout
	}
	return &apiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		headers: headers,
		http: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy)},
		},
		describe: describe,
	}
}

// do sends in (when non-nil) as JSON and decodes a 200 response into out
// (when non-nil). Any other status becomes an error carrying the provider's message.
func (c *apiClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, c.baseURL+path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		if c.describe != nil {
			if d := c.describe(raw); d != "" {
				msg = d
			}
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
