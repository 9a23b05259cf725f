package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type anthropicContent = []anthropicBlock

func TestAnthropicProvider_Corroborate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header 2023-06-01, got %s", r.Header.Get("anthropic-version"))
		}

		var apiReq anthropicRequest
		_ = json.NewDecoder(r.Body).Decode(&apiReq)
		if apiReq.System != systemPrompt {
			t.Errorf("Expected system prompt, got %q", apiReq.System)
		}

		resp := anthropicResponse{
			Content: anthropicContent{
				{Type: "text", Text: "Here is my answer:\n{\"documented\": true, \"confidence\": 0.7, \"evidence\": [\"https://maqamworld.com/en/maqam/hijaz.php\"]}"},
			},
			Model: "claude-3-5-haiku-20241022",
		}
		resp.Usage.InputTokens = 40
		resp.Usage.OutputTokens = 20
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5, StrictEvidence: true})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	verdict, err := provider.Corroborate(context.Background(), hijazRequest())
	if err != nil {
		t.Fatalf("Corroborate failed: %v", err)
	}
	if !verdict.Documented || verdict.Confidence != 0.7 {
		t.Errorf("Unexpected verdict: %+v", verdict)
	}
	if verdict.TokensUsed != 60 {
		t.Errorf("Expected 60 tokens, got %d", verdict.TokensUsed)
	}
}

func TestAnthropicProvider_Corroborate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "api_error", "message": "Internal Server Error"}}`))
	}))
	defer server.Close()

	provider, _ := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})

	_, err := provider.Corroborate(context.Background(), hijazRequest())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Internal Server Error") {
		t.Errorf("Expected error message to contain 'Internal Server Error', got %v", err)
	}
}

func TestAnthropicProvider_Corroborate_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	provider, _ := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})

	if _, err := provider.Corroborate(context.Background(), hijazRequest()); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestAnthropicProvider_Corroborate_NoVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := anthropicResponse{Content: anthropicContent{{Type: "text", Text: "I am not sure."}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, _ := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})

	_, err := provider.Corroborate(context.Background(), hijazRequest())
	if err == nil || !strings.Contains(err.Error(), "no JSON verdict") {
		t.Fatalf("Expected missing verdict error, got %v", err)
	}
}

func TestAnthropicProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := anthropicResponse{Content: anthropicContent{{Type: "text", Text: "Hi"}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}
