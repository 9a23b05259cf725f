package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func openAIServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var chatReq openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&chatReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(chatReq.Messages) != 2 || !strings.Contains(chatReq.Messages[1].Content, "maqamworld.com") {
			t.Errorf("Expected prompt naming the source, got %+v", chatReq.Messages)
		}

		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-123",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: content}, FinishReason: "stop"},
			},
			Usage: openai.Usage{TotalTokens: 100},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func hijazRequest() CorroborateRequest {
	return CorroborateRequest{
		ScaleName:       "Hijaz",
		CulturalContext: "arabic",
		Query:           "Hijaz arabic",
		Source:          "maqamworld.com",
	}
}

func TestOpenAIProvider_Corroborate_Success(t *testing.T) {
	server := openAIServer(t, `{"documented": true, "confidence": 0.85, "evidence": ["https://www.maqamworld.com/en/maqam/hijaz.php"]}`)
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5, StrictEvidence: true})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	verdict, err := provider.Corroborate(context.Background(), hijazRequest())
	if err != nil {
		t.Fatalf("Corroborate failed: %v", err)
	}
	if !verdict.Documented || verdict.Confidence != 0.85 {
		t.Errorf("Unexpected verdict: %+v", verdict)
	}
	if len(verdict.Evidence) != 1 || verdict.TokensUsed != 100 {
		t.Errorf("Unexpected evidence/tokens: %+v", verdict)
	}
	if verdict.Model != openai.GPT4oMini {
		t.Errorf("Expected default model, got %s", verdict.Model)
	}
}

func TestOpenAIProvider_Corroborate_CitationLeak(t *testing.T) {
	server := openAIServer(t, `{"documented": true, "confidence": 0.9, "evidence": ["https://en.wikipedia.org/wiki/Hijaz"]}`)
	defer server.Close()

	provider, _ := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, StrictEvidence: true})

	_, err := provider.Corroborate(context.Background(), hijazRequest())
	if err == nil || !strings.Contains(err.Error(), "CITATION LEAK") {
		t.Fatalf("Expected CITATION LEAK error, got %v", err)
	}
}

func TestOpenAIProvider_Corroborate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, _ := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})

	_, err := provider.Corroborate(context.Background(), hijazRequest())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "OpenAI API error") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestOpenAIProvider_Corroborate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	provider, _ := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})

	// The caller's deadline wins over the provider timeout
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := provider.Corroborate(ctx, hijazRequest()); err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestOpenAIProvider_MissingKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Fatal("Expected error without API key")
	}
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			_, _ = w.Write([]byte(`{"data": [{"id": "gpt-4o-mini"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
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
