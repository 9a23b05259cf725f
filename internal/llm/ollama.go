package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// OllamaProvider corroborates scales with a locally served model
type OllamaProvider struct {
	api    *apiClient
	config Config
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	System  string        `json:"system,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ollamaResponse keeps only what a verdict needs; eval counts are absent
// for some models.
type ollamaResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}

func describeOllamaError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	// local models load lazily, so the first call is slow
	api := newAPIClient(config, "http://localhost:11434", 60*time.Second, nil, describeOllamaError)
	return &OllamaProvider{api: api, config: config}, nil
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable lists local models to confirm the daemon answers
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	if err := p.api.do(ctx, http.MethodGet, "/api/tags", nil, nil); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Ollama unavailable at %s: %v\n", p.api.baseURL, err)
		return false
	}
	return true
}

// Corroborate asks a local model for a verdict
func (p *OllamaProvider) Corroborate(ctx context.Context, req CorroborateRequest) (*Verdict, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., llama3.1:8b, mistral)")
	}

	prompt := BuildPrompt(req)
	apiReq := ollamaRequest{
		Model:  model,
		Prompt: prompt,
		Format: "json",
		System: systemPrompt,
		Options: ollamaOptions{
			Temperature: 0.1,
			NumPredict:  maxTokens(req, p.config),
		},
	}

	var resp ollamaResponse
	if err := p.api.do(ctx, http.MethodPost, "/api/generate", apiReq, &resp); err != nil {
		return nil, fmt.Errorf("ollama API error: %w", err)
	}

	answer := strings.TrimSpace(resp.Response)
	verdict, err := ParseVerdict(answer, req.Source, p.config.StrictEvidence)
	if err != nil {
		return nil, err
	}

	// roughly 4 characters per token when the model reports no counts
	tokens := resp.PromptEvalCount + resp.EvalCount
	if tokens == 0 {
		tokens = (len(prompt) + len(answer)) / 4
	}
	verdict.Model = resp.Model
	verdict.TokensUsed = tokens
	return verdict, nil
}
