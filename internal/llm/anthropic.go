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

const (
	anthropicVersion      = "2023-06-01"
	anthropicDefaultModel = "claude-3-5-haiku-20241022"
)

// AnthropicProvider corroborates scales through the Anthropic Messages API
type AnthropicProvider struct {
	api    *apiClient
	config Config
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
	Model   string           `json:"model"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// text joins every text block of the reply
func (r *anthropicResponse) text() string {
	var parts []string
	for _, b := range r.Content {
		if b.Type == "" || b.Type == "text" {
			parts = append(parts, b.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func describeAnthropicError(body []byte) string {
	var e struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil || e.Error.Message == "" {
		return ""
	}
	return e.Error.Type + ": " + e.Error.Message
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	headers := map[string]string{
		"x-api-key":         config.APIKey,
		"anthropic-version": anthropicVersion,
	}
	return &AnthropicProvider{
		api:    newAPIClient(config, "https://api.anthropic.com", 30*time.Second, headers, describeAnthropicError),
		config: config,
	}, nil
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// IsAvailable sends a one-token message to confirm the key works
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	probe := anthropicRequest{
		Model:     p.model(""),
		MaxTokens: 1,
		Messages:  []anthropicMessage{{Role: "user", Content: "ping"}},
	}
	if err := p.api.do(ctx, http.MethodPost, "/v1/messages", probe, &anthropicResponse{}); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Anthropic unavailable: %v\n", err)
		return false
	}
	return true
}

// Corroborate asks the Messages API for a verdict
func (p *AnthropicProvider) Corroborate(ctx context.Context, req CorroborateRequest) (*Verdict, error) {
	apiReq := anthropicRequest{
		Model:       p.model(req.Model),
		MaxTokens:   maxTokens(req, p.config),
		System:      systemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: BuildPrompt(req)}},
		Temperature: 0.1,
	}

	var resp anthropicResponse
	if err := p.api.do(ctx, http.MethodPost, "/v1/messages", apiReq, &resp); err != nil {
		return nil, fmt.Errorf("Anthropic API error: %w", err)
	}
	answer := resp.text()
	if answer == "" {
		return nil, fmt.Errorf("no content in Anthropic response")
	}

	verdict, err := ParseVerdict(answer, req.Source, p.config.StrictEvidence)
	if err != nil {
		return nil, err
	}
	verdict.Model = resp.Model
	verdict.TokensUsed = resp.Usage.InputTokens + resp.Usage.OutputTokens
	return verdict, nil
}

func (p *AnthropicProvider) model(requested string) string {
	switch {
	case requested != "":
		return requested
	case p.config.Model != "":
		return p.config.Model
	default:
		return anthropicDefaultModel
	}
}
