package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ppiankov/scaleproof/internal/sources"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Corroborate asks whether a scale is documented by one specific source
	Corroborate(ctx context.Context, req CorroborateRequest) (*Verdict, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CorroborateRequest is one (scale, source) question
type CorroborateRequest struct {
	ScaleName       string
	CulturalContext string
	Query           string

	// Source is the hostname the answer must be grounded in.
	// Evidence URLs on any other host are rejected in strict mode.
	Source string

	Model     string
	MaxTokens int
}

// Verdict is the model's structured answer
type Verdict struct {
	Documented bool     `json:"documented"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`

	Model      string `json:"-"`
	TokensUsed int    `json:"-"`
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictEvidence rejects evidence URLs outside the requested source
	StrictEvidence bool

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:        30,
		StrictEvidence: true,
		MaxTokens:      300,
	}
}

const systemPrompt = "You check whether musical scales are documented by specific reference websites. " +
	"You answer only with a JSON object and never invent URLs."

// BuildPrompt constructs the corroboration prompt for one source
func BuildPrompt(req CorroborateRequest) string {
	subject := req.ScaleName
	if req.CulturalContext != "" {
		subject = fmt.Sprintf("%s (%s tradition)", req.ScaleName, req.CulturalContext)
	}

	return fmt.Sprintf(`Is the musical scale %q documented on %s?

Search phrase: %q

RULES:
1. Only cite pages on %s. Any other URL invalidates the answer.
2. If you are not sure the page exists, answer documented=false.
3. Confidence is a number between 0 and 1.

Answer with JSON only:
{"documented": true|false, "confidence": 0.0, "evidence": ["https://%s/..."]}`,
		subject, req.Source, req.Query, req.Source, req.Source)
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ParseVerdict extracts the JSON verdict from a model reply. In strict mode every
// evidence URL, whether inside the JSON or in surrounding prose, must belong to source.
func ParseVerdict(text, source string, strict bool) (*Verdict, error) {
	raw := jsonObjectPattern.FindString(text)
	if raw == "" {
		return nil, fmt.Errorf("no JSON verdict in response")
	}

	var v Verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("parse verdict: %w", err)
	}

	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}

	cited := dedupe(append(v.Evidence, extractURLs(text)...))
	if strict {
		for _, u := range cited {
			if !onSource(u, source) {
				return nil, fmt.Errorf("CITATION LEAK: LLM cited URL outside %s: %s", source, u)
			}
		}
	}
	v.Evidence = cited

	// A documented claim without a citation on the source is not evidence
	if v.Documented && len(v.Evidence) == 0 {
		v.Documented = false
	}
	return &v, nil
}

func onSource(rawURL, source string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return sources.MatchesDomain(parsed.Hostname(), source)
}

var urlPattern = regexp.MustCompile(`https?://[^\s\)"'\]]+`)

// extractURLs extracts all URLs from text
func extractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, u := range matches {
		out = append(out, strings.TrimRight(u, ".,;:!?"))
	}
	return dedupe(out)
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

func maxTokens(req CorroborateRequest, config Config) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if config.MaxTokens > 0 {
		return config.MaxTokens
	}
	return 300
}
