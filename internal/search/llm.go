package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ppiankov/scaleproof/internal/llm"
	"github.com/ppiankov/scaleproof/internal/model"
)

// LLMProvider asks a language model whether a source documents a scale.
// Verdicts are memoized per (scale, context, source) because every query
// variant asks the same underlying question.
type LLMProvider struct {
	provider llm.Provider
	mu       sync.Mutex
	verdicts map[string]*verdictEntry
}

type verdictEntry struct {
	once    sync.Once
	verdict *llm.Verdict
	err     error
}

// NewLLMProvider wraps an llm.Provider
func NewLLMProvider(provider llm.Provider) (*LLMProvider, error) {
	if provider == nil {
		return nil, fmt.Errorf("llm search provider requires a configured LLM (set llm.provider)")
	}
	return &LLMProvider{
		provider: provider,
		verdicts: make(map[string]*verdictEntry),
	}, nil
}

// Name returns the provider name
func (p *LLMProvider) Name() string {
	return "llm:" + p.provider.Name()
}

// Search asks for a verdict on one source
func (p *LLMProvider) Search(ctx context.Context, q Query, source model.ApprovedSource) (Result, error) {
	result := Result{Source: source.Hostname, Query: q.Text}

	key := strings.ToLower(q.ScaleName + "|" + q.CulturalContext + "|" + source.Hostname)
	p.mu.Lock()
	entry, ok := p.verdicts[key]
	if !ok {
		entry = &verdictEntry{}
		p.verdicts[key] = entry
	}
	p.mu.Unlock()

	entry.once.Do(func() {
		entry.verdict, entry.err = p.provider.Corroborate(ctx, llm.CorroborateRequest{
			ScaleName:       q.ScaleName,
			CulturalContext: q.CulturalContext,
			Query:           q.Text,
			Source:          source.Hostname,
		})
	})
	if entry.err != nil {
		return result, entry.err
	}

	result.Found = entry.verdict.Documented
	if entry.verdict.Documented {
		result.Confidence = entry.verdict.Confidence
		if len(entry.verdict.Evidence) > 0 {
			result.URL = entry.verdict.Evidence[0]
		}
	}
	return result, nil
}
