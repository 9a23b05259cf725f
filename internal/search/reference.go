package search

import (
	"context"
	"math"
	"strings"

	"github.com/ppiankov/scaleproof/internal/citation"
	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/sources"
)

// ReferenceProvider scores sources from registry metadata alone, with no network.
// A source "finds" a scale when the name passes the online heuristic and the
// source covers the inferred scale type. Confidence is reliability plus a keyword
// bonus for culturally specialized sources, capped at 1.
type ReferenceProvider struct{}

// NewReferenceProvider creates the offline reference provider
func NewReferenceProvider() *ReferenceProvider {
	return &ReferenceProvider{}
}

// Name returns the provider name
func (p *ReferenceProvider) Name() string {
	return "reference"
}

// Search scores one (query, source) pair
func (p *ReferenceProvider) Search(ctx context.Context, q Query, source model.ApprovedSource) (Result, error) {
	result := Result{Source: source.Hostname, Query: q.Text}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if !citation.VerifyScaleExistsOnline(q.ScaleName, q.CulturalContext) {
		return result, nil
	}
	scaleType := sources.InferScaleType(model.ScaleData{Name: q.ScaleName, CulturalContext: q.CulturalContext})
	if !source.SupportsScaleType(scaleType) {
		return result, nil
	}

	bonus := 0.0
	if source.MatchesCulture(q.CulturalContext) && strings.Contains(strings.ToLower(q.Text), strings.ToLower(q.CulturalContext)) {
		bonus = KeywordBonus
	}

	result.Found = true
	result.Confidence = math.Min(source.Reliability+bonus, 1)
	result.URL = source.URLFor(model.ScaleData{Name: q.ScaleName})
	return result, nil
}
