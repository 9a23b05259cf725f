package search

import (
	"context"

	"github.com/ppiankov/scaleproof/internal/model"
)

// Query is one search phrase for one scale
type Query struct {
	Text            string
	ScaleName       string
	CulturalContext string
}

// Result is a provider's answer for one (query, source) pair
type Result struct {
	Source     string  `json:"source"`
	Query      string  `json:"query"`
	Found      bool    `json:"found"`
	Confidence float64 `json:"confidence"`
	URL        string  `json:"url,omitempty"`
}

// Provider is the pluggable search capability behind internet verification
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query, source model.ApprovedSource) (Result, error)
}
