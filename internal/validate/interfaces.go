package validate

import (
	"context"

	"github.com/ppiankov/scaleproof/internal/model"
)

// CitationChecker validates one candidate URL against a reference title
type CitationChecker interface {
	ValidateCitation(ctx context.Context, url, expectedTitle string) model.CitationResult
}

// ExistenceVerifier corroborates that a scale exists across independent sources
type ExistenceVerifier interface {
	VerifyScaleExists(ctx context.Context, name, culturalContext string) model.InternetVerificationResult
}

// SourceSelector supplies prioritized approved sources and their reachability
type SourceSelector interface {
	GetSourcesByPriority(scaleType, culturalContext string) []model.ApprovedSource
	GetBackupSources(primaryURL string) []model.ApprovedSource
	ValidateAllApprovedSources(ctx context.Context) map[string]bool
}
