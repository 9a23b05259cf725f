package validate

import "github.com/ppiankov/scaleproof/internal/model"

// Generic advice appended by status
const (
	adviceTryAlternatives = "Try alternative approved sources for this scale"
	adviceCheckName       = "Check the scale name against published references"
	adviceAddSource       = "Add an approved source that documents this scale"
	adviceReportBug       = "Report this failure; it indicates an internal error"
)

// BuildErrorSummary aggregates every error recorded across a result's sources,
// plus errors not tied to a source, and derives deduplicated recommended actions
func BuildErrorSummary(sources []model.CitationResult, systemErrors []model.ErrorDetails, status model.Status) *model.ValidationErrorSummary {
	summary := &model.ValidationErrorSummary{
		ByCategory:         make(map[model.ErrorCategory]int),
		BySeverity:         make(map[model.ErrorSeverity]int),
		CriticalErrors:     []model.ErrorDetails{},
		RecommendedActions: []string{},
	}

	seen := make(map[string]bool)
	recommend := func(action string) {
		if action != "" && !seen[action] {
			seen[action] = true
			summary.RecommendedActions = append(summary.RecommendedActions, action)
		}
	}

	add := func(d model.ErrorDetails) {
		summary.TotalErrors++
		summary.ByCategory[d.Category]++
		summary.BySeverity[d.Severity]++
		if d.Severity == model.SeverityCritical {
			summary.CriticalErrors = append(summary.CriticalErrors, d)
		}
		recommend(d.SuggestedFix)
	}

	for _, src := range sources {
		if src.ErrorDetails != nil {
			add(*src.ErrorDetails)
		}
	}
	for _, d := range systemErrors {
		add(d)
		summary.SystemErrors = append(summary.SystemErrors, d)
	}

	switch status {
	case model.StatusFailed:
		recommend(adviceTryAlternatives)
		recommend(adviceCheckName)
	case model.StatusUnverifiable:
		recommend(adviceAddSource)
		recommend(adviceTryAlternatives)
	}
	return summary
}
