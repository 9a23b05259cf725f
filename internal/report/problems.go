package report

import (
	"fmt"

	"github.com/ppiankov/scaleproof/internal/model"
)

// CategorizeProblems groups every recorded error across all results by category
// and severity. System errors not tied to a source are included without a URL.
func CategorizeProblems(results []model.ValidationResult) model.ProblemReport {
	p := model.ProblemReport{
		ByCategory:       make(map[model.ErrorCategory][]model.ProblemEntry),
		BySeverity:       make(map[model.ErrorSeverity][]model.ProblemEntry),
		CriticalProblems: []model.ProblemEntry{},
	}

	add := func(entry model.ProblemEntry) {
		p.Total++
		p.ByCategory[entry.Error.Category] = append(p.ByCategory[entry.Error.Category], entry)
		p.BySeverity[entry.Error.Severity] = append(p.BySeverity[entry.Error.Severity], entry)
		if entry.Error.Severity == model.SeverityCritical {
			p.CriticalProblems = append(p.CriticalProblems, entry)
		}
	}

	for _, r := range results {
		for _, src := range r.Sources {
			if src.ErrorDetails != nil {
				add(model.ProblemEntry{ScaleID: r.ScaleID, URL: src.URL, Error: *src.ErrorDetails})
			}
		}
		if r.ErrorSummary != nil {
			for _, sysErr := range r.ErrorSummary.SystemErrors {
				add(model.ProblemEntry{ScaleID: r.ScaleID, Error: sysErr})
			}
			// Recovered failures record their critical error only in the summary
			if len(r.ErrorSummary.SystemErrors) == 0 {
				for _, crit := range r.ErrorSummary.CriticalErrors {
					if crit.Code == model.CodeSystemError {
						add(model.ProblemEntry{ScaleID: r.ScaleID, Error: crit})
					}
				}
			}
		}
	}
	return p
}

// FlagUnverifiableContent returns the results that need human review:
// unverifiable status, high hallucination risk, or every attempted source failed
func FlagUnverifiableContent(results []model.ValidationResult) []model.FlaggedResult {
	flagged := []model.FlaggedResult{}
	for _, r := range results {
		var reasons []string
		if r.Status == model.StatusUnverifiable {
			reasons = append(reasons, "no approved source confirmed the scale")
		}
		if r.HallucinationRisk == model.RiskHigh {
			reasons = append(reasons, "high hallucination risk")
		}
		if allSourcesFailed(r.Sources) {
			reasons = append(reasons, fmt.Sprintf("all %d attempted source(s) failed", len(r.Sources)))
		}
		if len(reasons) > 0 {
			flagged = append(flagged, model.FlaggedResult{
				ScaleID:           r.ScaleID,
				Status:            r.Status,
				HallucinationRisk: r.HallucinationRisk,
				Reasons:           reasons,
			})
		}
	}
	return flagged
}

func allSourcesFailed(srcs []model.CitationResult) bool {
	if len(srcs) == 0 {
		return false
	}
	for _, s := range srcs {
		if s.Succeeded() {
			return false
		}
	}
	return true
}
