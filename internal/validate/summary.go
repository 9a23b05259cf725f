package validate

import (
	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/sources"
)

// Accumulator folds per-scale results into run-level counters.
// It is not safe for concurrent use; results are folded sequentially in input order.
type Accumulator struct {
	summary model.ValidationSummary
}

// NewAccumulator creates an empty run accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		summary: model.ValidationSummary{SourceDiversity: make(map[string]int)},
	}
}

// Add folds one result into the summary
func (a *Accumulator) Add(result model.ValidationResult, wikipediaSkips int, usedBackup bool) {
	s := &a.summary
	s.TotalScales++
	switch result.Status {
	case model.StatusVerified:
		s.VerifiedScales++
		if host, err := sources.SourceHost(result.PrimarySource); err == nil && host != "" {
			s.SourceDiversity[host]++
		}
	case model.StatusFailed:
		s.FailedScales++
	case model.StatusUnverifiable:
		s.UnverifiableScales++
	}
	s.WikipediaRejections += wikipediaSkips
	if usedBackup {
		s.BackupSourceUsage++
	}
}

// Summary returns a copy of the accumulated counters
func (a *Accumulator) Summary() model.ValidationSummary {
	out := a.summary
	out.SourceDiversity = make(map[string]int, len(a.summary.SourceDiversity))
	for k, v := range a.summary.SourceDiversity {
		out.SourceDiversity[k] = v
	}
	return out
}
