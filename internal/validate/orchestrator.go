package validate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/sources"
	"github.com/ppiankov/scaleproof/internal/worker"
)

// ScaleJob validates one scale inside a worker pool
type ScaleJob struct {
	engine *Engine
	Scale  model.ScaleData
}

// Execute runs the per-scale state machine
func (j *ScaleJob) Execute(ctx context.Context) worker.Result {
	result, out := j.engine.validateScale(ctx, j.Scale.ID, j.Scale)
	return &ScaleResult{Result: result, outcome: out}
}

// ScaleResult is a ScaleJob's output
type ScaleResult struct {
	Result model.ValidationResult
	outcome
}

// GetError always returns nil; per-scale failures are recorded in Result
func (r *ScaleResult) GetError() error {
	return nil
}

// OrchestrateCompleteValidation validates every scale after a pre-flight source check,
// then verifies dual-validation bookkeeping and run completeness.
// Only an unreachable approved source or an integrity violation returns an error.
func (e *Engine) OrchestrateCompleteValidation(ctx context.Context, scales []model.ScaleData) (*model.RunResult, error) {
	start := nowFunc()

	if !e.skipPreflight {
		if err := e.preflight(ctx); err != nil {
			return nil, err
		}
	}

	processed := e.process(ctx, scales)

	acc := NewAccumulator()
	results := make([]model.ValidationResult, 0, len(processed))
	for _, sr := range processed {
		acc.Add(sr.Result, sr.wikipediaSkips, sr.usedBackup)
		results = append(results, sr.Result)
	}

	if violations := CheckDualValidation(results); len(violations) > 0 {
		return nil, &IntegrityError{Violations: violations}
	}

	completion := ComputeCompletionStatus(results)
	completion.DurationMs = nowFunc().Sub(start).Milliseconds()
	completion.MeetsPerformanceRequirement = e.performanceTarget <= 0 ||
		time.Duration(completion.DurationMs)*time.Millisecond <= e.performanceTarget

	if completion.VerificationRate < 1.0 && completion.TotalProcessed > 0 {
		var unverified []string
		for _, r := range results {
			if r.Status != model.StatusVerified {
				unverified = append(unverified, r.ScaleID)
			}
		}
		fmt.Fprintf(e.log, "⚠️  Warning: %d of %d scales not verified: %s\n",
			len(unverified), completion.TotalProcessed, strings.Join(unverified, ", "))
	}

	return &model.RunResult{
		RunID:            uuid.NewString(),
		Results:          results,
		Summary:          acc.Summary(),
		CompletionStatus: completion,
	}, nil
}

// preflight fails the run when any non-Wikipedia approved source is unreachable
func (e *Engine) preflight(ctx context.Context) error {
	reachable := e.sources.ValidateAllApprovedSources(ctx)
	var unreachable []string
	for host, ok := range reachable {
		if !ok && !sources.IsWikipediaHost(host) {
			unreachable = append(unreachable, host)
		}
	}
	if len(unreachable) > 0 {
		sort.Strings(unreachable)
		fmt.Fprintf(e.log, "✗ Pre-flight: %d approved source(s) unreachable\n", len(unreachable))
		return &PreflightError{Unreachable: unreachable}
	}
	if e.progress {
		fmt.Fprintf(e.log, "✓ Pre-flight: %d approved source(s) reachable\n", len(reachable))
	}
	return nil
}

// process validates scales sequentially or in batches and returns results in input order
func (e *Engine) process(ctx context.Context, scales []model.ScaleData) []*ScaleResult {
	out := make([]*ScaleResult, 0, len(scales))

	if !e.batch {
		for i, scale := range scales {
			var sr *ScaleResult
			if err := ctx.Err(); err != nil {
				sr = cancelledResult(scale, err)
			} else {
				result, o := e.validateScale(ctx, scale.ID, scale)
				sr = &ScaleResult{Result: result, outcome: o}
			}
			e.reportProgress(i+1, len(scales), sr.Result)
			out = append(out, sr)
		}
		return out
	}

	batches := (len(scales) + e.batchSize - 1) / e.batchSize
	for b := 0; b < batches; b++ {
		lo := b * e.batchSize
		hi := lo + e.batchSize
		if hi > len(scales) {
			hi = len(scales)
		}
		chunk := scales[lo:hi]
		if e.progress {
			fmt.Fprintf(e.log, "⚙️  Batch %d/%d (%d scales)\n", b+1, batches, len(chunk))
		}

		jobs := make([]worker.Job, len(chunk))
		for i, scale := range chunk {
			jobs[i] = &ScaleJob{engine: e, Scale: scale}
		}
		pool := worker.NewPool(len(chunk))
		for i, r := range pool.Run(ctx, jobs) {
			sr, ok := r.(*ScaleResult)
			if !ok || sr == nil {
				err := ctx.Err()
				if err == nil {
					err = context.Canceled
				}
				sr = cancelledResult(chunk[i], err)
			}
			e.reportProgress(lo+i+1, len(scales), sr.Result)
			out = append(out, sr)
		}
	}
	return out
}

func (e *Engine) reportProgress(n, total int, r model.ValidationResult) {
	if !e.progress {
		return
	}
	mark := "✗"
	if r.Status == model.StatusVerified {
		mark = "✓"
	}
	fmt.Fprintf(e.log, "  [%d/%d] %s %s: %s (risk %s)\n", n, total, mark, r.ScaleID, r.Status, r.HallucinationRisk)
}

// cancelledResult stands in for a scale that never started
func cancelledResult(scale model.ScaleData, err error) *ScaleResult {
	sysErr := systemError(model.CodeSystemError, model.SeverityHigh,
		fmt.Sprintf("validation of %q not started: %v", scale.ID, err), "")
	return &ScaleResult{Result: model.ValidationResult{
		ScaleID:           scale.ID,
		Status:            model.StatusFailed,
		Sources:           []model.CitationResult{},
		BackupSources:     []string{},
		ValidatedAt:       nowFunc().UTC(),
		HallucinationRisk: model.RiskHigh,
		ErrorSummary:      BuildErrorSummary(nil, []model.ErrorDetails{sysErr}, model.StatusFailed),
	}}
}

// CheckDualValidation returns one message per non-Wikipedia citation whose
// access and content bookkeeping is incomplete or contradictory
func CheckDualValidation(results []model.ValidationResult) []string {
	var violations []string
	for _, r := range results {
		for _, cr := range r.Sources {
			if sources.IsWikipediaURL(cr.URL) {
				continue
			}
			switch {
			case !cr.DualValidated:
				violations = append(violations, fmt.Sprintf("%s: %s has no dual-validation record", r.ScaleID, cr.URL))
			case cr.ContentMatch && !cr.Accessible:
				violations = append(violations, fmt.Sprintf("%s: %s matched content without being accessible", r.ScaleID, cr.URL))
			case cr.Accessible && cr.HTTPStatus == 0:
				violations = append(violations, fmt.Sprintf("%s: %s is accessible without an HTTP status", r.ScaleID, cr.URL))
			case cr.Accessible && !cr.ContentMatch && cr.ContentMatchDiagnostics == nil:
				violations = append(violations, fmt.Sprintf("%s: %s content mismatch has no diagnostics", r.ScaleID, cr.URL))
			}
		}
	}
	return violations
}

// ComputeCompletionStatus counts results and checks that each one finished every required step
func ComputeCompletionStatus(results []model.ValidationResult) model.CompletionStatus {
	status := model.CompletionStatus{
		TotalProcessed:     len(results),
		AllChecksCompleted: true,
	}
	for _, r := range results {
		if r.Status == model.StatusVerified {
			status.SuccessfullyVerified++
		}
		if !resultComplete(r) {
			status.AllChecksCompleted = false
		}
	}
	if status.TotalProcessed > 0 {
		status.VerificationRate = float64(status.SuccessfullyVerified) / float64(status.TotalProcessed)
	}
	return status
}

func resultComplete(r model.ValidationResult) bool {
	if !r.Status.IsTerminal() || r.InternetVerification == nil || !r.HallucinationRisk.Valid() {
		return false
	}
	if r.Status != model.StatusUnverifiable && len(r.Sources) == 0 {
		return false
	}
	if r.Status == model.StatusFailed && r.ErrorSummary == nil {
		return false
	}
	if r.Status == model.StatusVerified && r.PrimarySource == "" {
		return false
	}
	return true
}
