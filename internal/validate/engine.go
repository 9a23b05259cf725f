package validate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/sources"
)

var nowFunc = time.Now

// Options configures the validation engine
type Options struct {
	Sources   SourceSelector
	Citations CitationChecker
	Verifier  ExistenceVerifier

	Batch             bool          // Validate scales concurrently in fixed-size batches
	BatchSize         int           // Scales per batch (and workers per batch)
	PerformanceTarget time.Duration // Soft run duration target, 0 disables
	SkipPreflight     bool

	Log      io.Writer // Progress output (default os.Stderr)
	Verbose  bool      // Per-source progress lines
	Progress bool      // Per-scale / per-batch progress lines
}

// Engine runs the per-scale validation state machine and whole-database runs
type Engine struct {
	sources   SourceSelector
	citations CitationChecker
	verifier  ExistenceVerifier

	batch             bool
	batchSize         int
	performanceTarget time.Duration
	skipPreflight     bool

	log      io.Writer
	verbose  bool
	progress bool
}

// outcome carries the per-scale facts the run accumulator needs
type outcome struct {
	wikipediaSkips int
	usedBackup     bool
}

// NewEngine creates a validation engine. All three collaborators are required.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Sources == nil {
		return nil, errors.New("validation engine: source selector is required")
	}
	if opts.Citations == nil {
		return nil, errors.New("validation engine: citation checker is required")
	}
	if opts.Verifier == nil {
		return nil, errors.New("validation engine: existence verifier is required")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.Log == nil {
		opts.Log = os.Stderr
	}
	return &Engine{
		sources:           opts.Sources,
		citations:         opts.Citations,
		verifier:          opts.Verifier,
		batch:             opts.Batch,
		batchSize:         opts.BatchSize,
		performanceTarget: opts.PerformanceTarget,
		skipPreflight:     opts.SkipPreflight,
		log:               opts.Log,
		verbose:           opts.Verbose,
		progress:          opts.Progress,
	}, nil
}

// ValidateScale validates one scale against its prioritized approved sources and
// the internet verifier. It never panics; internal failures produce a failed result.
func (e *Engine) ValidateScale(ctx context.Context, id string, scale model.ScaleData) model.ValidationResult {
	result, _ := e.validateScale(ctx, id, scale)
	return result
}

func (e *Engine) validateScale(ctx context.Context, id string, scale model.ScaleData) (result model.ValidationResult, out outcome) {
	if id == "" {
		id = scale.ID
	}
	result = model.ValidationResult{
		ScaleID:       id,
		Status:        model.StatusPending,
		Sources:       []model.CitationResult{},
		BackupSources: []string{},
		ValidatedAt:   nowFunc().UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			sysErr := systemError(model.CodeSystemError, model.SeverityCritical,
				fmt.Sprintf("validation of %q aborted: %v", id, r), adviceReportBug)
			result.Status = model.StatusFailed
			result.HallucinationRisk = model.RiskHigh
			result.ErrorSummary = BuildErrorSummary(nil, []model.ErrorDetails{sysErr}, model.StatusFailed)
			if e.progress || e.verbose {
				fmt.Fprintf(e.log, "  ✗ %s: internal error: %v\n", id, r)
			}
		}
	}()

	var systemErrors []model.ErrorDetails

	scaleType := sources.InferScaleType(scale)
	prioritized := e.sources.GetSourcesByPriority(scaleType, scale.CulturalContext)
	if len(prioritized) == 0 {
		systemErrors = append(systemErrors, systemError(model.CodeNoSources, model.SeverityHigh,
			fmt.Sprintf("no approved sources cover scale type %q", scaleType), adviceAddSource))
	}

	// Sources are attempted one at a time in priority order; the first
	// non-Wikipedia source is the primary attempt, the rest are backups.
	var primaryURL string
	var attemptedHosts []string
	for _, src := range prioritized {
		if sources.IsWikipediaHost(src.Hostname) {
			out.wikipediaSkips++
			if e.verbose {
				fmt.Fprintf(e.log, "  ⚠️  %s: skipping %s (Wikipedia is not an approved citation)\n", id, src.Hostname)
			}
			continue
		}
		if err := ctx.Err(); err != nil {
			systemErrors = append(systemErrors, systemError(model.CodeSystemError, model.SeverityHigh,
				fmt.Sprintf("validation cancelled: %v", err), ""))
			break
		}

		citationURL := src.URLFor(scale)
		cr := e.citations.ValidateCitation(ctx, citationURL, scale.Name)
		result.Sources = append(result.Sources, cr)
		attemptedHosts = append(attemptedHosts, src.Hostname)

		if cr.Succeeded() {
			primaryURL = citationURL
			out.usedBackup = len(attemptedHosts) > 1
			if e.verbose {
				fmt.Fprintf(e.log, "  ✓ %s: %s\n", id, citationURL)
			}
			break
		}
		if e.verbose {
			fmt.Fprintf(e.log, "  ✗ %s: %s (%s)\n", id, citationURL, failureCode(cr))
		}
	}

	result.PrimarySource = primaryURL
	result.BackupSources = backupHosts(e.sources, primaryURL, attemptedHosts)

	verification := e.verifier.VerifyScaleExists(ctx, scale.Name, scale.CulturalContext)
	result.InternetVerification = &verification

	sourceSuccess := primaryURL != ""
	switch {
	case len(prioritized) == 0:
		result.Status = model.StatusUnverifiable
		result.HallucinationRisk = model.RiskHigh
	case sourceSuccess && verification.ScaleExists:
		result.Status = model.StatusVerified
		result.HallucinationRisk = model.RiskMedium
		if verification.Confidence > 0.8 {
			result.HallucinationRisk = model.RiskLow
		}
	case verification.ScaleExists:
		result.Status = model.StatusUnverifiable
		result.HallucinationRisk = model.RiskHigh
	default:
		result.Status = model.StatusFailed
		result.HallucinationRisk = model.RiskHigh
	}

	result.ErrorSummary = BuildErrorSummary(result.Sources, systemErrors, result.Status)
	return result, out
}

// backupHosts lists the hostnames that remain available as backups
func backupHosts(sel SourceSelector, primaryURL string, attempted []string) []string {
	hosts := []string{}
	if primaryURL != "" {
		for _, src := range sel.GetBackupSources(primaryURL) {
			if !sources.IsWikipediaHost(src.Hostname) {
				hosts = append(hosts, src.Hostname)
			}
		}
		return hosts
	}
	if len(attempted) > 1 {
		hosts = append(hosts, attempted[1:]...)
	}
	return hosts
}
