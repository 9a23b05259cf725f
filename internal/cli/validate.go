package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/report"
	"github.com/ppiankov/scaleproof/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	validateInput   string
	validateOutput  string
	validateFormat  string
	sourcesPath     string
	timeoutMs       int
	retries         int
	batchMode       bool
	batchSize       int
	noProgress      bool
	respectRobots   bool
	noCache         bool
	skipPreflight   bool
	searchProvider  string
	performanceGoal time.Duration
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate scale records against approved sources and write reports",
	Long: `Validate runs the complete provenance check over an input file of scales:
- Pre-flight: every approved source must be reachable
- Each scale is cited from its highest-priority source, falling back to backups
- Every citation must be reachable and match the scale name
- Existence is corroborated across independent sources
- JSON / Markdown / HTML reports are written to the output directory

Example:
  scaleproof validate --input scales.json
  scaleproof validate -i scales.json --format all --output ./reports
  scaleproof validate -i scales.json --sources sources.yaml --batch --batch-size 20`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	f := validateCmd.Flags()
	f.StringVarP(&validateInput, "input", "i", "", "input JSON file with scales (array or {\"scales\": [...]})")
	f.StringVarP(&validateOutput, "output", "o", "", "output directory for reports (default ./scaleproof-reports)")
	f.StringVar(&validateFormat, "format", "", "report format: json, markdown, html, both, all (default both)")
	f.StringVar(&sourcesPath, "sources", "", "approved sources file (JSON or YAML); built-in defaults otherwise")
	f.IntVar(&timeoutMs, "timeout", 0, "per-request timeout in milliseconds (default 10000)")
	f.IntVar(&retries, "retries", 0, "retry attempts per request (default 3)")
	f.BoolVar(&batchMode, "batch", false, "validate scales concurrently in batches")
	f.IntVar(&batchSize, "batch-size", 0, "scales per batch (default 10)")
	f.BoolVar(&noProgress, "no-progress", false, "suppress per-scale progress lines")
	f.BoolVar(&respectRobots, "respect-robots", false, "skip citations disallowed by robots.txt")
	f.BoolVar(&noCache, "no-cache", false, "disable the citation page cache")
	f.BoolVar(&skipPreflight, "skip-preflight", false, "skip the approved-source reachability check")
	f.StringVar(&searchProvider, "search-provider", "", "existence search: reference, http, llm")
	f.DurationVar(&performanceGoal, "performance-target", 0, "soft duration target for the whole run (default 30s)")
}

// applyValidateFlags overrides configuration with flags the user actually set
func applyValidateFlags(cmd *cobra.Command, cfg *model.Config) {
	f := cmd.Flags()
	if f.Changed("output") {
		cfg.Output.Dir = validateOutput
	}
	if f.Changed("format") {
		cfg.Output.Format = validateFormat
	}
	if f.Changed("timeout") {
		cfg.HTTP.Timeout = time.Duration(timeoutMs) * time.Millisecond
	}
	if f.Changed("retries") {
		cfg.Validation.RetryAttempts = retries
	}
	if f.Changed("batch") {
		cfg.Concurrency.Batch = batchMode
	}
	if f.Changed("batch-size") {
		cfg.Concurrency.BatchSize = batchSize
	}
	if f.Changed("no-progress") {
		cfg.Output.Progress = !noProgress
	}
	if f.Changed("respect-robots") {
		cfg.HTTP.RespectRobots = respectRobots
	}
	if f.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if f.Changed("skip-preflight") {
		cfg.Validation.SkipPreflight = skipPreflight
	}
	if f.Changed("search-provider") {
		cfg.Search.Provider = searchProvider
	}
	if f.Changed("performance-target") {
		cfg.Validation.PerformanceTarget = performanceGoal
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	applyValidateFlags(cmd, cfg)
	if !report.ValidFormat(cfg.Output.Format) {
		return fmt.Errorf("unknown report format %q (supported: json, markdown, html, both, all)", cfg.Output.Format)
	}

	scales, err := readScales(validateInput)
	if err != nil {
		return err
	}
	registry, err := loadRegistry(sourcesPath)
	if err != nil {
		return err
	}

	log := cmd.ErrOrStderr()
	fmt.Fprintf(log, "\n")
	fmt.Fprintf(log, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(log, "  Scaleproof Validation\n")
	fmt.Fprintf(log, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(log, "\n")
	fmt.Fprintf(log, "  Input:        %s (%d scales)\n", validateInput, len(scales))
	fmt.Fprintf(log, "  Sources:      %d approved\n", registry.Len())
	fmt.Fprintf(log, "  Search:       %s\n", cfg.Search.Provider)
	if cfg.Concurrency.Batch {
		fmt.Fprintf(log, "  Batch size:   %d\n", cfg.Concurrency.BatchSize)
	}
	fmt.Fprintf(log, "  Output dir:   %s (%s)\n", cfg.Output.Dir, cfg.Output.Format)
	fmt.Fprintf(log, "\n")

	comps, err := buildComponents(cfg, registry, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := comps.engine.OrchestrateCompleteValidation(ctx, scales)
	if err != nil {
		return fmt.Errorf("validation run: %w", err)
	}

	db := store.NewDatabase()
	for i := range run.Results {
		if _, err := db.AddScale(scales[i], &run.Results[i]); err != nil {
			return fmt.Errorf("store %s: %w", scales[i].ID, err)
		}
	}

	rep := report.NewGenerator(cfg.Validation.DiversityLimit).BuildFromRun(run)
	basename := "scale-validation-" + run.RunID[:8]
	paths, err := report.WriteReports(rep, cfg.Output.Dir, basename, cfg.Output.Format)
	if err != nil {
		return fmt.Errorf("write reports: %w", err)
	}

	s := rep.Summary
	stats := db.Stats()
	fmt.Fprintf(log, "\n")
	fmt.Fprintf(log, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(log, "  Validation Complete\n")
	fmt.Fprintf(log, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(log, "\n")
	fmt.Fprintf(log, "  Total:          %d scales\n", s.TotalScales)
	fmt.Fprintf(log, "  Verified:       %d\n", s.VerifiedScales)
	fmt.Fprintf(log, "  Failed:         %d\n", s.FailedScales)
	fmt.Fprintf(log, "  Unverifiable:   %d\n", s.UnverifiableScales)
	fmt.Fprintf(log, "  Stored:         %d authoritative / %d rejected\n", stats.Verified, stats.Unverified)
	fmt.Fprintf(log, "  Duration:       %d ms\n", run.CompletionStatus.DurationMs)
	if !s.SourceDiversity.IsDiversityCompliant {
		fmt.Fprintf(log, "  ⚠️  Source diversity: %s backs %.0f%% of verified scales\n",
			s.SourceDiversity.DominantSource, s.SourceDiversity.MaxSingleSourcePercentage*100)
	}
	fmt.Fprintf(log, "\n")
	for _, p := range paths {
		fmt.Fprintf(log, "✓ Wrote %s\n", p)
	}
	return nil
}
