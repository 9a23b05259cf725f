package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/ppiankov/scaleproof/internal/model"
)

var nowFunc = time.Now

// Markdown section headers consumed by downstream tooling
const (
	HeaderTitle        = "# Wikipedia-Free Scale Validation Report"
	HeaderSummary      = "## Summary"
	HeaderDiversity    = "## Source Diversity Analysis"
	HeaderDistribution = "### Source Distribution"
	HeaderProblems     = "## Problems Detected"
)

// Generator turns validation results into reports
type Generator struct {
	diversityLimit float64
}

// NewGenerator creates a report generator. A non-positive limit uses DefaultDiversityLimit.
func NewGenerator(diversityLimit float64) *Generator {
	if diversityLimit <= 0 {
		diversityLimit = DefaultDiversityLimit
	}
	return &Generator{diversityLimit: diversityLimit}
}

// Build assembles the report document for a batch of results
func (g *Generator) Build(results []model.ValidationResult) *model.Report {
	if results == nil {
		results = []model.ValidationResult{}
	}
	return &model.Report{
		GeneratedAt: nowFunc().UTC(),
		Summary:     CreateSummaryStatistics(results, g.diversityLimit),
		Problems:    CategorizeProblems(results),
		Flagged:     FlagUnverifiableContent(results),
		Results:     results,
		Metadata: model.ReportMetadata{
			Format:    "json",
			Generator: "scaleproof",
			Version:   model.Version,
		},
	}
}

// BuildFromRun assembles a report for a whole-database run. Run counters that
// results alone cannot reconstruct (skipped Wikipedia sources) come from the run summary.
func (g *Generator) BuildFromRun(run *model.RunResult) *model.Report {
	rep := g.Build(run.Results)
	rep.RunID = run.RunID
	rep.Summary.WikipediaRejections += run.Summary.WikipediaRejections
	completion := run.CompletionStatus
	rep.Completion = &completion
	return rep
}

// GenerateJSONReport renders the report as indented JSON
func GenerateJSONReport(rep *model.Report) ([]byte, error) {
	out := *rep
	out.Metadata.Format = "json"
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// GenerateMarkdownReport renders the report as Markdown with fixed section headers
func GenerateMarkdownReport(rep *model.Report) string {
	var b strings.Builder
	s := rep.Summary

	b.WriteString(HeaderTitle + "\n\n")
	fmt.Fprintf(&b, "Generated: %s\n", rep.GeneratedAt.Format(time.RFC3339))
	if rep.RunID != "" {
		fmt.Fprintf(&b, "Run: `%s`\n", rep.RunID)
	}
	b.WriteString("\n")

	b.WriteString(HeaderSummary + "\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Total scales | %d |\n", s.TotalScales)
	fmt.Fprintf(&b, "| Verified | %d |\n", s.VerifiedScales)
	fmt.Fprintf(&b, "| Failed | %d |\n", s.FailedScales)
	fmt.Fprintf(&b, "| Unverifiable | %d |\n", s.UnverifiableScales)
	if s.PendingScales > 0 {
		fmt.Fprintf(&b, "| Pending | %d |\n", s.PendingScales)
	}
	fmt.Fprintf(&b, "| Wikipedia rejections | %d |\n", s.WikipediaRejections)
	fmt.Fprintf(&b, "| Backup source usage | %d |\n", s.BackupSourceUsage)
	fmt.Fprintf(&b, "| Average confidence | %.2f |\n", s.AverageConfidence)
	fmt.Fprintf(&b, "| Risk (low / medium / high) | %d / %d / %d |\n",
		s.RiskDistribution[string(model.RiskLow)],
		s.RiskDistribution[string(model.RiskMedium)],
		s.RiskDistribution[string(model.RiskHigh)])
	if c := rep.Completion; c != nil {
		fmt.Fprintf(&b, "| Verification rate | %.1f%% |\n", c.VerificationRate*100)
		fmt.Fprintf(&b, "| All checks completed | %s |\n", yesNo(c.AllChecksCompleted))
		fmt.Fprintf(&b, "| Duration | %d ms |\n", c.DurationMs)
		fmt.Fprintf(&b, "| Meets performance target | %s |\n", yesNo(c.MeetsPerformanceRequirement))
	}
	b.WriteString("\n")

	d := s.SourceDiversity
	b.WriteString(HeaderDiversity + "\n\n")
	fmt.Fprintf(&b, "- Max single-source share: %.1f%%\n", d.MaxSingleSourcePercentage*100)
	fmt.Fprintf(&b, "- Diversity compliant: %s\n", yesNo(d.IsDiversityCompliant))
	if d.DominantSource != "" {
		fmt.Fprintf(&b, "- Dominant source: `%s`\n", d.DominantSource)
	}
	b.WriteString("\n")

	b.WriteString(HeaderDistribution + "\n\n")
	if len(d.Hostnames) == 0 {
		b.WriteString("No verified scales.\n\n")
	} else {
		b.WriteString("| Source | Verified scales | Share |\n|---|---|---|\n")
		for _, host := range d.Hostnames {
			share := 0.0
			if s.VerifiedScales > 0 {
				share = float64(d.Counts[host]) / float64(s.VerifiedScales) * 100
			}
			fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", host, d.Counts[host], share)
		}
		b.WriteString("\n")
	}

	if rep.Problems.Total > 0 {
		writeProblems(&b, rep.Problems)
	}

	if len(rep.Flagged) > 0 {
		b.WriteString("## Flagged for Review\n\n")
		for _, f := range rep.Flagged {
			fmt.Fprintf(&b, "- `%s` (%s, risk %s): %s\n", f.ScaleID, f.Status, f.HallucinationRisk, strings.Join(f.Reasons, "; "))
		}
		b.WriteString("\n")
	}

	if len(rep.Results) > 0 {
		b.WriteString("## Results\n\n")
		b.WriteString("| Scale | Status | Risk | Primary source | Attempts |\n|---|---|---|---|---|\n")
		for _, r := range rep.Results {
			primary := r.PrimarySource
			if primary == "" {
				primary = "-"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %d |\n", r.ScaleID, r.Status, r.HallucinationRisk, primary, len(r.Sources))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n\nGenerated by scaleproof %s\n", rep.Metadata.Version)
	return b.String()
}

func writeProblems(b *strings.Builder, p model.ProblemReport) {
	b.WriteString(HeaderProblems + "\n\n")
	fmt.Fprintf(b, "%d problem(s) recorded.\n\n", p.Total)

	b.WriteString("### By Category\n\n")
	categories := make([]string, 0, len(p.ByCategory))
	for c := range p.ByCategory {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(b, "- %s: %d\n", c, len(p.ByCategory[model.ErrorCategory(c)]))
	}
	b.WriteString("\n### By Severity\n\n")
	for _, sev := range []model.ErrorSeverity{model.SeverityCritical, model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
		if n := len(p.BySeverity[sev]); n > 0 {
			fmt.Fprintf(b, "- %s: %d\n", sev, n)
		}
	}
	b.WriteString("\n")

	if len(p.CriticalProblems) > 0 {
		b.WriteString("### Critical Problems\n\n")
		for _, e := range p.CriticalProblems {
			fmt.Fprintf(b, "- `%s` %s: %s\n", e.ScaleID, e.Error.Code, e.Error.Message)
		}
		b.WriteString("\n")
	}
}

// GenerateHTMLReport renders the Markdown report as a standalone HTML page
func GenerateHTMLReport(rep *model.Report) []byte {
	md := GenerateMarkdownReport(rep)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Wikipedia-Free Scale Validation Report",
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func yesNo(v bool) string {
	if v {
		return "✓ yes"
	}
	return "✗ no"
}
