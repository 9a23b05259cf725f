package validate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ppiankov/scaleproof/internal/model"
)

func scalesNamed(ids ...string) []model.ScaleData {
	out := make([]model.ScaleData, len(ids))
	for i, id := range ids {
		out[i] = model.ScaleData{ID: id, Name: strings.ReplaceAll(id, "-", " ")}
	}
	return out
}

func TestOrchestratePreflightFailure(t *testing.T) {
	var calls int
	e := newTestEngine(t, Options{
		Sources: &stubSelector{
			sources: []model.ApprovedSource{source("teoria.com", 10)},
			reachable: map[string]bool{
				"teoria.com":       false,
				"musictheory.net":  true,
				"en.wikipedia.org": false,
			},
		},
		Citations: checkerFunc(func(ctx context.Context, url, title string) model.CitationResult {
			calls++
			return okCitation(url, title)
		}),
		Verifier: verifierFunc(confirmed),
	})

	run, err := e.OrchestrateCompleteValidation(context.Background(), []model.ScaleData{cMajor})

	if run != nil {
		t.Error("expected no run result")
	}
	var pre *PreflightError
	if !errors.As(err, &pre) {
		t.Fatalf("err = %v, want PreflightError", err)
	}
	if len(pre.Unreachable) != 1 || pre.Unreachable[0] != "teoria.com" {
		t.Errorf("unreachable = %v, want [teoria.com]", pre.Unreachable)
	}
	if !strings.Contains(err.Error(), "teoria.com") {
		t.Errorf("error %q does not name the host", err)
	}
	if calls != 0 {
		t.Errorf("citation calls = %d, want 0", calls)
	}
}

func TestOrchestrateIntegrityViolation(t *testing.T) {
	e := newTestEngine(t, Options{
		Sources: &stubSelector{sources: []model.ApprovedSource{source("teoria.com", 10)}},
		Citations: checkerFunc(func(ctx context.Context, url, title string) model.CitationResult {
			r := okCitation(url, title)
			r.DualValidated = false
			return r
		}),
		Verifier:      verifierFunc(confirmed),
		SkipPreflight: true,
	})

	_, err := e.OrchestrateCompleteValidation(context.Background(), []model.ScaleData{cMajor})

	var integrity *IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("err = %v, want IntegrityError", err)
	}
	if !strings.Contains(err.Error(), "teoria.com") {
		t.Errorf("error %q does not name the URL", err)
	}
}

func TestOrchestrateSummaryCounters(t *testing.T) {
	e := newTestEngine(t, Options{
		Sources: &stubSelector{
			sources:   []model.ApprovedSource{source("en.wikipedia.org", 11), source("teoria.com", 10), source("musictheory.net", 9)},
			reachable: map[string]bool{"teoria.com": true, "musictheory.net": true, "en.wikipedia.org": false},
		},
		Citations: checkerFunc(func(ctx context.Context, url, title string) model.CitationResult {
			if strings.Contains(url, "teoria.com") && strings.Contains(url, "dorian") {
				return notFoundCitation(url, title)
			}
			return okCitation(url, title)
		}),
		Verifier: verifierFunc(confirmed),
	})

	run, err := e.OrchestrateCompleteValidation(context.Background(), scalesNamed("c-major", "d-dorian"))
	if err != nil {
		t.Fatalf("OrchestrateCompleteValidation: %v", err)
	}

	s := run.Summary
	if s.TotalScales != 2 || s.VerifiedScales != 2 {
		t.Errorf("summary = %+v", s)
	}
	if s.WikipediaRejections != 2 {
		t.Errorf("wikipedia rejections = %d, want 2", s.WikipediaRejections)
	}
	if s.BackupSourceUsage != 1 {
		t.Errorf("backup usage = %d, want 1", s.BackupSourceUsage)
	}
	if s.SourceDiversity["teoria.com"] != 1 || s.SourceDiversity["musictheory.net"] != 1 {
		t.Errorf("diversity = %v", s.SourceDiversity)
	}
	if run.RunID == "" {
		t.Error("missing run id")
	}
	c := run.CompletionStatus
	if c.TotalProcessed != 2 || c.SuccessfullyVerified != 2 || c.VerificationRate != 1 {
		t.Errorf("completion = %+v", c)
	}
	if !c.AllChecksCompleted {
		t.Error("expected all checks completed")
	}
	if !c.MeetsPerformanceRequirement {
		t.Error("expected performance requirement met without a target")
	}
	for _, r := range run.Results {
		for _, cr := range r.Sources {
			if cr.Accessible && strings.Contains(cr.URL, "wikipedia.org") {
				t.Errorf("wikipedia source accepted: %s", cr.URL)
			}
		}
	}
}

func TestOrchestrateWarnsOnUnverified(t *testing.T) {
	var log bytes.Buffer
	e := newTestEngine(t, Options{
		Sources:       &stubSelector{sources: []model.ApprovedSource{source("teoria.com", 10)}},
		Citations:     always(notFoundCitation),
		Verifier:      verifierFunc(unconfirmed),
		SkipPreflight: true,
		Log:           &log,
	})

	run, err := e.OrchestrateCompleteValidation(context.Background(), scalesNamed("made-up-mode"))
	if err != nil {
		t.Fatalf("OrchestrateCompleteValidation: %v", err)
	}
	if run.CompletionStatus.VerificationRate != 0 {
		t.Errorf("verification rate = %v, want 0", run.CompletionStatus.VerificationRate)
	}
	if !strings.Contains(log.String(), "Warning") || !strings.Contains(log.String(), "made-up-mode") {
		t.Errorf("log = %q, want warning naming the scale", log.String())
	}
}

func TestOrchestrateBatchPreservesOrder(t *testing.T) {
	ids := make([]string, 7)
	for i := range ids {
		ids[i] = fmt.Sprintf("scale-%d", i)
	}
	e := newTestEngine(t, Options{
		Sources:       &stubSelector{sources: []model.ApprovedSource{source("teoria.com", 10)}},
		Citations:     always(okCitation),
		Verifier:      verifierFunc(confirmed),
		SkipPreflight: true,
		Batch:         true,
		BatchSize:     3,
		Progress:      true,
	})

	run, err := e.OrchestrateCompleteValidation(context.Background(), scalesNamed(ids...))
	if err != nil {
		t.Fatalf("OrchestrateCompleteValidation: %v", err)
	}
	if len(run.Results) != len(ids) {
		t.Fatalf("results = %d, want %d", len(run.Results), len(ids))
	}
	for i, r := range run.Results {
		if r.ScaleID != ids[i] {
			t.Errorf("result[%d] = %s, want %s", i, r.ScaleID, ids[i])
		}
	}
	if run.Summary.VerifiedScales != len(ids) {
		t.Errorf("verified = %d, want %d", run.Summary.VerifiedScales, len(ids))
	}
}

func TestOrchestrateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEngine(t, Options{
		Sources:       &stubSelector{sources: []model.ApprovedSource{source("teoria.com", 10)}},
		Citations:     always(okCitation),
		Verifier:      verifierFunc(confirmed),
		SkipPreflight: true,
	})

	run, err := e.OrchestrateCompleteValidation(ctx, scalesNamed("a", "b"))
	if err != nil {
		t.Fatalf("OrchestrateCompleteValidation: %v", err)
	}
	for _, r := range run.Results {
		if r.Status != model.StatusFailed {
			t.Errorf("%s status = %s, want failed", r.ScaleID, r.Status)
		}
	}
	if run.CompletionStatus.AllChecksCompleted {
		t.Error("cancelled run must not report all checks completed")
	}
}

func TestComputeCompletionStatus(t *testing.T) {
	verification := &model.InternetVerificationResult{}
	complete := model.ValidationResult{
		ScaleID:              "a",
		Status:               model.StatusVerified,
		Sources:              []model.CitationResult{okCitation("https://teoria.com/a", "A")},
		InternetVerification: verification,
		PrimarySource:        "https://teoria.com/a",
		HallucinationRisk:    model.RiskLow,
	}

	tests := []struct {
		name         string
		results      []model.ValidationResult
		wantRate     float64
		wantComplete bool
	}{
		{"empty", nil, 0, true},
		{"complete", []model.ValidationResult{complete}, 1, true},
		{"pending", []model.ValidationResult{func() model.ValidationResult {
			r := complete
			r.Status = model.StatusPending
			return r
		}()}, 0, false},
		{"verified without primary", []model.ValidationResult{func() model.ValidationResult {
			r := complete
			r.PrimarySource = ""
			return r
		}()}, 1, false},
		{"failed without summary", []model.ValidationResult{func() model.ValidationResult {
			r := complete
			r.Status = model.StatusFailed
			return r
		}()}, 0, false},
		{"unverifiable without sources", []model.ValidationResult{func() model.ValidationResult {
			r := complete
			r.Status = model.StatusUnverifiable
			r.Sources = nil
			r.HallucinationRisk = model.RiskHigh
			return r
		}()}, 0, true},
		{"missing verification", []model.ValidationResult{func() model.ValidationResult {
			r := complete
			r.InternetVerification = nil
			return r
		}()}, 1, false},
		{"bad risk label", []model.ValidationResult{func() model.ValidationResult {
			r := complete
			r.HallucinationRisk = "unknown"
			return r
		}()}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCompletionStatus(tt.results)
			if got.VerificationRate != tt.wantRate {
				t.Errorf("rate = %v, want %v", got.VerificationRate, tt.wantRate)
			}
			if got.AllChecksCompleted != tt.wantComplete {
				t.Errorf("complete = %v, want %v", got.AllChecksCompleted, tt.wantComplete)
			}
		})
	}
}

func TestCheckDualValidation(t *testing.T) {
	mismatch := okCitation("https://teoria.com/a", "A")
	mismatch.ContentMatch = false
	mismatch.ContentMatchDiagnostics = nil

	matchedOffline := okCitation("https://teoria.com/b", "B")
	matchedOffline.Accessible = false

	wiki := model.CitationResult{URL: "https://en.wikipedia.org/wiki/A"}

	results := []model.ValidationResult{{
		ScaleID: "a",
		Sources: []model.CitationResult{okCitation("https://teoria.com/ok", "A"), mismatch, matchedOffline, wiki},
	}}

	violations := CheckDualValidation(results)
	if len(violations) != 2 {
		t.Errorf("violations = %v, want 2", violations)
	}
}

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(model.ValidationResult{Status: model.StatusVerified, PrimarySource: "https://Teoria.com/x"}, 1, false)
	acc.Add(model.ValidationResult{Status: model.StatusFailed}, 0, false)
	acc.Add(model.ValidationResult{Status: model.StatusUnverifiable}, 2, true)

	s := acc.Summary()
	if s.TotalScales != 3 || s.VerifiedScales != 1 || s.FailedScales != 1 || s.UnverifiableScales != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.WikipediaRejections != 3 || s.BackupSourceUsage != 1 {
		t.Errorf("rejections/backups = %d/%d", s.WikipediaRejections, s.BackupSourceUsage)
	}
	if s.SourceDiversity["teoria.com"] != 1 {
		t.Errorf("diversity = %v", s.SourceDiversity)
	}

	s.SourceDiversity["teoria.com"] = 99
	if acc.Summary().SourceDiversity["teoria.com"] != 1 {
		t.Error("Summary must return a copy")
	}
}

func TestAccumulatorCreditsRegistryHost(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(model.ValidationResult{Status: model.StatusVerified, PrimarySource: "https://www.teoria.com/en/reference/s/major.php"}, 0, false)
	acc.Add(model.ValidationResult{Status: model.StatusVerified, PrimarySource: "https://teoria.com/en/reference/s/minor.php"}, 0, false)

	d := acc.Summary().SourceDiversity
	if len(d) != 1 || d["teoria.com"] != 2 {
		t.Errorf("diversity = %v, want teoria.com:2", d)
	}
}
