package search

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/sources"
	"golang.org/x/sync/errgroup"
)

// maxErrorNotes bounds how many provider errors are copied into result notes
const maxErrorNotes = 5

// Options configure the internet verifier
type Options struct {
	Provider            Provider // Defaults to the reference provider
	Sources             []model.ApprovedSource
	ConfidenceThreshold float64
	Workers             int
	Log                 io.Writer
	Verbose             bool
}

// Verifier corroborates that a scale exists by searching it across many sources
type Verifier struct {
	provider  Provider
	sources   []model.ApprovedSource
	threshold float64
	workers   int
	log       io.Writer
	verbose   bool
}

// NewVerifier creates a verifier. Wikipedia-family sources are never searched.
func NewVerifier(opts Options) *Verifier {
	if opts.Provider == nil {
		opts.Provider = NewReferenceProvider()
	}
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Log == nil {
		opts.Log = os.Stderr
	}

	searchable := make([]model.ApprovedSource, 0, len(opts.Sources))
	for _, src := range opts.Sources {
		if !sources.IsWikipediaHost(src.Hostname) {
			searchable = append(searchable, src)
		}
	}

	return &Verifier{
		provider:  opts.Provider,
		sources:   searchable,
		threshold: opts.ConfidenceThreshold,
		workers:   opts.Workers,
		log:       opts.Log,
		verbose:   opts.Verbose,
	}
}

// Provider returns the search provider in use
func (v *Verifier) Provider() Provider {
	return v.provider
}

// VerifyScaleExists searches every query against every source and cross-references
// the answers. Provider errors count as "not found" and are noted, never returned.
func (v *Verifier) VerifyScaleExists(ctx context.Context, name, culturalContext string) model.InternetVerificationResult {
	queries := BuildSearchQueries(name, culturalContext)
	result := model.InternetVerificationResult{
		SearchQueries:      queries,
		FoundSources:       []string{},
		ConsistentFindings: true,
		HallucinationRisk:  model.RiskHigh,
		Notes:              []string{},
	}

	if len(queries) == 0 {
		result.Notes = append(result.Notes, "empty scale name, nothing to search")
		return result
	}
	if len(v.sources) == 0 {
		result.Notes = append(result.Notes, "no searchable sources configured")
		return result
	}

	results, errs := v.searchAll(ctx, queries, name, culturalContext)

	cr := CrossReferenceResults(results, v.threshold)
	result.SourcesFound = cr.SourcesFound
	result.IndependentConfirmations = cr.IndependentConfirmations
	result.FoundSources = cr.FoundSources
	result.Confidence = cr.Confidence
	result.ConsistentFindings = cr.Consistent
	result.ScaleExists = cr.IndependentConfirmations >= 2
	result.HallucinationRisk = DetectPotentialHallucination(cr)

	result.Notes = append(result.Notes, fmt.Sprintf("%d confirmations from %d sources across %d queries (%s provider)",
		cr.IndependentConfirmations, cr.SourcesFound, len(queries), v.provider.Name()))
	if !cr.Consistent {
		result.Notes = append(result.Notes, "source confidences disagree")
	}
	for i, err := range errs {
		if i == maxErrorNotes {
			result.Notes = append(result.Notes, fmt.Sprintf("... and %d more search errors", len(errs)-maxErrorNotes))
			break
		}
		result.Notes = append(result.Notes, "search error: "+err.Error())
	}

	if v.verbose {
		_, _ = fmt.Fprintf(v.log, "  search %s: %d sources, confidence %.2f, risk %s\n",
			name, cr.SourcesFound, cr.Confidence, result.HallucinationRisk)
	}
	return result
}

// searchAll runs every (query, source) pair with bounded concurrency. Results
// are returned in query-major order regardless of completion order.
func (v *Verifier) searchAll(ctx context.Context, queries []string, name, culturalContext string) ([]Result, []error) {
	results := make([]Result, len(queries)*len(v.sources))
	var (
		mu   sync.Mutex
		errs []indexedError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)

	for qi, text := range queries {
		q := Query{Text: text, ScaleName: name, CulturalContext: culturalContext}
		for si, src := range v.sources {
			idx := qi*len(v.sources) + si
			src := src
			g.Go(func() error {
				r, err := v.provider.Search(gctx, q, src)
				if err != nil {
					r = Result{Source: src.Hostname, Query: q.Text}
					mu.Lock()
					errs = append(errs, indexedError{idx: idx, err: fmt.Errorf("%s %q: %w", src.Hostname, q.Text, err)})
					mu.Unlock()
				}
				results[idx] = r
				return nil
			})
		}
	}
	_ = g.Wait()

	sort.Slice(errs, func(i, j int) bool { return errs[i].idx < errs[j].idx })
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e.err
	}
	return results, out
}

type indexedError struct {
	idx int
	err error
}
