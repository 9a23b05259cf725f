package search

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/ppiankov/scaleproof/internal/model"
)

// Heuristic constants. They reproduce the reference scoring model and are
// tunable rather than derived.
const (
	DefaultConfidenceThreshold = 0.5
	DiversityBonusWeight       = 0.3 // Max boost for confirmations spread over many sources
	DiversitySaturation        = 3   // Unique sources at which the diversity boost is full
	ConsistencyTolerance       = 0.3 // Max deviation from the mean for consistent findings
	LowRiskConfidence          = 0.7
	MediumRiskConfidence       = 0.5
	KeywordBonus               = 0.1
)

// CrossReference summarizes the results that count as confirmations
type CrossReference struct {
	SourcesFound             int
	IndependentConfirmations int
	FoundSources             []string
	AverageConfidence        float64
	Confidence               float64
	Consistent               bool
}

// CrossReferenceResults keeps results that were found with confidence >= threshold
// and aggregates them. Fewer than two valid results are vacuously consistent.
func CrossReferenceResults(results []Result, threshold float64) CrossReference {
	var confidences []float64
	unique := make(map[string]bool)
	for _, r := range results {
		if !r.Found || r.Confidence < threshold {
			continue
		}
		confidences = append(confidences, r.Confidence)
		unique[r.Source] = true
	}

	cr := CrossReference{
		SourcesFound:             len(unique),
		IndependentConfirmations: len(confidences),
		FoundSources:             make([]string, 0, len(unique)),
		Consistent:               true,
	}
	for host := range unique {
		cr.FoundSources = append(cr.FoundSources, host)
	}
	sort.Strings(cr.FoundSources)

	if len(confidences) == 0 {
		return cr
	}

	mean, err := stats.Mean(confidences)
	if err != nil {
		return cr
	}
	cr.AverageConfidence = mean

	diversity := math.Min(float64(cr.SourcesFound)/DiversitySaturation, 1)
	cr.Confidence = math.Min(mean*(1+diversity*DiversityBonusWeight), 1)

	if len(confidences) >= 2 {
		cr.Consistent = maxDeviation(confidences, mean) <= ConsistencyTolerance
	}
	return cr
}

// DetectPotentialHallucination labels how likely a scale is fabricated
func DetectPotentialHallucination(cr CrossReference) model.RiskLevel {
	switch {
	case cr.SourcesFound <= 1:
		return model.RiskHigh
	case cr.AverageConfidence < MediumRiskConfidence || !cr.Consistent:
		return model.RiskMedium
	case cr.AverageConfidence >= LowRiskConfidence:
		return model.RiskLow
	default:
		return model.RiskMedium
	}
}

func maxDeviation(values []float64, mean float64) float64 {
	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - mean)
	}
	maxDev, err := stats.Max(deviations)
	if err != nil {
		return 0
	}
	return maxDev
}
