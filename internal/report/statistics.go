package report

import (
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/sources"
)

// DefaultDiversityLimit is the largest share of verified scales one source may back
const DefaultDiversityLimit = 0.4

// CreateSummaryStatistics counts results by status and measures source diversity
// over the primary sources of verified scales
func CreateSummaryStatistics(results []model.ValidationResult, diversityLimit float64) model.SummaryStatistics {
	if diversityLimit <= 0 {
		diversityLimit = DefaultDiversityLimit
	}

	s := model.SummaryStatistics{
		TotalScales: len(results),
		RiskDistribution: map[string]int{
			string(model.RiskLow):    0,
			string(model.RiskMedium): 0,
			string(model.RiskHigh):   0,
		},
	}

	counts := make(map[string]int)
	var confidences []float64
	for _, r := range results {
		switch r.Status {
		case model.StatusVerified:
			s.VerifiedScales++
			if host, err := sources.SourceHost(r.PrimarySource); err == nil {
				counts[host]++
			}
			if len(r.Sources) > 0 && r.Sources[0].URL != r.PrimarySource {
				s.BackupSourceUsage++
			}
		case model.StatusFailed:
			s.FailedScales++
		case model.StatusUnverifiable:
			s.UnverifiableScales++
		default:
			s.PendingScales++
		}
		if r.HallucinationRisk.Valid() {
			s.RiskDistribution[string(r.HallucinationRisk)]++
		}
		if r.InternetVerification != nil {
			confidences = append(confidences, r.InternetVerification.Confidence)
		}
		for _, src := range r.Sources {
			if src.ErrorDetails != nil && src.ErrorDetails.Code == model.CodeWikipediaRejected {
				s.WikipediaRejections++
			}
		}
	}

	if mean, err := stats.Mean(confidences); err == nil {
		s.AverageConfidence = mean
	}
	s.SourceDiversity = sourceDiversity(counts, s.VerifiedScales, diversityLimit)
	return s
}

func sourceDiversity(counts map[string]int, verified int, limit float64) model.SourceDiversity {
	d := model.SourceDiversity{
		Hostnames:            make([]string, 0, len(counts)),
		Counts:               counts,
		IsDiversityCompliant: true,
	}
	for host := range counts {
		d.Hostnames = append(d.Hostnames, host)
	}
	sort.Strings(d.Hostnames)
	if verified == 0 || len(counts) == 0 {
		return d
	}

	values := make(stats.Float64Data, 0, len(counts))
	for _, host := range d.Hostnames {
		values = append(values, float64(counts[host]))
	}
	maxCount, err := stats.Max(values)
	if err != nil {
		return d
	}

	d.MaxSingleSourcePercentage = maxCount / float64(verified)
	d.IsDiversityCompliant = d.MaxSingleSourcePercentage <= limit
	if !d.IsDiversityCompliant {
		// Hostnames are sorted, so ties resolve alphabetically
		for _, host := range d.Hostnames {
			if float64(counts[host]) == maxCount {
				d.DominantSource = host
				break
			}
		}
	}
	return d
}
