package model

import "time"

// Report is the JSON report document
type Report struct {
	RunID       string             `json:"runId,omitempty"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Summary     SummaryStatistics  `json:"summary"`
	Problems    ProblemReport      `json:"problems"`
	Flagged     []FlaggedResult    `json:"flagged"`
	Completion  *CompletionStatus  `json:"completionStatus,omitempty"`
	Results     []ValidationResult `json:"results"`
	Metadata    ReportMetadata     `json:"metadata"`
}

// SummaryStatistics counts results by status and measures source diversity
type SummaryStatistics struct {
	TotalScales         int             `json:"totalScales"`
	VerifiedScales      int             `json:"verifiedScales"`
	FailedScales        int             `json:"failedScales"`
	UnverifiableScales  int             `json:"unverifiableScales"`
	PendingScales       int             `json:"pendingScales"`
	WikipediaRejections int             `json:"wikipediaRejections"`
	BackupSourceUsage   int             `json:"backupSourceUsage"`
	AverageConfidence   float64         `json:"averageConfidence"`
	RiskDistribution    map[string]int  `json:"riskDistribution"`
	SourceDiversity     SourceDiversity `json:"sourceDiversity"`
}

// SourceDiversity measures whether one source dominates the verified evidence base
type SourceDiversity struct {
	Hostnames                 []string       `json:"hostnames"`
	Counts                    map[string]int `json:"counts"`
	MaxSingleSourcePercentage float64        `json:"maxSingleSourcePercentage"`
	IsDiversityCompliant      bool           `json:"isDiversityCompliant"`
	DominantSource            string         `json:"dominantSource,omitempty"`
}

// ProblemEntry ties one error to the scale and URL it came from
type ProblemEntry struct {
	ScaleID string       `json:"scaleId"`
	URL     string       `json:"url,omitempty"`
	Error   ErrorDetails `json:"error"`
}

// ProblemReport groups every recorded error by category and severity
type ProblemReport struct {
	Total            int                              `json:"total"`
	ByCategory       map[ErrorCategory][]ProblemEntry `json:"byCategory"`
	BySeverity       map[ErrorSeverity][]ProblemEntry `json:"bySeverity"`
	CriticalProblems []ProblemEntry                   `json:"criticalProblems"`
}

// FlaggedResult is a result that needs human review
type FlaggedResult struct {
	ScaleID           string    `json:"scaleId"`
	Status            Status    `json:"status"`
	HallucinationRisk RiskLevel `json:"hallucinationRisk"`
	Reasons           []string  `json:"reasons"`
}

// ReportMetadata describes how the report was produced
type ReportMetadata struct {
	Format    string `json:"format"`
	Generator string `json:"generator"`
	Version   string `json:"version"`
}
