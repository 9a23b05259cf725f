package model

import "time"

// Status is the state of a scale's validation
type Status string

const (
	StatusPending      Status = "pending"
	StatusVerified     Status = "verified"
	StatusFailed       Status = "failed"
	StatusUnverifiable Status = "unverifiable"
)

// IsTerminal reports whether the status ends the validation state machine
func (s Status) IsTerminal() bool {
	return s == StatusVerified || s == StatusFailed || s == StatusUnverifiable
}

// RiskLevel estimates how likely a scale record is fabricated
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether the risk label is one of the known levels
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// InternetVerificationResult is the cross-source corroboration of a scale's existence.
// SourcesFound <= IndependentConfirmations; ScaleExists implies IndependentConfirmations >= 2.
type InternetVerificationResult struct {
	ScaleExists              bool      `json:"scaleExists"`
	SourcesFound             int       `json:"sourcesFound"`
	IndependentConfirmations int       `json:"independentConfirmations"`
	SearchQueries            []string  `json:"searchQueries"`
	FoundSources             []string  `json:"foundSources"`
	Confidence               float64   `json:"confidence"`
	ConsistentFindings       bool      `json:"consistentFindings"`
	HallucinationRisk        RiskLevel `json:"hallucinationRisk"`
	Notes                    []string  `json:"notes"`
}

// ValidationResult is produced once per scale per validation run
type ValidationResult struct {
	ScaleID              string                      `json:"scaleId"`
	Status               Status                      `json:"status"`
	Sources              []CitationResult            `json:"sources"`
	InternetVerification *InternetVerificationResult `json:"internetVerification"`
	PrimarySource        string                      `json:"primarySource,omitempty"`
	BackupSources        []string                    `json:"backupSources"`
	ValidatedAt          time.Time                   `json:"validatedAt"`
	HallucinationRisk    RiskLevel                   `json:"hallucinationRisk"`
	ErrorSummary         *ValidationErrorSummary     `json:"errorSummary,omitempty"`
}

// ValidationErrorSummary aggregates the error details of one result
type ValidationErrorSummary struct {
	TotalErrors        int                   `json:"totalErrors"`
	ByCategory         map[ErrorCategory]int `json:"byCategory"`
	BySeverity         map[ErrorSeverity]int `json:"bySeverity"`
	CriticalErrors     []ErrorDetails        `json:"criticalErrors"`
	SystemErrors       []ErrorDetails        `json:"systemErrors,omitempty"` // Errors not tied to a cited source
	RecommendedActions []string              `json:"recommendedActions"`
}

// ValidationSummary holds run-level counters, rebuilt at the start of each full run
type ValidationSummary struct {
	TotalScales         int            `json:"totalScales"`
	VerifiedScales      int            `json:"verifiedScales"`
	FailedScales        int            `json:"failedScales"`
	UnverifiableScales  int            `json:"unverifiableScales"`
	WikipediaRejections int            `json:"wikipediaRejections"`
	BackupSourceUsage   int            `json:"backupSourceUsage"`
	SourceDiversity     map[string]int `json:"sourceDiversity"`
}

// CompletionStatus describes how completely a full run was processed
type CompletionStatus struct {
	TotalProcessed              int     `json:"totalProcessed"`
	SuccessfullyVerified        int     `json:"successfullyVerified"`
	VerificationRate            float64 `json:"verificationRate"`
	AllChecksCompleted          bool    `json:"allChecksCompleted"`
	MeetsPerformanceRequirement bool    `json:"meetsPerformanceRequirement"`
	DurationMs                  int64   `json:"durationMs"`
}

// RunResult is the output of a whole-database validation run
type RunResult struct {
	RunID            string             `json:"runId"`
	Results          []ValidationResult `json:"results"`
	Summary          ValidationSummary  `json:"summary"`
	CompletionStatus CompletionStatus   `json:"completionStatus"`
}
