package model

import "time"

// CitationResult is the outcome of checking one candidate URL against a reference title.
// ContentMatch implies Accessible; ErrorDetails is set whenever either is false.
type CitationResult struct {
	URL                     string                   `json:"url"`
	Title                   string                   `json:"title"`
	Accessible              bool                     `json:"accessible"`
	ContentMatch            bool                     `json:"contentMatch"`
	HTTPStatus              int                      `json:"httpStatus"`
	DualValidated           bool                     `json:"dualValidated"` // Both the access and the content decision were recorded
	Notes                   []string                 `json:"notes"`
	ErrorDetails            *ErrorDetails            `json:"errorDetails,omitempty"`
	ContentMatchDiagnostics *ContentMatchDiagnostics `json:"contentMatchDiagnostics,omitempty"`
}

// Succeeded reports whether the citation passed both accessibility and content checks
func (c CitationResult) Succeeded() bool {
	return c.Accessible && c.ContentMatch
}

// ErrorCategory classifies a citation failure
type ErrorCategory string

const (
	CategoryNetwork       ErrorCategory = "network"       // Timeouts, DNS, TLS, HTTP status errors
	CategoryContent       ErrorCategory = "content"       // Keyword match shortfall
	CategorySource        ErrorCategory = "source"        // Policy rejections
	CategoryConfiguration ErrorCategory = "configuration" // Internal or setup problems
)

// ErrorSeverity ranks a citation failure
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "low"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityHigh     ErrorSeverity = "high"
	SeverityCritical ErrorSeverity = "critical"
)

// Error codes carried by ErrorDetails
const (
	CodeWikipediaRejected = "WIKIPEDIA_REJECTED"
	CodeInvalidURL        = "INVALID_URL"
	CodeNotFound          = "NOT_FOUND"
	CodeForbidden         = "FORBIDDEN"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeClientError       = "CLIENT_ERROR"
	CodeServerError       = "SERVER_ERROR"
	CodeRedirectLimit     = "REDIRECT_LIMIT"
	CodeNetworkError      = "NETWORK_ERROR"
	CodeTimeout           = "TIMEOUT"
	CodeDNSError          = "DNS_ERROR"
	CodeSSLError          = "SSL_ERROR"
	CodeContentMismatch   = "CONTENT_MISMATCH"
	CodeRobotsDisallowed  = "ROBOTS_DISALLOWED"
	CodeSystemError       = "SYSTEM_ERROR"
	CodeNoSources         = "NO_SOURCES"
)

// ErrorDetails is a categorized, severity-ranked citation failure
type ErrorDetails struct {
	Category     ErrorCategory `json:"category"`
	Severity     ErrorSeverity `json:"severity"`
	Code         string        `json:"code"`
	Message      string        `json:"message"`
	SuggestedFix string        `json:"suggestedFix,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
	Retryable    bool          `json:"retryable"`
}

// ContentMatchDiagnostics explains a keyword-based content decision.
// Found and Missing partition Expected; MatchPercentage = |Found| / |Expected|.
type ContentMatchDiagnostics struct {
	ExpectedKeywords []string `json:"expectedKeywords"`
	FoundKeywords    []string `json:"foundKeywords"`
	MissingKeywords  []string `json:"missingKeywords"`
	MatchPercentage  float64  `json:"matchPercentage"`
	ContentLength    int      `json:"contentLength"`
	SearchStrategy   string   `json:"searchStrategy"`
}
