package citation

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/scaleproof/internal/model"
)

// nowFunc stamps error details (injectable for tests)
var nowFunc = time.Now

func newErrorDetails(category model.ErrorCategory, severity model.ErrorSeverity, code, message, fix string, retryable bool) *model.ErrorDetails {
	return &model.ErrorDetails{
		Category:     category,
		Severity:     severity,
		Code:         code,
		Message:      message,
		SuggestedFix: fix,
		Timestamp:    nowFunc().UTC(),
		Retryable:    retryable,
	}
}

// classifyStatus maps a non-2xx HTTP status to an error record.
// 3xx (a redirect chain that was not followed to the end) and 4xx are high
// severity and final; 5xx is medium and retryable.
func classifyStatus(status int) *model.ErrorDetails {
	message := fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))

	switch {
	case status == http.StatusNotFound:
		return newErrorDetails(model.CategoryNetwork, model.SeverityHigh, model.CodeNotFound, message,
			"Check the access pattern for this source; the page may have moved", false)
	case status == http.StatusForbidden:
		return newErrorDetails(model.CategoryNetwork, model.SeverityHigh, model.CodeForbidden, message,
			"The source blocks automated access; try an alternative approved source", false)
	case status == http.StatusUnauthorized:
		return newErrorDetails(model.CategoryNetwork, model.SeverityHigh, model.CodeUnauthorized, message,
			"The page requires authentication; use a publicly accessible source", false)
	case status >= 400 && status < 500:
		return newErrorDetails(model.CategoryNetwork, model.SeverityHigh, model.CodeClientError, message,
			"Verify the citation URL is well formed for this source", false)
	case status >= 300 && status < 400:
		return newErrorDetails(model.CategoryNetwork, model.SeverityHigh, model.CodeRedirectLimit, message,
			"The page redirects too often or without a target; update the source's access pattern", false)
	case status >= 500:
		return newErrorDetails(model.CategoryNetwork, model.SeverityMedium, model.CodeServerError, message,
			"The source is having problems; retry later", true)
	default:
		return newErrorDetails(model.CategoryNetwork, model.SeverityHigh, model.CodeClientError, message,
			"The source answered with an unexpected status", false)
	}
}

// classifyTransport maps a failure with no HTTP status to an error record
func classifyTransport(err error) *model.ErrorDetails {
	message := err.Error()

	switch {
	case isTimeout(err):
		return newErrorDetails(model.CategoryNetwork, model.SeverityHigh, model.CodeTimeout, message,
			"Increase the request timeout or retry later", true)
	case isDNSError(err):
		return newErrorDetails(model.CategoryNetwork, model.SeverityHigh, model.CodeDNSError, message,
			"Check the hostname and DNS configuration", true)
	case isTLSError(err):
		return newErrorDetails(model.CategoryNetwork, model.SeverityHigh, model.CodeSSLError, message,
			"Check the source's certificate or the local trust store", true)
	default:
		return newErrorDetails(model.CategoryNetwork, model.SeverityHigh, model.CodeNetworkError, message,
			"Check network connectivity and proxy settings", true)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such host") || strings.Contains(msg, "dns")
}

func isTLSError(err error) bool {
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostnameErr      x509.HostnameError
		certInvalid      x509.CertificateInvalidError
		verifyErr        *tls.CertificateVerificationError
		recordErr        tls.RecordHeaderError
	)
	if errors.As(err, &unknownAuthority) || errors.As(err, &hostnameErr) ||
		errors.As(err, &certInvalid) || errors.As(err, &verifyErr) || errors.As(err, &recordErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "tls") || strings.Contains(msg, "x509") ||
		strings.Contains(msg, "certificate") || strings.Contains(msg, "ssl")
}
