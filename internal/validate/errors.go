package validate

import (
	"fmt"
	"strings"
)

// PreflightError aborts a run when approved sources are unreachable before validation starts
type PreflightError struct {
	Unreachable []string
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("pre-flight failed: %d approved source(s) unreachable: %s",
		len(e.Unreachable), strings.Join(e.Unreachable, ", "))
}

// IntegrityError reports citation results missing dual-validation bookkeeping.
// It indicates a defect in the engine, not bad input.
type IntegrityError struct {
	Violations []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("dual-validation integrity check failed (%d violation(s)): %s",
		len(e.Violations), strings.Join(e.Violations, "; "))
}
