package acquire

import (
	"fmt"

	"github.com/MercerHollowell/getpurs/internal/progress"
)

// ArgumentError reports a malformed request. It is returned synchronously
// from Start, before any asynchronous work begins.
type ArgumentError struct {
	Field  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PhaseError is the single terminal error of a failed acquisition. Phase
// names the stage that produced the failure (check-stack, head,
// download-binary, download-source, setup, or build) so callers can apply
// stage-specific retry or reporting policy.
type PhaseError struct {
	Phase progress.Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
