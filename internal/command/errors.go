package command

import (
	"errors"
	"fmt"

	"github.com/rover-control/roverlink/internal/mode"
	"github.com/rover-control/roverlink/internal/schema"
)

// ErrModeViolation is the sentinel for kind/mode combinations the policy
// table disallows. Always fatal; the caller must choose a different kind or
// switch mode.
var ErrModeViolation = errors.New("MODE_VIOLATION")

// ModeViolationError identifies the offending kind and mode.
type ModeViolationError struct {
	Kind schema.Kind
	Mode mode.Mode
}

// Error implements the error interface.
func (e *ModeViolationError) Error() string {
	return fmt.Sprintf("MODE_VIOLATION: kind %q is not permitted in %q mode", e.Kind, e.Mode)
}

// Unwrap allows errors.Is(err, ErrModeViolation) matching.
func (e *ModeViolationError) Unwrap() error {
	return ErrModeViolation
}
