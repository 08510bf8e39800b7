package ode

import (
	"errors"
	"fmt"
)

// Domain errors for registry, validation and integration runs.
var (
	// ErrUnknownModel indicates a model id not present in the registry.
	ErrUnknownModel = errors.New("ode: unknown model")

	// ErrDuplicateModel indicates a model id registered twice.
	ErrDuplicateModel = errors.New("ode: duplicate model id")

	// ErrDimensionMismatch indicates the rhs output length differs from
	// the state length.
	ErrDimensionMismatch = errors.New("ode: dimension mismatch between state and derivative")

	// ErrInvalidStepPolicy indicates a non-positive step, non-positive
	// tolerance or inverted step bounds.
	ErrInvalidStepPolicy = errors.New("ode: invalid step policy")

	// ErrStepUnderflow indicates the adaptive controller could not meet
	// the tolerance above the minimum step size.
	ErrStepUnderflow = errors.New("ode: adaptive step below minimum")

	// ErrDiverged indicates a NaN or Inf state was produced.
	ErrDiverged = errors.New("ode: state diverged (NaN or Inf)")
)

// RunError wraps an error with the context of the failing run.
type RunError struct {
	Model  string
	Method string
	Step   int
	Time   float64
	Wrapped error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s/%s step %d (t=%.6g): %v", e.Model, e.Method, e.Step, e.Time, e.Wrapped)
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
