package solvers

import "errors"

// Domain errors for grid construction and integration.
var (
	// ErrInvalidGrid indicates a time grid with fewer than two points or
	// a non-monotonic ordering.
	ErrInvalidGrid = errors.New("solvers: invalid time grid")

	// ErrShapeMismatch indicates tensors whose shapes disagree where they
	// must match (state vs derivative, state vs cotangent).
	ErrShapeMismatch = errors.New("solvers: shape mismatch")

	// ErrUnsupportedStepper indicates a stepper name with no registered
	// implementation.
	ErrUnsupportedStepper = errors.New("solvers: unsupported stepper")
)
