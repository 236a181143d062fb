package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a particle array holding NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates the energy diverged beyond recovery.
	ErrUnstable = errors.New("dynamo: simulation unstable (energy diverged)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrDimensionMismatch indicates per-particle arrays of unequal length.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between particle arrays")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
