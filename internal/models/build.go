package models

import (
	"fmt"

	"github.com/san-kum/ljmd/internal/dynamo"
)

// Build dispatches on the model name used in run configs.
func Build(model string, spec FluidSpec) (*dynamo.Particles, float64, error) {
	switch model {
	case "fluid":
		return NewFluid(spec)
	case "lattice":
		spec.Perturbation = 0
		return NewFluid(spec)
	case "gas":
		return NewGas(spec)
	default:
		return nil, 0, fmt.Errorf("unknown model: %s", model)
	}
}
