package compute

import (
	"github.com/san-kum/ljmd/internal/dynamo"
	"github.com/san-kum/ljmd/internal/physics"
)

// ScalarBackend runs the reference kernels. It is always available.
type ScalarBackend struct{}

func NewScalarBackend() *ScalarBackend {
	return &ScalarBackend{}
}

func (s *ScalarBackend) Name() string        { return "scalar" }
func (s *ScalarBackend) Available() bool     { return true }
func (s *ScalarBackend) Description() string { return "scalar reference" }

func (s *ScalarBackend) Forces(pos, force dynamo.Vectors, boxSize float64) {
	physics.ComputeForces(pos, force, boxSize)
}

func (s *ScalarBackend) Energy(pos dynamo.Vectors, boxSize float64) float64 {
	return physics.ComputeEnergy(pos, boxSize)
}
