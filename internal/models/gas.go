package models

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/ljmd/internal/dynamo"
	"github.com/san-kum/ljmd/internal/physics"
)

const maxPlacementAttempts = 10000

// RandomGas scatters n particles uniformly in the box, rejecting any
// placement closer than minDist (minimum image) to an earlier particle.
func RandomGas(n int, boxSize, minDist float64, seed int64) (dynamo.Vectors, error) {
	rng := rand.New(rand.NewSource(seed))
	pos := dynamo.NewVectors(n)
	min2 := minDist * minDist

	for i := 0; i < n; i++ {
		placed := false
		for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
			x, y, z := rng.Float64()*boxSize, rng.Float64()*boxSize, rng.Float64()*boxSize
			if farEnough(pos, i, x, y, z, boxSize, min2) {
				pos.X[i], pos.Y[i], pos.Z[i] = x, y, z
				placed = true
				break
			}
		}
		if !placed {
			return dynamo.Vectors{}, fmt.Errorf("%w: could not place particle %d of %d with spacing %.2f in box %.2f",
				dynamo.ErrParameterBounds, i, n, minDist, boxSize)
		}
	}
	return pos, nil
}

func farEnough(pos dynamo.Vectors, upTo int, x, y, z, box, min2 float64) bool {
	for j := 0; j < upTo; j++ {
		dx := physics.MinimumImage(pos.X[j]-x, box)
		dy := physics.MinimumImage(pos.Y[j]-y, box)
		dz := physics.MinimumImage(pos.Z[j]-z, box)
		if dx*dx+dy*dy+dz*dz < min2 {
			return false
		}
	}
	return true
}

// NewGas is the RandomGas counterpart of NewFluid.
func NewGas(spec FluidSpec) (*dynamo.Particles, float64, error) {
	if spec.Particles <= 0 {
		return nil, 0, fmt.Errorf("%w: particles must be positive", dynamo.ErrParameterBounds)
	}
	if spec.BoxSize <= 0 && spec.Density <= 0 {
		return nil, 0, fmt.Errorf("%w: need box size or density", dynamo.ErrParameterBounds)
	}
	if spec.Mass <= 0 {
		spec.Mass = 1
	}

	box := spec.boxLength()
	pos, err := RandomGas(spec.Particles, box, 0.9, spec.Seed)
	if err != nil {
		return nil, 0, err
	}

	p := dynamo.NewParticles(spec.Particles)
	p.Pos = pos
	Thermalize(p.Vel, spec.Temperature, spec.Mass, rand.New(rand.NewSource(spec.Seed+1)))
	return p, box, nil
}
