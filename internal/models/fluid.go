package models

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/san-kum/ljmd/internal/dynamo"
)

const (
	perlinAlpha  = 2.0
	perlinBeta   = 2.0
	perlinOctave = 3
)

// FluidSpec describes a starting state: N particles on a lattice at the
// given density, displaced by a smooth noise field, with Maxwell-Boltzmann
// velocities at Temperature.
type FluidSpec struct {
	Particles    int
	Density      float64
	BoxSize      float64 // overrides Density when positive
	Temperature  float64
	Mass         float64
	Perturbation float64 // displacement amplitude in units of the lattice spacing
	Seed         int64
}

func (s FluidSpec) boxLength() float64 {
	if s.BoxSize > 0 {
		return s.BoxSize
	}
	return math.Cbrt(float64(s.Particles) / s.Density)
}

// NewFluid builds the particle set and returns it with the box edge.
// Forces are left at zero; the simulator primes them before the first step.
func NewFluid(spec FluidSpec) (*dynamo.Particles, float64, error) {
	if spec.Particles <= 0 {
		return nil, 0, fmt.Errorf("%w: particles must be positive", dynamo.ErrParameterBounds)
	}
	if spec.BoxSize <= 0 && spec.Density <= 0 {
		return nil, 0, fmt.Errorf("%w: need box size or density", dynamo.ErrParameterBounds)
	}
	if spec.Mass <= 0 {
		spec.Mass = 1
	}
	// Noise displacement beyond ~0.3 spacings lets neighbours overlap.
	if spec.Perturbation < 0 || spec.Perturbation > 0.3 {
		return nil, 0, fmt.Errorf("%w: perturbation %.3f outside [0, 0.3]", dynamo.ErrParameterBounds, spec.Perturbation)
	}

	box := spec.boxLength()
	p := dynamo.NewParticles(spec.Particles)
	p.Pos = SimpleCubic(spec.Particles, box)

	if spec.Perturbation > 0 {
		Perturb(p.Pos, LatticeSpacing(spec.Particles, box)*spec.Perturbation, spec.Seed)
	}

	rng := rand.New(rand.NewSource(spec.Seed))
	Thermalize(p.Vel, spec.Temperature, spec.Mass, rng)

	return p, box, nil
}

// Perturb shifts every position by a smooth 3D noise field of the given
// amplitude. Each axis samples the field at a different offset so the
// three displacement components are uncorrelated.
func Perturb(pos dynamo.Vectors, amplitude float64, seed int64) {
	noise := perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctave, seed)
	const freq = 0.37

	for i := 0; i < pos.Len(); i++ {
		x, y, z := pos.X[i]*freq, pos.Y[i]*freq, pos.Z[i]*freq
		pos.X[i] += amplitude * noise.Noise3D(x, y, z)
		pos.Y[i] += amplitude * noise.Noise3D(x+17.1, y, z)
		pos.Z[i] += amplitude * noise.Noise3D(x, y+31.7, z)
	}
}

// Thermalize draws Gaussian velocities, removes the centre-of-mass drift and
// rescales so the instantaneous temperature (3N-3 degrees of freedom) is
// exactly temperature.
func Thermalize(vel dynamo.Vectors, temperature, mass float64, rng *rand.Rand) {
	n := vel.Len()
	if n == 0 {
		return
	}

	sigma := math.Sqrt(temperature / mass)
	for i := 0; i < n; i++ {
		vel.X[i] = sigma * rng.NormFloat64()
		vel.Y[i] = sigma * rng.NormFloat64()
		vel.Z[i] = sigma * rng.NormFloat64()
	}

	RemoveDrift(vel)

	dof := 3*n - 3
	if dof <= 0 || temperature == 0 {
		vel.Zero()
		return
	}
	current := mass * vel.SquaredNorm() / float64(dof)
	if current == 0 {
		return
	}
	scale := math.Sqrt(temperature / current)
	for i := 0; i < n; i++ {
		vel.X[i] *= scale
		vel.Y[i] *= scale
		vel.Z[i] *= scale
	}
}

// RemoveDrift subtracts the mean velocity so total momentum is zero.
func RemoveDrift(vel dynamo.Vectors) {
	n := vel.Len()
	if n == 0 {
		return
	}
	sx, sy, sz := vel.Sum()
	mx, my, mz := sx/float64(n), sy/float64(n), sz/float64(n)
	for i := 0; i < n; i++ {
		vel.X[i] -= mx
		vel.Y[i] -= my
		vel.Z[i] -= mz
	}
}
