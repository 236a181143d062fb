package dynamo

import "math"

// Vectors holds one per-particle 3-vector field as three parallel arrays.
type Vectors struct {
	X, Y, Z []float64
}

// NewVectors allocates a zeroed field for n particles.
func NewVectors(n int) Vectors {
	return Vectors{
		X: make([]float64, n),
		Y: make([]float64, n),
		Z: make([]float64, n),
	}
}

// Len reports the particle count, taken from the X array.
func (v Vectors) Len() int { return len(v.X) }

// Zero clears every component in place.
func (v Vectors) Zero() {
	clear(v.X)
	clear(v.Y)
	clear(v.Z)
}

// Sum returns the component-wise total over all particles.
func (v Vectors) Sum() (x, y, z float64) {
	for i := range v.X {
		x += v.X[i]
		y += v.Y[i]
		z += v.Z[i]
	}
	return
}

// SquaredNorm returns the sum of |v_i|^2 over all particles.
func (v Vectors) SquaredNorm() float64 {
	sum := 0.0
	for i := range v.X {
		sum += v.X[i]*v.X[i] + v.Y[i]*v.Y[i] + v.Z[i]*v.Z[i]
	}
	return sum
}

func (v Vectors) Clone() Vectors {
	c := NewVectors(v.Len())
	c.CopyFrom(v)
	return c
}

// CopyFrom overwrites v with src. Both fields must have the same length.
func (v Vectors) CopyFrom(src Vectors) {
	copy(v.X, src.X)
	copy(v.Y, src.Y)
	copy(v.Z, src.Z)
}

func (v Vectors) IsValid() bool {
	for _, arr := range [3][]float64{v.X, v.Y, v.Z} {
		for _, c := range arr {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return false
			}
		}
	}
	return true
}

func (v Vectors) consistent(n int) bool {
	return len(v.X) == n && len(v.Y) == n && len(v.Z) == n
}

// Particles is the structure-of-arrays particle system shared by the force
// kernels and the integrator.
type Particles struct {
	Pos   Vectors
	Vel   Vectors
	Force Vectors
}

func NewParticles(n int) *Particles {
	return &Particles{
		Pos:   NewVectors(n),
		Vel:   NewVectors(n),
		Force: NewVectors(n),
	}
}

func (p *Particles) Len() int { return p.Pos.Len() }

func (p *Particles) Clone() *Particles {
	return &Particles{
		Pos:   p.Pos.Clone(),
		Vel:   p.Vel.Clone(),
		Force: p.Force.Clone(),
	}
}

// Validate checks that every array has the same length and holds finite
// values. Kernels never call it; it is meant for hosts before a run.
func (p *Particles) Validate() error {
	n := p.Len()
	if !p.Pos.consistent(n) || !p.Vel.consistent(n) || !p.Force.consistent(n) {
		return ErrDimensionMismatch
	}
	if !p.Pos.IsValid() || !p.Vel.IsValid() {
		return ErrInvalidState
	}
	return nil
}

// ForceBackend evaluates pair forces and the potential energy of a
// configuration in a cubic periodic box.
type ForceBackend interface {
	Name() string
	Forces(pos, force Vectors, boxSize float64)
	Energy(pos Vectors, boxSize float64) float64
}

// Integrator is a two-stage scheme: PreForces before the force refresh and
// PostForces after it, every step, in that order.
type Integrator interface {
	PreForces(p *Particles, rm, dt float64)
	PostForces(p *Particles, rm, dt float64)
}

// Thermostat couples the system to a heat bath by adjusting velocities
// after each completed step. Implementations may keep a step counter or an
// rng; Reset rewinds them for a new run.
type Thermostat interface {
	Name() string
	Apply(p *Particles, mass, dt float64)
	Reset()
}

// Sample is the per-sample thermodynamic snapshot handed to metrics.
type Sample struct {
	Step      int
	Time      float64
	Kinetic   float64
	Potential float64
	BoxSize   float64
	Mass      float64
}

func (s Sample) Total() float64 { return s.Kinetic + s.Potential }

type Metric interface {
	Name() string
	Observe(s Sample, p *Particles)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample, p *Particles)
}

type Config struct {
	Dt            float64
	Steps         int
	BoxSize       float64
	Mass          float64
	SampleEvery   int
	Seed          int64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.005,
		Steps:         1000,
		BoxSize:       10.0,
		Mass:          1.0,
		SampleEvery:   10,
		ValidateState: true,
	}
}

type Result struct {
	Times       []float64
	Kinetic     []float64
	Potential   []float64
	Total       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

func (r *Result) record(s Sample) {
	r.Times = append(r.Times, s.Time)
	r.Kinetic = append(r.Kinetic, s.Kinetic)
	r.Potential = append(r.Potential, s.Potential)
	r.Total = append(r.Total, s.Total())
}
