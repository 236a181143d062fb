package integrators

import "github.com/san-kum/ljmd/internal/dynamo"

// Euler is symplectic (semi-implicit) Euler: a full kick with the old
// forces followed by a drift. It is first order and mainly useful as a
// baseline when comparing energy drift against VelocityVerlet.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (Euler) PreForces(p *dynamo.Particles, rm, dt float64) {
	n := p.Len()
	k := rm * dt
	for i := 0; i < n; i++ {
		p.Vel.X[i] += k * p.Force.X[i]
		p.Vel.Y[i] += k * p.Force.Y[i]
		p.Vel.Z[i] += k * p.Force.Z[i]

		p.Pos.X[i] += dt * p.Vel.X[i]
		p.Pos.Y[i] += dt * p.Vel.Y[i]
		p.Pos.Z[i] += dt * p.Vel.Z[i]
	}
}

// PostForces does nothing; the refreshed forces are used by the next step.
func (Euler) PostForces(*dynamo.Particles, float64, float64) {}
