package integrators

import "github.com/san-kum/ljmd/internal/dynamo"

// UpdatePreForces is the first half of a velocity-Verlet step: a half kick
// with the forces at the old positions, then a full drift with the
// half-stepped velocity.
//
//	v += 0.5·rm·dt·f
//	x += dt·v
//
// rm is the reciprocal particle mass, shared by every particle.
func UpdatePreForces(pos, vel, force dynamo.Vectors, rm, dt float64) {
	n := pos.Len()
	k := 0.5 * rm * dt

	x, y, z := pos.X[:n], pos.Y[:n], pos.Z[:n]
	vx, vy, vz := vel.X[:n], vel.Y[:n], vel.Z[:n]
	fx, fy, fz := force.X[:n], force.Y[:n], force.Z[:n]

	for i := 0; i < n; i++ {
		vx[i] += k * fx[i]
		vy[i] += k * fy[i]
		vz[i] += k * fz[i]

		x[i] += dt * vx[i]
		y[i] += dt * vy[i]
		z[i] += dt * vz[i]
	}
}

// UpdatePostForces completes the step with a second half kick using forces
// recomputed at the new positions. Calling it without refreshing the forces
// first silently produces a wrong trajectory.
func UpdatePostForces(vel, force dynamo.Vectors, rm, dt float64) {
	n := vel.Len()
	k := 0.5 * rm * dt

	vx, vy, vz := vel.X[:n], vel.Y[:n], vel.Z[:n]
	fx, fy, fz := force.X[:n], force.Y[:n], force.Z[:n]

	for i := 0; i < n; i++ {
		vx[i] += k * fx[i]
		vy[i] += k * fy[i]
		vz[i] += k * fz[i]
	}
}

// VelocityVerlet is the kick-drift-kick scheme (leapfrog in velocity
// form). It is symplectic and time-reversible.
type VelocityVerlet struct{}

func NewVelocityVerlet() *VelocityVerlet {
	return &VelocityVerlet{}
}

func (VelocityVerlet) PreForces(p *dynamo.Particles, rm, dt float64) {
	UpdatePreForces(p.Pos, p.Vel, p.Force, rm, dt)
}

func (VelocityVerlet) PostForces(p *dynamo.Particles, rm, dt float64) {
	UpdatePostForces(p.Vel, p.Force, rm, dt)
}
