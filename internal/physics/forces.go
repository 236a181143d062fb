package physics

import "github.com/san-kum/ljmd/internal/dynamo"

// ComputeForces is the scalar reference kernel. It zeroes force and then
// accumulates the Lennard-Jones force of every pair i<j within the cutoff,
// adding to i and subtracting the identical vector from j.
//
// pos and force must hold the same number of particles. No two particles
// may coincide.
func ComputeForces(pos, force dynamo.Vectors, boxSize float64) {
	n := pos.Len()
	force.Zero()

	x, y, z := pos.X[:n], pos.Y[:n], pos.Z[:n]
	fx, fy, fz := force.X[:n], force.Y[:n], force.Z[:n]

	for i := 0; i < n; i++ {
		addPairForces(x, y, z, fx, fy, fz, i, i+1, n, boxSize)
	}
}

// addPairForces accumulates the interactions of particle i with neighbours
// j in [from, to). The lane kernel uses it for its tail.
func addPairForces(x, y, z, fx, fy, fz []float64, i, from, to int, boxSize float64) {
	xi, yi, zi := x[i], y[i], z[i]
	var fxi, fyi, fzi float64

	for j := from; j < to; j++ {
		dx := MinimumImage(x[j]-xi, boxSize)
		dy := MinimumImage(y[j]-yi, boxSize)
		dz := MinimumImage(z[j]-zi, boxSize)
		r2 := dx*dx + dy*dy + dz*dz
		if !InRange(r2) {
			continue
		}

		s := ForceFactor(r2) / r2
		ex, ey, ez := s*dx, s*dy, s*dz

		fxi += ex
		fyi += ey
		fzi += ez
		fx[j] -= ex
		fy[j] -= ey
		fz[j] -= ez
	}

	fx[i] += fxi
	fy[i] += fyi
	fz[i] += fzi
}
