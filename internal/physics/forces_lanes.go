package physics

import "github.com/san-kum/ljmd/internal/dynamo"

// ComputeForcesSIMD computes the same forces as ComputeForces with the
// neighbour loop batched LaneWidth particles at a time. Periodic wrap and
// cutoff are resolved per lane with compare-and-select, so a batch runs
// without data-dependent branches except for skipping batches that lie
// entirely outside the cutoff. Neighbours left over after the last full
// batch go through the scalar pair routine.
//
// Summation order differs from ComputeForces, so results agree to rounding
// rather than bit for bit.
func ComputeForcesSIMD(pos, force dynamo.Vectors, boxSize float64) {
	n := pos.Len()
	force.Zero()

	x, y, z := pos.X[:n], pos.Y[:n], pos.Z[:n]
	fx, fy, fz := force.X[:n], force.Y[:n], force.Z[:n]

	for i := 0; i < n; i++ {
		xi, yi, zi := broadcast(x[i]), broadcast(y[i]), broadcast(z[i])

		j := i + 1
		for ; j+LaneWidth <= n; j += LaneWidth {
			dx := wrapLanes(load(x, j).sub(xi), boxSize)
			dy := wrapLanes(load(y, j).sub(yi), boxSize)
			dz := wrapLanes(load(z, j).sub(zi), boxSize)

			r2 := dx.mul(dx).add(dy.mul(dy)).add(dz.mul(dz))
			in := lessEq(r2, Cutoff2)
			if !in.any() {
				continue
			}

			s := forceScaleLanes(r2).keep(in)
			ex, ey, ez := s.mul(dx), s.mul(dy), s.mul(dz)

			fx[i] += ex.hsum()
			fy[i] += ey.hsum()
			fz[i] += ez.hsum()

			ex.subFrom(fx, j)
			ey.subFrom(fy, j)
			ez.subFrom(fz, j)
		}

		addPairForces(x, y, z, fx, fy, fz, i, j, n, boxSize)
	}
}

// ComputeEnergySIMD is the lane-batched counterpart of ComputeEnergy.
func ComputeEnergySIMD(pos dynamo.Vectors, boxSize float64) float64 {
	n := pos.Len()
	x, y, z := pos.X[:n], pos.Y[:n], pos.Z[:n]

	acc := broadcast(0)
	total := 0.0
	for i := 0; i < n; i++ {
		xi, yi, zi := broadcast(x[i]), broadcast(y[i]), broadcast(z[i])

		j := i + 1
		for ; j+LaneWidth <= n; j += LaneWidth {
			dx := wrapLanes(load(x, j).sub(xi), boxSize)
			dy := wrapLanes(load(y, j).sub(yi), boxSize)
			dz := wrapLanes(load(z, j).sub(zi), boxSize)

			r2 := dx.mul(dx).add(dy.mul(dy)).add(dz.mul(dz))
			in := lessEq(r2, Cutoff2)
			if !in.any() {
				continue
			}
			acc = acc.add(pairEnergyLanes(r2).keep(in))
		}

		total += pairEnergies(x, y, z, i, j, n, boxSize)
	}

	return total + acc.hsum()
}
