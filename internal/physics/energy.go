package physics

import "github.com/san-kum/ljmd/internal/dynamo"

// ComputeEnergy returns the total Lennard-Jones potential energy over all
// pairs within the cutoff. Pair iteration and cutoff match ComputeForces.
func ComputeEnergy(pos dynamo.Vectors, boxSize float64) float64 {
	n := pos.Len()
	x, y, z := pos.X[:n], pos.Y[:n], pos.Z[:n]

	total := 0.0
	for i := 0; i < n; i++ {
		total += pairEnergies(x, y, z, i, i+1, n, boxSize)
	}
	return total
}

func pairEnergies(x, y, z []float64, i, from, to int, boxSize float64) float64 {
	xi, yi, zi := x[i], y[i], z[i]
	sum := 0.0
	for j := from; j < to; j++ {
		dx := MinimumImage(x[j]-xi, boxSize)
		dy := MinimumImage(y[j]-yi, boxSize)
		dz := MinimumImage(z[j]-zi, boxSize)
		r2 := dx*dx + dy*dy + dz*dz
		if InRange(r2) {
			sum += PairEnergy(r2)
		}
	}
	return sum
}

// ComputeVirial returns W = sum over pairs of r·F, the interaction part of
// the pressure: P = (N T + W/3) / V.
func ComputeVirial(pos dynamo.Vectors, boxSize float64) float64 {
	n := pos.Len()
	x, y, z := pos.X[:n], pos.Y[:n], pos.Z[:n]

	w := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := MinimumImage(x[j]-x[i], boxSize)
			dy := MinimumImage(y[j]-y[i], boxSize)
			dz := MinimumImage(z[j]-z[i], boxSize)
			r2 := dx*dx + dy*dy + dz*dz
			if InRange(r2) {
				w += PairVirial(r2)
			}
		}
	}
	return w
}
