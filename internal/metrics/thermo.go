package metrics

import (
	"math"

	"github.com/san-kum/ljmd/internal/dynamo"
	"github.com/san-kum/ljmd/internal/physics"
)

func KineticEnergy(vel dynamo.Vectors, mass float64) float64 {
	return 0.5 * mass * vel.SquaredNorm()
}

// Temperature is the instantaneous kinetic temperature with the three
// centre-of-mass degrees of freedom removed (k_B = 1).
func Temperature(vel dynamo.Vectors, mass float64) float64 {
	dof := 3*vel.Len() - 3
	if dof <= 0 {
		return 0
	}
	return 2 * KineticEnergy(vel, mass) / float64(dof)
}

// TotalMomentum returns |sum m v|.
func TotalMomentum(vel dynamo.Vectors, mass float64) float64 {
	px, py, pz := vel.Sum()
	return mass * math.Sqrt(px*px+py*py+pz*pz)
}

// Pressure from the virial theorem: P = (N T + W/3) / V, with W the sum of
// r·F over interacting pairs.
func Pressure(pos, vel dynamo.Vectors, boxSize, mass float64) float64 {
	n := pos.Len()
	if n == 0 {
		return 0
	}
	v := boxSize * boxSize * boxSize
	w := physics.ComputeVirial(pos, boxSize)
	return (float64(n)*Temperature(vel, mass) + w/3) / v
}

// Density is the number density N/V.
func Density(n int, boxSize float64) float64 {
	return float64(n) / (boxSize * boxSize * boxSize)
}
