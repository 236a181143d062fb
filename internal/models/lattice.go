package models

import (
	"math"

	"github.com/san-kum/ljmd/internal/dynamo"
)

// SimpleCubic places n particles on the sites of a simple cubic lattice
// filling a box of edge boxSize. The lattice has ceil(cbrt(n)) sites per
// edge; when n is not a perfect cube the last sites stay empty. Sites sit at
// half-spacing offsets so no particle lies on the box boundary.
func SimpleCubic(n int, boxSize float64) dynamo.Vectors {
	pos := dynamo.NewVectors(n)
	if n == 0 {
		return pos
	}

	side := latticeSide(n)
	a := boxSize / float64(side)

	idx := 0
	for ix := 0; ix < side && idx < n; ix++ {
		for iy := 0; iy < side && idx < n; iy++ {
			for iz := 0; iz < side && idx < n; iz++ {
				pos.X[idx] = (float64(ix) + 0.5) * a
				pos.Y[idx] = (float64(iy) + 0.5) * a
				pos.Z[idx] = (float64(iz) + 0.5) * a
				idx++
			}
		}
	}
	return pos
}

func latticeSide(n int) int {
	side := int(math.Round(math.Cbrt(float64(n))))
	for side*side*side < n {
		side++
	}
	return side
}

// LatticeSpacing is the nearest-neighbour distance of SimpleCubic(n, boxSize).
func LatticeSpacing(n int, boxSize float64) float64 {
	if n == 0 {
		return 0
	}
	return boxSize / float64(latticeSide(n))
}
