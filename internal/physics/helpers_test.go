package physics

import (
	"math"
	"math/rand"

	"github.com/san-kum/ljmd/internal/dynamo"
)

// randomConfig places n particles uniformly in the box, rejecting any that
// come closer than minDist to an existing one. Every third particle is
// shifted by one box length so the wrap path is exercised.
func randomConfig(n int, boxSize, minDist float64, seed int64) dynamo.Vectors {
	rng := rand.New(rand.NewSource(seed))
	pos := dynamo.NewVectors(n)
	min2 := minDist * minDist

	for i := 0; i < n; {
		x, y, z := rng.Float64()*boxSize, rng.Float64()*boxSize, rng.Float64()*boxSize
		ok := true
		for j := 0; j < i; j++ {
			dx := MinimumImage(pos.X[j]-x, boxSize)
			dy := MinimumImage(pos.Y[j]-y, boxSize)
			dz := MinimumImage(pos.Z[j]-z, boxSize)
			if dx*dx+dy*dy+dz*dz < min2 {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if i%3 == 2 {
			x -= boxSize
			z += boxSize
		}
		pos.X[i], pos.Y[i], pos.Z[i] = x, y, z
		i++
	}
	return pos
}

func clusterConfig() dynamo.Vectors {
	return dynamo.Vectors{
		X: []float64{0.0, 1.1, 0.3, 0.5},
		Y: []float64{0.0, 0.0, 1.2, 0.4},
		Z: []float64{0.0, 0.0, 0.1, 1.3},
	}
}

func maxAbs(v dynamo.Vectors) float64 {
	m := 0.0
	for _, arr := range [][]float64{v.X, v.Y, v.Z} {
		for _, c := range arr {
			m = math.Max(m, math.Abs(c))
		}
	}
	return m
}

// maxDiff returns the largest component-wise difference between two fields.
func maxDiff(a, b dynamo.Vectors) float64 {
	m := 0.0
	for i := range a.X {
		m = math.Max(m, math.Abs(a.X[i]-b.X[i]))
		m = math.Max(m, math.Abs(a.Y[i]-b.Y[i]))
		m = math.Max(m, math.Abs(a.Z[i]-b.Z[i]))
	}
	return m
}

// staleForces returns a force buffer pre-filled with garbage so tests can
// check that kernels clear it.
func staleForces(n int) dynamo.Vectors {
	f := dynamo.NewVectors(n)
	for i := 0; i < n; i++ {
		f.X[i], f.Y[i], f.Z[i] = 1e3, -7, 42
	}
	return f
}
