package physics

import (
	"fmt"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ljmd/internal/dynamo"
)

type forceKernel func(pos, force dynamo.Vectors, boxSize float64)

var _ = Describe("Force kernels", func() {
	kernels := []struct {
		name   string
		kernel forceKernel
	}{
		{"scalar", ComputeForces},
		{"lanes", ComputeForcesSIMD},
	}

	for _, k := range kernels {
		kernel := k.kernel

		Describe(k.name, func() {
			It("reproduces the two-particle reference values", func() {
				pos := dynamo.Vectors{
					X: []float64{0, 1},
					Y: []float64{0, 0},
					Z: []float64{0, 0},
				}
				force := staleForces(2)

				kernel(pos, force, 10)

				Expect(force.X[0]).To(Equal(-24.0))
				Expect(force.X[1]).To(Equal(24.0))
				Expect(force.Y).To(Equal([]float64{0, 0}))
				Expect(force.Z).To(Equal([]float64{0, 0}))
			})

			It("clears stale forces before accumulating", func() {
				pos := dynamo.Vectors{
					X: []float64{0, 5, 10},
					Y: []float64{0, 5, 10},
					Z: []float64{0, 5, 10},
				}
				force := staleForces(3)

				kernel(pos, force, 30)

				Expect(maxAbs(force)).To(BeZero())
			})

			It("conserves total momentum", func() {
				pos := randomConfig(37, 6.5, 0.85, 7)
				force := dynamo.NewVectors(37)

				kernel(pos, force, 6.5)

				sx, sy, sz := force.Sum()
				tol := 1e-9 * math.Max(1, maxAbs(force))
				Expect(math.Abs(sx)).To(BeNumerically("<", tol))
				Expect(math.Abs(sy)).To(BeNumerically("<", tol))
				Expect(math.Abs(sz)).To(BeNumerically("<", tol))
			})

			It("includes pairs exactly at the cutoff", func() {
				pos := dynamo.Vectors{
					X: []float64{0, 3, 0, 0, -3},
					Y: []float64{0, 0, 3, 0, 0},
					Z: []float64{0, 0, 0, 3, 0},
				}
				force := dynamo.NewVectors(5)

				kernel(pos, force, 20)

				want := ForceFactor(Cutoff2) / Cutoff2 * 3
				Expect(want).NotTo(BeZero())
				Expect(force.X[1]).To(BeNumerically("~", -want, 1e-15))
				Expect(force.Y[2]).To(BeNumerically("~", -want, 1e-15))
				Expect(force.Z[3]).To(BeNumerically("~", -want, 1e-15))
				Expect(force.X[4]).To(BeNumerically("~", want, 1e-15))
			})

			It("drops pairs just beyond the cutoff", func() {
				d := math.Nextafter(Cutoff, 4)
				pos := dynamo.Vectors{
					X: []float64{0, d, 0, 0, -d},
					Y: []float64{0, 0, d, 0, 0},
					Z: []float64{0, 0, 0, d, 0},
				}
				force := staleForces(5)

				kernel(pos, force, 20)

				Expect(maxAbs(force)).To(BeZero())
			})

			It("interacts through the periodic boundary", func() {
				pos := dynamo.Vectors{
					X: []float64{0.2, 9.2},
					Y: []float64{0, 0},
					Z: []float64{0, 0},
				}
				force := dynamo.NewVectors(2)

				kernel(pos, force, 10)

				Expect(force.X[0]).To(BeNumerically("~", 24.0, 1e-9))
				Expect(force.X[1]).To(BeNumerically("~", -24.0, 1e-9))
			})
		})
	}

	Describe("scalar and lane agreement", func() {
		for _, n := range []int{1, 3, 4, 5, 8, 37} {
			n := n
			It(fmt.Sprintf("matches for n=%d", n), func() {
				pos := randomConfig(n, 6.5, 0.85, int64(100+n))
				scalar := staleForces(n)
				lanes := staleForces(n)

				ComputeForces(pos, scalar, 6.5)
				ComputeForcesSIMD(pos, lanes, 6.5)

				tol := 1e-9 * math.Max(1, maxAbs(scalar))
				Expect(maxDiff(scalar, lanes)).To(BeNumerically("<=", tol))

				e1 := ComputeEnergy(pos, 6.5)
				e2 := ComputeEnergySIMD(pos, 6.5)
				Expect(e2).To(BeNumerically("~", e1, 1e-9*math.Max(1, math.Abs(e1))))
			})
		}
	})
})

var _ = Describe("Energy kernel", func() {
	It("is zero at the potential root r = 1", func() {
		pos := dynamo.Vectors{
			X: []float64{0, 1},
			Y: []float64{0, 0},
			Z: []float64{0, 0},
		}
		Expect(ComputeEnergy(pos, 10)).To(BeZero())
	})

	It("reaches the well depth at r = 2^(1/6)", func() {
		rmin := math.Pow(2, 1.0/6.0)
		pos := dynamo.Vectors{
			X: []float64{0, rmin},
			Y: []float64{0, 0},
			Z: []float64{0, 0},
		}
		Expect(ComputeEnergy(pos, 10)).To(BeNumerically("~", -1.0, 1e-12))
	})

	It("is consistent with the force by central differences", func() {
		const h = 1e-5
		for _, box := range []float64{10, 5} {
			pos := clusterConfig()
			if box == 5 {
				// same geometry, particle 1 stored one image away
				pos.X[1] -= box
			}
			force := dynamo.NewVectors(pos.Len())
			ComputeForces(pos, force, box)

			axes := [][]float64{pos.X, pos.Y, pos.Z}
			forces := [][]float64{force.X, force.Y, force.Z}
			for i := 0; i < pos.Len(); i++ {
				for d, axis := range axes {
					orig := axis[i]
					axis[i] = orig + h
					up := ComputeEnergy(pos, box)
					axis[i] = orig - h
					down := ComputeEnergy(pos, box)
					axis[i] = orig

					f := forces[d][i]
					grad := (up - down) / (2 * h)
					Expect(-grad).To(BeNumerically("~", f, 1e-4*(1+math.Abs(f))))
				}
			}
		}
	})
})
