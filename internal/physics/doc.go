// Package physics implements the Lennard-Jones pair kernels for a cubic
// periodic box.
//
// All kernels are stateless functions over caller-owned structure-of-arrays
// buffers:
//
//   - [MinimumImage]: nearest periodic image of a coordinate difference
//   - [ForceFactor], [PairEnergy]: the 12-6 potential in reduced units
//   - [ComputeForces]: scalar reference force kernel, O(n²/2)
//   - [ComputeForcesSIMD]: lane-batched force kernel with scalar tail
//   - [ComputeEnergy], [ComputeEnergySIMD]: total potential energy
//   - [ComputeVirial]: pair virial for pressure
//
// # Cutoff
//
// Pairs with r² <= 9 interact; pairs beyond contribute exactly zero. The
// cutoff is hard and unshifted, so energy jumps when a pair crosses it.
//
// # Preconditions
//
// The kernels do not check their inputs:
//
//   - every array of a call must have the same length
//   - no two particles may coincide (r² = 0 yields Inf/NaN)
//   - absolute positions must stay within a few box lengths of the primary
//     cell, since the minimum-image wrap steps one box length at a time
//
// Violations surface as NaN/Inf output, slow wraps or index panics rather
// than returned errors.
package physics
