// Package compute selects the force kernel the simulator drives.
//
// Two backends wrap the kernels in internal/physics:
//
//   - scalar: the reference pair loop
//   - lanes: the same loop batched four neighbours at a time
//
// AutoSelectBackend picks lanes when golang.org/x/sys/cpu reports a vector
// extension (AVX2 or AVX-512 on amd64, ASIMD on arm64) and scalar otherwise:
//
//	backend := compute.GetBackend()
//	backend.Forces(p.Pos, p.Force, box)
//
// Both backends produce the same forces up to floating-point rounding.
package compute
