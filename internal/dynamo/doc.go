// Package dynamo provides the core data model and host loop for
// Lennard-Jones molecular dynamics.
//
// The package defines the shared types every other package works on:
//
//   - [Vectors]: one structure-of-arrays field (x, y, z per particle)
//   - [Particles]: positions, velocities and force accumulators
//   - [ForceBackend]: a force/energy kernel (scalar or lane-batched)
//   - [Integrator]: the two-stage velocity update around a force refresh
//   - [Simulator]: owns the per-step loop and diagnostics
//
// # Example
//
//	p, box := models.NewFluid(spec)
//	sim := dynamo.New(compute.GetBackend(), integrators.NewVelocityVerlet())
//	result, _ := sim.Run(ctx, p, cfg)
//
// # Buffer Ownership
//
// All particle arrays belong to the caller. Kernels and integrators read and
// mutate them in place for the duration of a call and never retain, resize
// or reallocate them.
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For independent replicas use
// [Ensemble], which gives every replica its own particle buffers.
package dynamo
