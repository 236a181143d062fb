// Package analysis computes transport and spectral properties from a
// recorded trajectory.
//
//   - [Recorder]: simulator observer that snapshots positions and velocities
//   - [MSD] and [EinsteinDiffusion]: mean squared displacement and its slope
//   - [VACF] and [GreenKuboDiffusion]: velocity autocorrelation and its integral
//   - [PowerSpectrum]: windowed magnitude spectrum of a scalar series
//
// The integrator never wraps positions back into the box, so recorded
// positions are already unwrapped and displacements need no image
// correction:
//
//	rec := analysis.NewRecorder(5)
//	sim.AddObserver(rec)
//	sim.Run(ctx, p, cfg)
//	d := analysis.EinsteinDiffusion(analysis.MSD(rec.Frames()), rec.Interval(), 0.2)
package analysis
