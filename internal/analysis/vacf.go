package analysis

// VACF returns the velocity autocorrelation <v(0)·v(t)> for lags
// 0..len(frames)-1, averaged over particles and time origins.
func VACF(frames []Frame) []float64 {
	tot := len(frames)
	if tot == 0 {
		return nil
	}
	n := frames[0].Vel.Len()
	res := make([]float64, tot)

	for i := 0; i < tot; i++ {
		a := frames[i].Vel
		for j := i; j < tot; j++ {
			b := frames[j].Vel
			sum := 0.0
			for p := 0; p < n; p++ {
				sum += a.X[p]*b.X[p] + a.Y[p]*b.Y[p] + a.Z[p]*b.Z[p]
			}
			res[j-i] += sum
		}
	}

	for k := range res {
		res[k] /= float64((tot - k) * n)
	}
	return res
}

// Normalize scales a correlation so that its zero-lag value is one.
func Normalize(c []float64) []float64 {
	out := make([]float64, len(c))
	if len(c) == 0 || c[0] == 0 {
		return out
	}
	for k, v := range c {
		out[k] = v / c[0]
	}
	return out
}

// GreenKuboDiffusion integrates the VACF with the trapezoidal rule:
// D = (1/3) ∫ <v(0)·v(t)> dt.
func GreenKuboDiffusion(vacf []float64, dt float64) float64 {
	if len(vacf) < 2 {
		return 0
	}
	integral := 0.0
	for k := 1; k < len(vacf); k++ {
		integral += 0.5 * (vacf[k-1] + vacf[k]) * dt
	}
	return integral / 3
}
