package analysis

// MSD returns the mean squared displacement for lags 1..len(frames)-1,
// averaged over particles and every available time origin. Index k holds
// lag k+1.
func MSD(frames []Frame) []float64 {
	tot := len(frames)
	if tot < 2 {
		return nil
	}
	n := frames[0].Pos.Len()
	res := make([]float64, tot-1)

	for i := 0; i < tot-1; i++ {
		a := frames[i].Pos
		for j := i + 1; j < tot; j++ {
			b := frames[j].Pos
			sum := 0.0
			for p := 0; p < n; p++ {
				dx := b.X[p] - a.X[p]
				dy := b.Y[p] - a.Y[p]
				dz := b.Z[p] - a.Z[p]
				sum += dx*dx + dy*dy + dz*dz
			}
			res[j-i-1] += sum
		}
	}

	for k := range res {
		origins := tot - 1 - k
		res[k] /= float64(origins * n)
	}
	return res
}

// EinsteinDiffusion fits MSD(t) = 6 D t + c by least squares, skipping the
// leading skip fraction of lags (the ballistic regime), and returns D. dt
// is the time between frames.
func EinsteinDiffusion(msd []float64, dt, skip float64) float64 {
	start := int(skip * float64(len(msd)))
	if len(msd)-start < 2 || dt <= 0 {
		return 0
	}

	var sx, sy, sxx, sxy float64
	m := 0.0
	for k := start; k < len(msd); k++ {
		t := float64(k+1) * dt
		sx += t
		sy += msd[k]
		sxx += t * t
		sxy += t * msd[k]
		m++
	}
	den := m*sxx - sx*sx
	if den == 0 {
		return 0
	}
	slope := (m*sxy - sx*sy) / den
	return slope / 6
}
