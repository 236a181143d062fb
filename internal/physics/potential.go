package physics

// Lennard-Jones 12-6 in reduced units (epsilon = sigma = 1).
const (
	Cutoff  = 3.0
	Cutoff2 = Cutoff * Cutoff
)

// InRange reports whether a pair at squared separation r2 interacts. The
// cutoff is hard: r2 == Cutoff2 is included, anything beyond contributes
// exactly zero force and energy.
func InRange(r2 float64) bool {
	return r2 <= Cutoff2
}

// ForceFactor returns r·dU/dr for the pair. The force on particle i from j
// along a separation component d = x_j - x_i is ForceFactor(r2)/r2 * d.
//
// r2 must be positive; coincident particles divide by zero.
func ForceFactor(r2 float64) float64 {
	s2 := 1.0 / r2
	s6 := s2 * s2 * s2
	return -48.0 * s6 * (s6 - 0.5)
}

// PairEnergy is U(r) = 4 (r^-12 - r^-6) as a function of r2.
func PairEnergy(r2 float64) float64 {
	s2 := 1.0 / r2
	s6 := s2 * s2 * s2
	return 4.0 * s6 * (s6 - 1.0)
}

// PairVirial is r·F for the pair, the pressure contribution.
func PairVirial(r2 float64) float64 {
	return -ForceFactor(r2)
}
