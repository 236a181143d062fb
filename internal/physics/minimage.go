package physics

// MinimumImage wraps a coordinate difference into (-boxSize/2, boxSize/2],
// picking the nearest periodic image.
//
// The wrap steps by whole box lengths, so its cost grows with how far dr lies
// outside the primary range. Callers must keep absolute positions within a
// few box lengths of the primary cell; positions are never re-wrapped here,
// and unbounded drift makes this loop proportionally slow.
func MinimumImage(dr, boxSize float64) float64 {
	half := 0.5 * boxSize
	for dr > half {
		dr -= boxSize
	}
	for dr <= -half {
		dr += boxSize
	}
	return dr
}
