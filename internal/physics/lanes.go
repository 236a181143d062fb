package physics

import "math"

// LaneWidth is the batch size of the lane kernels: four float64 lanes, the
// width of one 256-bit vector register.
const LaneWidth = 4

// lanes is one batch of float64 values processed together.
type lanes [LaneWidth]float64

// laneMask holds all-ones or all-zeros per lane, as a vector compare does.
type laneMask [LaneWidth]uint64

func broadcast(v float64) lanes {
	return lanes{v, v, v, v}
}

// load reads LaneWidth consecutive values starting at j.
func load(s []float64, j int) lanes {
	return lanes(s[j : j+LaneWidth])
}

func (a lanes) add(b lanes) lanes {
	return lanes{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

func (a lanes) sub(b lanes) lanes {
	return lanes{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
}

func (a lanes) mul(b lanes) lanes {
	return lanes{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

// hsum is the horizontal reduction of all lanes into one scalar.
func (a lanes) hsum() float64 {
	return (a[0] + a[1]) + (a[2] + a[3])
}

// keep zeroes every lane outside m.
func (a lanes) keep(m laneMask) lanes {
	var r lanes
	for k := range a {
		r[k] = math.Float64frombits(math.Float64bits(a[k]) & m[k])
	}
	return r
}

// subFrom subtracts a from s[j:j+LaneWidth] in place.
func (a lanes) subFrom(s []float64, j int) {
	dst := s[j : j+LaneWidth : j+LaneWidth]
	for k := range a {
		dst[k] -= a[k]
	}
}

// signMask spreads the sign bit of v over the whole word.
func signMask(v float64) uint64 {
	return uint64(int64(math.Float64bits(v)) >> 63)
}

// nanMask is all-ones for NaN. NaN lanes compare false, as in scalar code.
func nanMask(v float64) uint64 {
	mag := math.Float64bits(v) &^ (1 << 63)
	return uint64(int64(0x7ff0000000000000-mag) >> 63)
}

// greater is the lane compare a > b, computed from the sign of b - a.
func greater(a lanes, b float64) laneMask {
	var m laneMask
	for k := range a {
		m[k] = signMask(b-a[k]) &^ nanMask(a[k])
	}
	return m
}

// lessEq is the lane compare a <= b.
func lessEq(a lanes, b float64) laneMask {
	var m laneMask
	for k := range a {
		m[k] = ^signMask(b-a[k]) &^ nanMask(a[k])
	}
	return m
}

func (m laneMask) any() bool {
	return m[0]|m[1]|m[2]|m[3] != 0
}

// blend picks a where m is set and b elsewhere.
func blend(m laneMask, a, b lanes) lanes {
	var r lanes
	for k := range m {
		r[k] = math.Float64frombits(math.Float64bits(a[k])&m[k] | math.Float64bits(b[k])&^m[k])
	}
	return r
}

// wrapLanes applies MinimumImage to every lane. Each lane takes the same
// sequence of whole-box steps as the scalar loop, so results are bitwise
// identical to MinimumImage.
func wrapLanes(d lanes, boxSize float64) lanes {
	half := 0.5 * boxSize
	box := broadcast(boxSize)
	for m := greater(d, half); m.any(); m = greater(d, half) {
		d = blend(m, d.sub(box), d)
	}
	for m := lessEq(d, -half); m.any(); m = lessEq(d, -half) {
		d = blend(m, d.add(box), d)
	}
	return d
}

// forceScaleLanes is ForceFactor(r2)/r2 per lane.
func forceScaleLanes(r2 lanes) lanes {
	var r lanes
	for k := range r2 {
		s2 := 1.0 / r2[k]
		s6 := s2 * s2 * s2
		r[k] = -48.0 * s6 * (s6 - 0.5) / r2[k]
	}
	return r
}

func pairEnergyLanes(r2 lanes) lanes {
	var r lanes
	for k := range r2 {
		s2 := 1.0 / r2[k]
		s6 := s2 * s2 * s2
		r[k] = 4.0 * s6 * (s6 - 1.0)
	}
	return r
}
