package metrics

import (
	"math"

	"github.com/san-kum/ljmd/internal/dynamo"
)

// EnergyDrift tracks the largest relative deviation of total energy from
// its first observed value.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s dynamo.Sample, _ *dynamo.Particles) {
	energy := s.Total()

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.currentEnergy = energy
	e.samples++

	drift := math.Abs(energy - e.initialEnergy)
	if e.initialEnergy != 0 {
		drift /= math.Abs(e.initialEnergy)
	}
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

type MeanTemperature struct {
	name    string
	sum     float64
	samples int
}

func NewMeanTemperature() *MeanTemperature {
	return &MeanTemperature{name: "mean_temperature"}
}

func (m *MeanTemperature) Name() string { return m.name }

func (m *MeanTemperature) Observe(s dynamo.Sample, p *dynamo.Particles) {
	m.sum += Temperature(p.Vel, s.Mass)
	m.samples++
}

func (m *MeanTemperature) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanTemperature) Reset() {
	m.sum = 0
	m.samples = 0
}

// MomentumDrift records the largest total momentum seen. Pairwise forces
// cancel exactly in exact arithmetic, so anything above rounding noise
// points at a kernel bug.
type MomentumDrift struct {
	name string
	max  float64
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(s dynamo.Sample, p *dynamo.Particles) {
	m.max = math.Max(m.max, TotalMomentum(p.Vel, s.Mass))
}

func (m *MomentumDrift) Value() float64 { return m.max }
func (m *MomentumDrift) Reset()         { m.max = 0 }

type MeanPressure struct {
	name    string
	sum     float64
	samples int
}

func NewMeanPressure() *MeanPressure {
	return &MeanPressure{name: "mean_pressure"}
}

func (m *MeanPressure) Name() string { return m.name }

func (m *MeanPressure) Observe(s dynamo.Sample, p *dynamo.Particles) {
	m.sum += Pressure(p.Pos, p.Vel, s.BoxSize, s.Mass)
	m.samples++
}

func (m *MeanPressure) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanPressure) Reset() {
	m.sum = 0
	m.samples = 0
}

// Default returns one fresh instance of every metric.
func Default() []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergyDrift(),
		NewMeanTemperature(),
		NewMomentumDrift(),
		NewMeanPressure(),
	}
}
