package dynamo

import (
	"context"
	"fmt"
	"math"
)

// Simulator drives the per-step pre-force, force, post-force sequence and
// records energy samples.
type Simulator struct {
	backend    ForceBackend
	integrator Integrator
	thermostat Thermostat
	metrics    []Metric
	observers  []Observer
}

func New(backend ForceBackend, integrator Integrator) *Simulator {
	return &Simulator{
		backend:    backend,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Backend() ForceBackend { return s.backend }

// SetThermostat installs t to run after every step. nil leaves the run
// microcanonical.
func (s *Simulator) SetThermostat(t Thermostat) {
	s.thermostat = t
}

// Prime fills the force buffer at the current positions. The first
// pre-force half-kick of a run needs it.
func (s *Simulator) Prime(p *Particles, boxSize float64) {
	s.backend.Forces(p.Pos, p.Force, boxSize)
}

// Step advances p by one timestep. p.Force must hold the forces at the
// current positions, which Prime or a previous Step guarantees. The
// thermostat, if any, sees the completed step.
func (s *Simulator) Step(p *Particles, cfg Config) {
	rm := 1.0 / cfg.Mass
	s.integrator.PreForces(p, rm, cfg.Dt)
	s.backend.Forces(p.Pos, p.Force, cfg.BoxSize)
	s.integrator.PostForces(p, rm, cfg.Dt)
	if s.thermostat != nil {
		s.thermostat.Apply(p, cfg.Mass, cfg.Dt)
	}
}

// CheckState returns a SimulationError wrapping ErrInvalidState when any
// position or velocity is NaN or infinite.
func CheckState(p *Particles, step int, dt float64) error {
	if p.Pos.IsValid() && p.Vel.IsValid() {
		return nil
	}
	return &SimulationError{
		Step:    step,
		Time:    float64(step) * dt,
		Wrapped: ErrInvalidState,
	}
}

// Sample measures kinetic and potential energy of the current state.
func (s *Simulator) Sample(p *Particles, step int, cfg Config) Sample {
	return Sample{
		Step:      step,
		Time:      float64(step) * cfg.Dt,
		Kinetic:   0.5 * cfg.Mass * p.Vel.SquaredNorm(),
		Potential: s.backend.Energy(p.Pos, cfg.BoxSize),
		BoxSize:   cfg.BoxSize,
		Mass:      cfg.Mass,
	}
}

func (s *Simulator) Run(ctx context.Context, p *Particles, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	every := cfg.SampleEvery
	if every <= 0 {
		every = 1
	}

	samples := cfg.Steps/every + 2
	result := &Result{
		Times:     make([]float64, 0, samples),
		Kinetic:   make([]float64, 0, samples),
		Potential: make([]float64, 0, samples),
		Total:     make([]float64, 0, samples),
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	if s.thermostat != nil {
		s.thermostat.Reset()
	}

	s.Prime(p, cfg.BoxSize)
	s.observe(result, s.Sample(p, 0, cfg), p)

	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		s.Step(p, cfg)
		result.StepsTaken++

		if cfg.ValidateState {
			if err := CheckState(p, i, cfg.Dt); err != nil {
				result.Errors = append(result.Errors, err)
				break
			}
		}

		if i%every == 0 || i == cfg.Steps {
			s.observe(result, s.Sample(p, i, cfg), p)
		}
	}

	initial, final := result.Total[0], result.Total[len(result.Total)-1]
	if initial != 0 {
		result.EnergyDrift = math.Abs(final-initial) / math.Abs(initial)
	} else {
		result.EnergyDrift = math.Abs(final - initial)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) observe(r *Result, sample Sample, p *Particles) {
	r.record(sample)
	for _, m := range s.metrics {
		m.Observe(sample, p)
	}
	for _, obs := range s.observers {
		obs.OnStep(sample, p)
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrParameterBounds, cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrParameterBounds, cfg.Steps)
	}
	if cfg.BoxSize <= 0 {
		return fmt.Errorf("%w: box size must be positive, got %f", ErrParameterBounds, cfg.BoxSize)
	}
	if cfg.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %f", ErrParameterBounds, cfg.Mass)
	}
	return nil
}
