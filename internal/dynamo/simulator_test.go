package dynamo

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

// springBackend ties every particle to the origin: f = -x, U = x²/2.
type springBackend struct{ calls atomic.Int64 }

func (s *springBackend) Name() string { return "spring" }
func (s *springBackend) Forces(pos, force Vectors, _ float64) {
	s.calls.Add(1)
	for i := 0; i < pos.Len(); i++ {
		force.X[i], force.Y[i], force.Z[i] = -pos.X[i], -pos.Y[i], -pos.Z[i]
	}
}
func (s *springBackend) Energy(pos Vectors, _ float64) float64 {
	return 0.5 * pos.SquaredNorm()
}

type kickDriftKick struct{}

func (kickDriftKick) PreForces(p *Particles, rm, dt float64) {
	for i := 0; i < p.Len(); i++ {
		p.Vel.X[i] += 0.5 * rm * dt * p.Force.X[i]
		p.Pos.X[i] += dt * p.Vel.X[i]
	}
}

func (kickDriftKick) PostForces(p *Particles, rm, dt float64) {
	for i := 0; i < p.Len(); i++ {
		p.Vel.X[i] += 0.5 * rm * dt * p.Force.X[i]
	}
}

// blowUp poisons the state on the given step.
type blowUp struct {
	kickDriftKick
	at, step int
}

func (b *blowUp) PreForces(p *Particles, rm, dt float64) {
	b.step++
	if b.step == b.at {
		p.Pos.X[0] = math.NaN()
		return
	}
	b.kickDriftKick.PreForces(p, rm, dt)
}

func oscillator() *Particles {
	p := NewParticles(1)
	p.Pos.X[0] = 1
	return p
}

func TestSimulatorRun(t *testing.T) {
	backend := &springBackend{}
	sim := New(backend, kickDriftKick{})

	cfg := DefaultConfig()
	cfg.Dt, cfg.Steps, cfg.SampleEvery = 0.01, 100, 10

	result, err := sim.Run(context.Background(), oscillator(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Times) != 11 {
		t.Errorf("expected 11 samples, got %d", len(result.Times))
	}
	if result.StepsTaken != 100 {
		t.Errorf("expected 100 steps, got %d", result.StepsTaken)
	}
	if backend.calls.Load() != 101 {
		t.Errorf("expected 101 force evaluations (prime + steps), got %d", backend.calls.Load())
	}
	if math.Abs(result.Times[10]-1.0) > 1e-12 {
		t.Errorf("final sample time %v, want 1", result.Times[10])
	}
	if result.EnergyDrift > 1e-4 {
		t.Errorf("energy drift %v too large for a harmonic oscillator", result.EnergyDrift)
	}
	if math.Abs(result.Total[0]-0.5) > 1e-12 {
		t.Errorf("initial energy %v, want 0.5", result.Total[0])
	}
}

func TestSimulatorLastStepSampled(t *testing.T) {
	sim := New(&springBackend{}, kickDriftKick{})
	cfg := DefaultConfig()
	cfg.Steps, cfg.SampleEvery = 25, 10

	result, err := sim.Run(context.Background(), oscillator(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	// steps 0, 10, 20, 25
	if len(result.Times) != 4 {
		t.Errorf("expected 4 samples, got %d", len(result.Times))
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(&springBackend{}, kickDriftKick{})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative dt", func(c *Config) { c.Dt = -0.1 }},
		{"zero steps", func(c *Config) { c.Steps = 0 }},
		{"zero box", func(c *Config) { c.BoxSize = 0 }},
		{"negative mass", func(c *Config) { c.Mass = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := sim.Run(context.Background(), oscillator(), cfg)
			if !errors.Is(err, ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestSimulatorInvalidParticles(t *testing.T) {
	sim := New(&springBackend{}, kickDriftKick{})

	p := oscillator()
	p.Vel.Y = p.Vel.Y[:0]
	if _, err := sim.Run(context.Background(), p, DefaultConfig()); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}

	p = oscillator()
	p.Pos.Z[0] = math.Inf(1)
	if _, err := sim.Run(context.Background(), p, DefaultConfig()); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestSimulatorDetectsNaN(t *testing.T) {
	sim := New(&springBackend{}, &blowUp{at: 7})
	cfg := DefaultConfig()
	cfg.Steps = 50

	result, err := sim.Run(context.Background(), oscillator(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 7 {
		t.Errorf("expected run to stop at step 7, took %d", result.StepsTaken)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}

	var simErr *SimulationError
	if !errors.As(result.Errors[0], &simErr) || simErr.Step != 7 {
		t.Errorf("unexpected error %v", result.Errors[0])
	}
	if !errors.Is(result.Errors[0], ErrInvalidState) {
		t.Error("error does not wrap ErrInvalidState")
	}
}

func TestSimulatorContextCanceled(t *testing.T) {
	sim := New(&springBackend{}, kickDriftKick{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Run(ctx, oscillator(), DefaultConfig())
	if !errors.Is(err, ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped cancellation, got %v", err)
	}
}

type countMetric struct {
	count int
	sum   float64
}

func (c *countMetric) Name() string { return "count" }
func (c *countMetric) Observe(s Sample, _ *Particles) {
	c.count++
	c.sum += s.Kinetic
}
func (c *countMetric) Value() float64 { return float64(c.count) }
func (c *countMetric) Reset()         { c.count, c.sum = 0, 0 }

type stepObserver struct{ steps []int }

func (o *stepObserver) OnStep(s Sample, _ *Particles) { o.steps = append(o.steps, s.Step) }

func TestSimulatorMetricsAndObservers(t *testing.T) {
	sim := New(&springBackend{}, kickDriftKick{})
	metric := &countMetric{}
	obs := &stepObserver{}
	sim.AddMetric(metric)
	sim.AddObserver(obs)

	cfg := DefaultConfig()
	cfg.Steps, cfg.SampleEvery = 30, 10

	result, err := sim.Run(context.Background(), oscillator(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Metrics["count"] != 4 {
		t.Errorf("expected 4 observations, got %v", result.Metrics["count"])
	}
	want := []int{0, 10, 20, 30}
	if len(obs.steps) != len(want) {
		t.Fatalf("observer saw steps %v, want %v", obs.steps, want)
	}
	for i := range want {
		if obs.steps[i] != want[i] {
			t.Errorf("observer step %d = %d, want %d", i, obs.steps[i], want[i])
		}
	}
}

// freezer zeroes velocities after every step.
type freezer struct{ applied, resets int }

func (f *freezer) Name() string { return "freeze" }
func (f *freezer) Apply(p *Particles, _, _ float64) {
	f.applied++
	p.Vel.Zero()
}
func (f *freezer) Reset() { f.applied, f.resets = 0, f.resets+1 }

func TestSimulatorThermostatRunsAfterStep(t *testing.T) {
	sim := New(&springBackend{}, kickDriftKick{})
	thermo := &freezer{}
	sim.SetThermostat(thermo)

	cfg := DefaultConfig()
	cfg.Steps, cfg.SampleEvery = 40, 10

	result, err := sim.Run(context.Background(), oscillator(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if thermo.applied != cfg.Steps {
		t.Errorf("thermostat applied %d times, want %d", thermo.applied, cfg.Steps)
	}
	if thermo.resets != 1 {
		t.Errorf("thermostat reset %d times, want 1", thermo.resets)
	}
	// Samples after step 0 see the velocities the thermostat left behind.
	for i, ke := range result.Kinetic[1:] {
		if ke != 0 {
			t.Errorf("sample %d kinetic = %g, want 0", i+1, ke)
		}
	}
}

func TestCheckState(t *testing.T) {
	tests := []struct {
		name   string
		poison func(p *Particles)
		valid  bool
	}{
		{"clean", func(*Particles) {}, true},
		{"nan position", func(p *Particles) { p.Pos.Y[0] = math.NaN() }, false},
		{"inf velocity", func(p *Particles) { p.Vel.Z[0] = math.Inf(-1) }, false},
		{"nan velocity", func(p *Particles) { p.Vel.X[0] = math.NaN() }, false},
		{"force ignored", func(p *Particles) { p.Force.X[0] = math.NaN() }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := oscillator()
			tt.poison(p)
			err := CheckState(p, 7, 0.5)
			if tt.valid {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var simErr *SimulationError
			if !errors.As(err, &simErr) || !errors.Is(err, ErrInvalidState) {
				t.Fatalf("expected SimulationError wrapping ErrInvalidState, got %v", err)
			}
			if simErr.Step != 7 || simErr.Time != 3.5 {
				t.Errorf("error at step %d time %g, want 7 and 3.5", simErr.Step, simErr.Time)
			}
		})
	}
}

func TestSimulatorDetectsNaNVelocity(t *testing.T) {
	sim := New(&springBackend{}, kickDriftKick{})
	sim.SetThermostat(&poisonVel{at: 3})

	result, err := sim.Run(context.Background(), oscillator(), DefaultConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 3 {
		t.Errorf("expected to stop after step 3, took %d", result.StepsTaken)
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], ErrInvalidState) {
		t.Errorf("expected one invalid-state error, got %v", result.Errors)
	}
}

// poisonVel writes NaN into a velocity on the given step and leaves
// positions untouched.
type poisonVel struct{ at, step int }

func (v *poisonVel) Name() string { return "poison" }
func (v *poisonVel) Apply(p *Particles, _, _ float64) {
	v.step++
	if v.step == v.at {
		p.Vel.X[0] = math.NaN()
	}
}
func (v *poisonVel) Reset() { v.step = 0 }

func TestEnsembleSeeds(t *testing.T) {
	var seen []int64
	build := func(seed int64) (*Particles, error) {
		p := oscillator()
		p.Pos.X[0] = float64(seed)
		return p, nil
	}
	ens := NewEnsemble(&springBackend{}, func() Integrator { return kickDriftKick{} }, build, 3, 10).
		WithMetrics(func() []Metric { return []Metric{&countMetric{}} })

	cfg := DefaultConfig()
	cfg.Steps = 20
	results, err := ens.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ensemble: %v", err)
	}
	for i, r := range results {
		seen = append(seen, int64(math.Round(math.Sqrt(2*r.Potential[0]))))
		if r.Metrics["count"] == 0 {
			t.Errorf("replica %d has no metric", i)
		}
	}
	for i, s := range seen {
		if s != 10+int64(i) {
			t.Errorf("replica %d started at %d, want %d", i, s, 10+i)
		}
	}
}

func TestEnsembleBuildError(t *testing.T) {
	boom := errors.New("boom")
	ens := NewEnsemble(&springBackend{}, func() Integrator { return kickDriftKick{} },
		func(int64) (*Particles, error) { return nil, boom }, 2, 0)
	if _, err := ens.Run(context.Background(), DefaultConfig()); !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
}

func TestEnsembleThermostatPerReplica(t *testing.T) {
	var made atomic.Int64
	ens := NewEnsemble(&springBackend{}, func() Integrator { return kickDriftKick{} },
		func(int64) (*Particles, error) { return oscillator(), nil }, 3, 0).
		WithThermostat(func(int64) (Thermostat, error) {
			made.Add(1)
			return &freezer{}, nil
		})

	cfg := DefaultConfig()
	cfg.Steps = 20
	results, err := ens.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ensemble: %v", err)
	}
	if made.Load() != 3 {
		t.Errorf("built %d thermostats, want 3", made.Load())
	}
	for i, r := range results {
		if last := r.Kinetic[len(r.Kinetic)-1]; last != 0 {
			t.Errorf("replica %d final kinetic = %g, want 0", i, last)
		}
	}
}
