package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/ljmd/internal/compute"
	"github.com/san-kum/ljmd/internal/config"
	"github.com/san-kum/ljmd/internal/dynamo"
	"github.com/san-kum/ljmd/internal/integrators"
	"github.com/san-kum/ljmd/internal/metrics"
	"github.com/san-kum/ljmd/internal/models"
)

// Experiment is one configured run: particles, kernel, integrator and the
// simulator wired together.
type Experiment struct {
	cfg       *config.Config
	backend   compute.Backend
	simulator *dynamo.Simulator
	particles *dynamo.Particles
	box       float64
}

func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	backend, err := compute.ByName(cfg.Kernel)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.ByName(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	p, box, err := models.Build(cfg.Model, FluidSpec(cfg, cfg.Seed))
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", cfg.Model, err)
	}

	sim := dynamo.New(backend, integ)
	for _, m := range metrics.Default() {
		sim.AddMetric(m)
	}
	thermo, err := cfg.NewThermostat(cfg.Seed)
	if err != nil {
		return nil, err
	}
	sim.SetThermostat(thermo)

	return &Experiment{
		cfg:       cfg,
		backend:   backend,
		simulator: sim,
		particles: p,
		box:       box,
	}, nil
}

// FluidSpec maps a run config onto the initial-state builder.
func FluidSpec(cfg *config.Config, seed int64) models.FluidSpec {
	return models.FluidSpec{
		Particles:    cfg.Particles,
		Density:      cfg.Density,
		BoxSize:      cfg.BoxSize,
		Temperature:  cfg.Temperature,
		Mass:         cfg.Mass,
		Perturbation: cfg.Perturbation,
		Seed:         seed,
	}
}

func (e *Experiment) RunConfig() dynamo.Config {
	rc := e.cfg.RunConfig()
	rc.BoxSize = e.box
	return rc
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	return e.simulator.Run(ctx, e.particles, e.RunConfig())
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}

func (e *Experiment) Backend() compute.Backend {
	return e.backend
}

func (e *Experiment) Particles() *dynamo.Particles {
	return e.particles
}

func (e *Experiment) BoxSize() float64 {
	return e.box
}

func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}
