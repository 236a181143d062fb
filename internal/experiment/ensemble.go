package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/ljmd/internal/compute"
	"github.com/san-kum/ljmd/internal/config"
	"github.com/san-kum/ljmd/internal/dynamo"
	"github.com/san-kum/ljmd/internal/integrators"
	"github.com/san-kum/ljmd/internal/metrics"
	"github.com/san-kum/ljmd/internal/models"
)

// Summary aggregates one metric across replicas.
type Summary struct {
	Name   string
	Mean   float64
	StdDev float64
}

// RunEnsemble runs the config n times with seeds cfg.Seed, cfg.Seed+1, ...
// in parallel and returns the per-replica results.
func RunEnsemble(ctx context.Context, cfg *config.Config, n int) ([]*dynamo.Result, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: ensemble size must be positive, got %d", dynamo.ErrParameterBounds, n)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	backend, err := compute.ByName(cfg.Kernel)
	if err != nil {
		return nil, err
	}
	if _, err := integrators.ByName(cfg.Integrator); err != nil {
		return nil, err
	}

	newIntegrator := func() dynamo.Integrator {
		integ, _ := integrators.ByName(cfg.Integrator)
		return integ
	}
	build := func(seed int64) (*dynamo.Particles, error) {
		p, _, err := models.Build(cfg.Model, FluidSpec(cfg, seed))
		return p, err
	}

	ens := dynamo.NewEnsemble(backend, newIntegrator, build, n, cfg.Seed).
		WithMetrics(metrics.Default).
		WithThermostat(cfg.NewThermostat)
	return ens.Run(ctx, cfg.RunConfig())
}

// Summarize computes mean and sample standard deviation of every metric
// present in all results, plus the energy drift.
func Summarize(results []*dynamo.Result) []Summary {
	if len(results) == 0 {
		return nil
	}

	collect := func(get func(*dynamo.Result) (float64, bool)) ([]float64, bool) {
		vals := make([]float64, 0, len(results))
		for _, r := range results {
			v, ok := get(r)
			if !ok {
				return nil, false
			}
			vals = append(vals, v)
		}
		return vals, true
	}

	var out []Summary
	if vals, ok := collect(func(r *dynamo.Result) (float64, bool) { return r.EnergyDrift, true }); ok {
		out = append(out, summarize("energy_drift_final", vals))
	}
	for _, m := range metrics.Default() {
		name := m.Name()
		vals, ok := collect(func(r *dynamo.Result) (float64, bool) {
			v, ok := r.Metrics[name]
			return v, ok
		})
		if ok {
			out = append(out, summarize(name, vals))
		}
	}
	return out
}

func summarize(name string, vals []float64) Summary {
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	if len(vals) < 2 {
		return Summary{Name: name, Mean: mean}
	}
	ss := 0.0
	for _, v := range vals {
		ss += (v - mean) * (v - mean)
	}
	return Summary{Name: name, Mean: mean, StdDev: math.Sqrt(ss / float64(len(vals)-1))}
}
