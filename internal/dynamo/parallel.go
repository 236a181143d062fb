package dynamo

import (
	"context"
	"sync"
)

// Ensemble runs independent replicas of one setup, each with its own
// particle buffers and seed. Particles within a replica are still stepped
// on a single goroutine.
type Ensemble struct {
	backend    ForceBackend
	integrator func() Integrator
	build      func(seed int64) (*Particles, error)
	newMetrics func() []Metric
	thermostat func(seed int64) (Thermostat, error)
	numRuns    int
	seedStart  int64
}

func NewEnsemble(backend ForceBackend, integrator func() Integrator, build func(seed int64) (*Particles, error), numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		backend:    backend,
		integrator: integrator,
		build:      build,
		numRuns:    numRuns,
		seedStart:  seedStart,
	}
}

// WithMetrics sets a factory producing fresh metrics for every replica.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.newMetrics = fn
	return e
}

// WithThermostat sets a factory giving each replica its own thermostat,
// seeded with the replica seed.
func (e *Ensemble) WithThermostat(fn func(seed int64) (Thermostat, error)) *Ensemble {
	e.thermostat = fn
	return e
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			p, err := e.build(cfgCopy.Seed)
			if err != nil {
				errs[idx] = err
				return
			}

			s := New(e.backend, e.integrator())
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}
			if e.thermostat != nil {
				t, err := e.thermostat(cfgCopy.Seed)
				if err != nil {
					errs[idx] = err
					return
				}
				s.SetThermostat(t)
			}

			results[idx], errs[idx] = s.Run(ctx, p, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
