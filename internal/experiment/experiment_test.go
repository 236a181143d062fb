package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/ljmd/internal/config"
	"github.com/san-kum/ljmd/internal/dynamo"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Particles = 64
	cfg.Density = 0.2
	cfg.Temperature = 1.0
	cfg.Steps = 200
	cfg.SampleEvery = 20
	cfg.Dt = 0.002
	return cfg
}

func TestExperimentRun(t *testing.T) {
	for _, kernel := range []string{"scalar", "lanes"} {
		t.Run(kernel, func(t *testing.T) {
			cfg := smallConfig()
			cfg.Kernel = kernel

			exp, err := New(cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if exp.Backend().Name() != kernel {
				t.Errorf("backend %s, want %s", exp.Backend().Name(), kernel)
			}

			result, err := exp.Run(context.Background())
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if result.StepsTaken != cfg.Steps {
				t.Errorf("steps taken %d, want %d", result.StepsTaken, cfg.Steps)
			}
			if len(result.Times) != cfg.Steps/cfg.SampleEvery+1 {
				t.Errorf("got %d samples", len(result.Times))
			}
			if math.IsNaN(result.EnergyDrift) || len(result.Errors) != 0 {
				t.Errorf("unstable run: drift %v, errors %v", result.EnergyDrift, result.Errors)
			}
			if _, ok := result.Metrics["mean_temperature"]; !ok {
				t.Error("missing mean_temperature metric")
			}
		})
	}
}

func TestExperimentInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.BoxSize = 4

	_, err := New(cfg)
	if !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestExperimentBoxSize(t *testing.T) {
	cfg := smallConfig()
	exp, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if want := math.Cbrt(64 / 0.2); math.Abs(exp.BoxSize()-want) > 1e-12 {
		t.Errorf("box %v, want %v", exp.BoxSize(), want)
	}
	if exp.RunConfig().BoxSize != exp.BoxSize() {
		t.Error("run config box differs from built box")
	}
}

// A lattice this dilute has every pair beyond the cutoff, so forces stay
// zero and the total energy is exactly kinetic and constant.
func TestExperimentConservesEnergyWithoutInteractions(t *testing.T) {
	for _, kernel := range []string{"scalar", "lanes"} {
		t.Run(kernel, func(t *testing.T) {
			cfg := smallConfig()
			cfg.Kernel = kernel
			cfg.Model = "lattice"
			cfg.Particles = 27
			cfg.Density = 0.001

			exp, err := New(cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			result, err := exp.Run(context.Background())
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			for i, u := range result.Potential {
				if u != 0 {
					t.Fatalf("sample %d potential = %v, want 0", i, u)
				}
			}
			if result.EnergyDrift > 1e-12 {
				t.Errorf("energy drift %v, want ~0", result.EnergyDrift)
			}
		})
	}
}

func TestExperimentKernelsAgree(t *testing.T) {
	totals := make(map[string][]float64)
	for _, kernel := range []string{"scalar", "lanes"} {
		cfg := smallConfig()
		cfg.Kernel = kernel
		exp, err := New(cfg)
		if err != nil {
			t.Fatalf("New(%s): %v", kernel, err)
		}
		result, err := exp.Run(context.Background())
		if err != nil {
			t.Fatalf("Run(%s): %v", kernel, err)
		}
		totals[kernel] = result.Total
	}

	scalar, lanes := totals["scalar"], totals["lanes"]
	if len(scalar) != len(lanes) {
		t.Fatalf("sample counts differ: %d vs %d", len(scalar), len(lanes))
	}
	for i := range scalar {
		if diff := math.Abs(scalar[i] - lanes[i]); diff > 1e-8*math.Max(1, math.Abs(scalar[i])) {
			t.Errorf("sample %d: scalar %.12f lanes %.12f", i, scalar[i], lanes[i])
		}
	}
}

func TestExperimentThermostat(t *testing.T) {
	cfg := smallConfig()
	cfg.Thermostat = "rescale"
	cfg.ThermostatEvery = 1
	cfg.Temperature = 1.3

	exp, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := result.Metrics["mean_temperature"]; math.Abs(got-1.3) > 1e-9 {
		t.Errorf("mean temperature %v, want 1.3", got)
	}

	cfg.Thermostat = "andersen"
	if _, err := New(cfg); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("andersen without a collision rate: expected ErrParameterBounds, got %v", err)
	}
}

func TestRunEnsembleThermostat(t *testing.T) {
	cfg := smallConfig()
	cfg.Steps = 40
	cfg.Thermostat = "rescale"
	cfg.ThermostatEvery = 1

	results, err := RunEnsemble(context.Background(), cfg, 2)
	if err != nil {
		t.Fatalf("RunEnsemble: %v", err)
	}
	for i, r := range results {
		if got := r.Metrics["mean_temperature"]; math.Abs(got-cfg.Temperature) > 1e-9 {
			t.Errorf("replica %d mean temperature %v, want %v", i, got, cfg.Temperature)
		}
	}
}

func TestRunEnsemble(t *testing.T) {
	cfg := smallConfig()
	cfg.Steps = 50

	results, err := RunEnsemble(context.Background(), cfg, 3)
	if err != nil {
		t.Fatalf("RunEnsemble: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Total[0] == results[1].Total[0] {
		t.Error("replicas with different seeds started from the same energy")
	}

	summary := Summarize(results)
	if len(summary) == 0 {
		t.Fatal("empty summary")
	}
	for _, s := range summary {
		if math.IsNaN(s.Mean) || s.StdDev < 0 {
			t.Errorf("bad summary %+v", s)
		}
	}

	if _, err := RunEnsemble(context.Background(), cfg, 0); err == nil {
		t.Error("expected error for empty ensemble")
	}
}
