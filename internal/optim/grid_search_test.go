package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/ljmd/internal/config"
	"github.com/san-kum/ljmd/internal/dynamo"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Particles = 27
	cfg.Density = 0.1
	cfg.Steps = 40
	return cfg
}

func TestNewGridSearchErrors(t *testing.T) {
	if _, err := NewGridSearch([]string{"dt"}, nil); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := NewGridSearch([]string{"dt"}, [][]float64{{}}); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestGridSearchPrefersSmallTimestep(t *testing.T) {
	g, err := NewGridSearch([]string{"dt"}, [][]float64{{0.02, 0.001, 0.01}})
	if err != nil {
		t.Fatal(err)
	}

	best, all, err := g.Search(context.Background(), smallConfig(), MetricObjective("energy_drift"))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 evaluated points, got %d", len(all))
	}
	if best.Params["dt"] != 0.001 {
		t.Errorf("best dt = %v, want 0.001 (scores %v)", best.Params["dt"], all)
	}
}

func TestGridSearchSkipsInvalid(t *testing.T) {
	g, err := NewGridSearch(
		[]string{"density", "temperature"},
		[][]float64{{0.1, 5}, {0.5, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}

	best, all, err := g.Search(context.Background(), smallConfig(), MetricObjective("mean_temperature"))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 points, got %d", len(all))
	}

	// 27 particles at density 5 give a box below twice the cutoff.
	failed := 0
	for _, p := range all {
		if p.Err != nil {
			failed++
			if !errors.Is(p.Err, dynamo.ErrParameterBounds) {
				t.Errorf("unexpected error %v", p.Err)
			}
		}
	}
	if failed != 2 {
		t.Errorf("expected 2 rejected points, got %d", failed)
	}
	if best.Params["density"] != 0.1 || best.Params["temperature"] != 0.5 {
		t.Errorf("unexpected best point %v", best.Params)
	}
}

func TestGridSearchCanceled(t *testing.T) {
	g, _ := NewGridSearch([]string{"dt"}, [][]float64{{0.001, 0.002}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := g.Search(ctx, smallConfig(), MetricObjective("energy_drift")); !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Errorf("expected ErrContextCanceled, got %v", err)
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Linspace[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if len(Linspace(3, 4, 1)) != 1 {
		t.Error("single point")
	}
}

func TestMetricObjectiveMissing(t *testing.T) {
	r := &dynamo.Result{Metrics: map[string]float64{"a": 2}, EnergyDrift: 0.1}
	if MetricObjective("a")(r) != 2 || MetricObjective("energy_drift")(r) != 0.1 {
		t.Error("wrong objective value")
	}
	if v := MetricObjective("b")(r); v < 1e300 {
		t.Errorf("missing metric scored %v", v)
	}
}
