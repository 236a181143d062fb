package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/ljmd/internal/config"
	"github.com/san-kum/ljmd/internal/dynamo"
	"github.com/san-kum/ljmd/internal/experiment"
)

// Objective scores a finished run; lower is better.
type Objective func(*dynamo.Result) float64

// MetricObjective scores a run by a named metric. "energy_drift" reads
// the result's own drift.
func MetricObjective(name string) Objective {
	return func(r *dynamo.Result) float64 {
		if name == "energy_drift" {
			return r.EnergyDrift
		}
		v, ok := r.Metrics[name]
		if !ok {
			return math.Inf(1)
		}
		return v
	}
}

// Point is one evaluated parameter combination.
type Point struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// GridSearch evaluates every combination of the given parameter values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d params but %d ranges", dynamo.ErrDimensionMismatch, len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: no values for %s", dynamo.ErrParameterBounds, params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs base with every combination and returns the best point and
// all points in visiting order. Combinations that fail validation or
// produce an unstable run are recorded with their error and skipped.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective) (Point, []Point, error) {
	best := Point{Score: math.Inf(1)}
	var all []Point

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, objective, &best, &all)
	if err != nil {
		return best, all, err
	}
	if best.Params == nil {
		return best, all, fmt.Errorf("no valid parameter combination")
	}
	return best, all, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	objective Objective,
	best *Point,
	all *[]Point,
) error {
	if depth == len(g.paramNames) {
		pt := Point{Params: current, Score: math.Inf(1)}
		pt.Score, pt.Err = evaluate(ctx, base, current, objective)
		*all = append(*all, pt)

		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		}
		if pt.Err == nil && pt.Score < best.Score {
			*best = pt
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, objective, best, all); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(ctx context.Context, base *config.Config, params map[string]float64, objective Objective) (float64, error) {
	cfg := *base
	for name, v := range params {
		if err := cfg.SetParam(name, v); err != nil {
			return math.Inf(1), err
		}
	}

	exp, err := experiment.New(&cfg)
	if err != nil {
		return math.Inf(1), err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return math.Inf(1), err
	}
	if len(result.Errors) > 0 {
		return math.Inf(1), fmt.Errorf("%w: %w", dynamo.ErrUnstable, result.Errors[0])
	}
	return objective(result), nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
