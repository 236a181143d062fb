package thermostat

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/ljmd/internal/dynamo"
	"github.com/san-kum/ljmd/internal/metrics"
)

// VelocityRescale scales every velocity so the kinetic temperature equals
// Target, once every Every steps.
type VelocityRescale struct {
	Target float64
	Every  int
	step   int
}

func NewVelocityRescale(target float64, every int) *VelocityRescale {
	if every < 1 {
		every = 1
	}
	return &VelocityRescale{Target: target, Every: every}
}

func (v *VelocityRescale) Name() string { return "rescale" }

func (v *VelocityRescale) Apply(p *dynamo.Particles, mass, _ float64) {
	v.step++
	if v.step%v.Every != 0 {
		return
	}
	current := metrics.Temperature(p.Vel, mass)
	if current <= 0 {
		return
	}
	scale := math.Sqrt(v.Target / current)
	for _, arr := range [3][]float64{p.Vel.X, p.Vel.Y, p.Vel.Z} {
		for i := range arr {
			arr[i] *= scale
		}
	}
}

func (v *VelocityRescale) Reset() {
	v.step = 0
}

// Andersen gives each particle a stochastic collision with the bath with
// probability Rate·dt per step. A collision redraws its velocity from the
// Maxwell-Boltzmann distribution at Target.
type Andersen struct {
	Target float64
	Rate   float64
	seed   int64
	rng    *rand.Rand
}

func NewAndersen(target, rate float64, seed int64) *Andersen {
	return &Andersen{
		Target: target,
		Rate:   rate,
		seed:   seed,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (a *Andersen) Name() string { return "andersen" }

func (a *Andersen) Apply(p *dynamo.Particles, mass, dt float64) {
	prob := a.Rate * dt
	sigma := math.Sqrt(a.Target / mass)
	for i := 0; i < p.Len(); i++ {
		if a.rng.Float64() < prob {
			redraw(p.Vel, i, sigma, a.rng)
		}
	}
}

func (a *Andersen) Reset() {
	a.rng = rand.New(rand.NewSource(a.seed))
}

// AndersenSingle redraws the velocity of one randomly chosen particle
// every Every steps.
type AndersenSingle struct {
	Target float64
	Every  int
	seed   int64
	step   int
	rng    *rand.Rand
}

func NewAndersenSingle(target float64, every int, seed int64) *AndersenSingle {
	if every < 1 {
		every = 1
	}
	return &AndersenSingle{
		Target: target,
		Every:  every,
		seed:   seed,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (a *AndersenSingle) Name() string { return "andersen_single" }

func (a *AndersenSingle) Apply(p *dynamo.Particles, mass, _ float64) {
	a.step++
	if a.step%a.Every != 0 || p.Len() == 0 {
		return
	}
	redraw(p.Vel, a.rng.Intn(p.Len()), math.Sqrt(a.Target/mass), a.rng)
}

func (a *AndersenSingle) Reset() {
	a.step = 0
	a.rng = rand.New(rand.NewSource(a.seed))
}

func redraw(vel dynamo.Vectors, i int, sigma float64, rng *rand.Rand) {
	vel.X[i] = sigma * rng.NormFloat64()
	vel.Y[i] = sigma * rng.NormFloat64()
	vel.Z[i] = sigma * rng.NormFloat64()
}

// Options carries the settings shared by every thermostat kind. Every is
// the rescale and single-collision interval in steps; Rate is the Andersen
// collision frequency per unit time.
type Options struct {
	Target float64
	Every  int
	Rate   float64
	Seed   int64
}

var registry = map[string]func(Options) dynamo.Thermostat{
	"rescale": func(o Options) dynamo.Thermostat {
		return NewVelocityRescale(o.Target, o.Every)
	},
	"andersen": func(o Options) dynamo.Thermostat {
		return NewAndersen(o.Target, o.Rate, o.Seed)
	},
	"andersen_single": func(o Options) dynamo.Thermostat {
		return NewAndersenSingle(o.Target, o.Every, o.Seed)
	},
}

// ByName builds the named thermostat. "" and "none" return nil, which
// leaves the run microcanonical.
func ByName(name string, opts Options) (dynamo.Thermostat, error) {
	if name == "" || name == "none" {
		return nil, nil
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown thermostat: %s (available: %v)", name, Names())
	}
	if opts.Target < 0 {
		return nil, fmt.Errorf("%w: thermostat target must be non-negative, got %f", dynamo.ErrParameterBounds, opts.Target)
	}
	if name == "andersen" && opts.Rate <= 0 {
		return nil, fmt.Errorf("%w: collision rate must be positive, got %f", dynamo.ErrParameterBounds, opts.Rate)
	}
	return fn(opts), nil
}

// Names lists the registered thermostats plus "none".
func Names() []string {
	names := make([]string, 0, len(registry)+1)
	for name := range registry {
		names = append(names, name)
	}
	names = append(names, "none")
	sort.Strings(names)
	return names
}
