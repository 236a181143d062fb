package config

import (
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ljmd/internal/compute"
	"github.com/san-kum/ljmd/internal/dynamo"
	"github.com/san-kum/ljmd/internal/integrators"
	"github.com/san-kum/ljmd/internal/physics"
	"github.com/san-kum/ljmd/internal/thermostat"
)

const (
	DefaultParticles   = 256
	DefaultDensity     = 0.8
	DefaultTemperature = 1.0
	DefaultMass        = 1.0
	DefaultDt          = 0.005
	DefaultSteps       = 1000
	DefaultSampleEvery = 10
	DefaultSeed        = 42
)

// Config describes one run in reduced LJ units. BoxSize wins over Density
// when both are set.
type Config struct {
	Name         string  `yaml:"name,omitempty"`
	Model        string  `yaml:"model"`
	Kernel       string  `yaml:"kernel"`
	Integrator   string  `yaml:"integrator"`
	Particles    int     `yaml:"particles"`
	Density      float64 `yaml:"density"`
	BoxSize      float64 `yaml:"box_size,omitempty"`
	Temperature  float64 `yaml:"temperature"`
	Mass         float64 `yaml:"mass"`
	Dt           float64 `yaml:"dt"`
	Steps        int     `yaml:"steps"`
	SampleEvery  int     `yaml:"sample_every"`
	Seed         int64   `yaml:"seed"`
	Perturbation float64 `yaml:"perturbation"`

	// Thermostat couples the run to a bath at Temperature. Empty or
	// "none" keeps it microcanonical.
	Thermostat      string  `yaml:"thermostat,omitempty"`
	ThermostatEvery int     `yaml:"thermostat_every,omitempty"`
	CollisionRate   float64 `yaml:"collision_rate,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:        "fluid",
		Kernel:       "auto",
		Integrator:   "verlet",
		Particles:    DefaultParticles,
		Density:      DefaultDensity,
		Temperature:  DefaultTemperature,
		Mass:         DefaultMass,
		Dt:           DefaultDt,
		Steps:        DefaultSteps,
		SampleEvery:  DefaultSampleEvery,
		Seed:         DefaultSeed,
		Perturbation: 0.05,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BoxLength returns the cubic box edge, derived from the density when no
// explicit size is given.
func (c *Config) BoxLength() float64 {
	if c.BoxSize > 0 {
		return c.BoxSize
	}
	if c.Density <= 0 {
		return 0
	}
	return math.Cbrt(float64(c.Particles) / c.Density)
}

// Models lists the initial-configuration builders a config may name.
func Models() []string {
	return []string{"fluid", "gas", "lattice"}
}

// Params lists the numeric fields SetParam accepts.
func Params() []string {
	return []string{"temperature", "density", "dt", "particles", "collision_rate"}
}

// SetParam sets a numeric field by name. Setting the density clears any
// explicit box size so the box follows it.
func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "temperature":
		c.Temperature = v
	case "density":
		c.Density = v
		c.BoxSize = 0
	case "dt":
		c.Dt = v
	case "particles":
		c.Particles = int(math.Round(v))
	case "collision_rate":
		c.CollisionRate = v
	default:
		return fmt.Errorf("unknown parameter %q (available: %v)", name, Params())
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Particles <= 0 {
		return fmt.Errorf("%w: particles must be positive, got %d", dynamo.ErrParameterBounds, c.Particles)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrParameterBounds, c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrParameterBounds, c.Steps)
	}
	if c.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %f", dynamo.ErrParameterBounds, c.Mass)
	}
	if c.Temperature < 0 {
		return fmt.Errorf("%w: temperature must be non-negative, got %f", dynamo.ErrParameterBounds, c.Temperature)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must be non-negative, got %d", dynamo.ErrParameterBounds, c.SampleEvery)
	}

	box := c.BoxLength()
	if box <= 0 {
		return fmt.Errorf("%w: need box_size or a positive density", dynamo.ErrParameterBounds)
	}
	// A single wrap per axis only finds the nearest image when the box is
	// at least two cutoffs wide.
	if box < 2*physics.Cutoff {
		return fmt.Errorf("%w: box %.3f smaller than twice the cutoff (%.1f)", dynamo.ErrParameterBounds, box, 2*physics.Cutoff)
	}

	if !slices.Contains(Models(), c.Model) {
		return fmt.Errorf("unknown model: %s (available: %v)", c.Model, Models())
	}
	if c.Kernel != "" && !slices.Contains(compute.ListBackends(), c.Kernel) {
		return fmt.Errorf("unknown kernel: %s (available: %v)", c.Kernel, compute.ListBackends())
	}
	if !slices.Contains(integrators.Names(), c.Integrator) {
		return fmt.Errorf("unknown integrator: %s (available: %v)", c.Integrator, integrators.Names())
	}
	return c.validateThermostat()
}

func (c *Config) validateThermostat() error {
	if c.Thermostat == "" || c.Thermostat == "none" {
		return nil
	}
	if !slices.Contains(thermostat.Names(), c.Thermostat) {
		return fmt.Errorf("unknown thermostat: %s (available: %v)", c.Thermostat, thermostat.Names())
	}
	if c.ThermostatEvery < 0 {
		return fmt.Errorf("%w: thermostat_every must be non-negative, got %d", dynamo.ErrParameterBounds, c.ThermostatEvery)
	}
	if c.CollisionRate < 0 || (c.Thermostat == "andersen" && c.CollisionRate == 0) {
		return fmt.Errorf("%w: andersen needs a positive collision_rate, got %f", dynamo.ErrParameterBounds, c.CollisionRate)
	}
	return nil
}

// NewThermostat builds the configured thermostat with the given rng seed,
// or returns nil when the run is uncoupled.
func (c *Config) NewThermostat(seed int64) (dynamo.Thermostat, error) {
	return thermostat.ByName(c.Thermostat, thermostat.Options{
		Target: c.Temperature,
		Every:  c.ThermostatEvery,
		Rate:   c.CollisionRate,
		Seed:   seed,
	})
}

// RunConfig converts to the simulator's per-run settings.
func (c *Config) RunConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Steps:         c.Steps,
		BoxSize:       c.BoxLength(),
		Mass:          c.Mass,
		SampleEvery:   c.SampleEvery,
		Seed:          c.Seed,
		ValidateState: true,
	}
}
