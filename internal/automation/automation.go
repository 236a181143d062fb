package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ljmd/internal/config"
	"github.com/san-kum/ljmd/internal/dynamo"
	"github.com/san-kum/ljmd/internal/experiment"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and overrides the
// fields it sets.
type ScenarioStep struct {
	Preset        string   `yaml:"preset"`
	Kernel        string   `yaml:"kernel"`
	Integrator    string   `yaml:"integrator"`
	Particles     int      `yaml:"particles"`
	Density       float64  `yaml:"density"`
	Temperature   *float64 `yaml:"temperature"`
	Dt            float64  `yaml:"dt"`
	Steps         int      `yaml:"steps"`
	Seed          int64    `yaml:"seed"`
	Thermostat    string   `yaml:"thermostat"`
	CollisionRate float64  `yaml:"collision_rate"`
	SaveAs        string   `yaml:"save_as"`
}

// StepResult pairs a finished run with the config that produced it.
type StepResult struct {
	Config *config.Config
	Kernel string
	Result *dynamo.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the step into a full run config.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}

	if s.Kernel != "" {
		cfg.Kernel = s.Kernel
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Particles > 0 {
		cfg.Particles = s.Particles
	}
	if s.Density > 0 {
		cfg.Density = s.Density
	}
	if s.Temperature != nil {
		cfg.Temperature = *s.Temperature
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Steps > 0 {
		cfg.Steps = s.Steps
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Thermostat != "" {
		cfg.Thermostat = s.Thermostat
	}
	if s.CollisionRate > 0 {
		cfg.CollisionRate = s.CollisionRate
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in order, writing one progress line per
// step to out.
func RunScenario(ctx context.Context, scenario *Scenario, out io.Writer) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		fmt.Fprintf(out, "Running step %d/%d: %s (N=%d, T=%.2f, kernel=%s)\n",
			i+1, len(scenario.Steps), cfg.Model, cfg.Particles, cfg.Temperature, exp.Backend().Name())

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Config: cfg, Kernel: exp.Backend().Name(), Result: result})
	}

	return results, nil
}

// ParameterSweep runs one config across a range of a single parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue      float64
	MeanTemperature float64
	MeanPressure    float64
	MeanPotential   float64
	EnergyDrift     float64
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, out io.Writer) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("%w: sweep needs at least 2 points", dynamo.ErrParameterBounds)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := *sweep.Base
		if err := cfg.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp, err := experiment.New(&cfg)
		if err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, paramVal, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		meanPE := 0.0
		for _, v := range result.Potential {
			meanPE += v
		}
		meanPE /= float64(len(result.Potential))

		results = append(results, SweepResult{
			ParamValue:      paramVal,
			MeanTemperature: result.Metrics["mean_temperature"],
			MeanPressure:    result.Metrics["mean_pressure"],
			MeanPotential:   meanPE / float64(cfg.Particles),
			EnergyDrift:     result.EnergyDrift,
		})

		fmt.Fprintf(out, "Sweep %d/%d: %s=%.4f\n", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}
