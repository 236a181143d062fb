package config

import "sort"

// Presets are reduced-unit state points of the LJ phase diagram.
var Presets = map[string]*Config{
	"gas": {
		Model: "gas", Kernel: "auto", Integrator: "verlet",
		Particles: 216, Density: 0.05, Temperature: 2.0, Mass: 1,
		Dt: 0.005, Steps: 4000, SampleEvery: 20, Seed: 1,
	},
	"liquid": {
		Model: "fluid", Kernel: "auto", Integrator: "verlet",
		Particles: 500, Density: 0.8, Temperature: 1.0, Mass: 1,
		Dt: 0.005, Steps: 2000, SampleEvery: 10, Seed: 1, Perturbation: 0.05,
	},
	"nvt": {
		Model: "fluid", Kernel: "auto", Integrator: "verlet",
		Particles: 500, Density: 0.8, Temperature: 1.0, Mass: 1,
		Dt: 0.005, Steps: 2000, SampleEvery: 10, Seed: 1, Perturbation: 0.05,
		Thermostat: "andersen", CollisionRate: 5,
	},
	"solid": {
		Model: "lattice", Kernel: "auto", Integrator: "verlet",
		Particles: 512, Density: 1.1, Temperature: 0.3, Mass: 1,
		Dt: 0.004, Steps: 2000, SampleEvery: 10, Seed: 1,
	},
	"bench": {
		Model: "fluid", Kernel: "auto", Integrator: "verlet",
		Particles: 1000, Density: 0.6, Temperature: 1.2, Mass: 1,
		Dt: 0.005, Steps: 200, SampleEvery: 50, Seed: 7, Perturbation: 0.1,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Name = name
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
