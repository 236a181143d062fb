package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/ljmd/internal/dynamo"
)

var registry = map[string]func() dynamo.Integrator{
	"verlet":   func() dynamo.Integrator { return NewVelocityVerlet() },
	"leapfrog": func() dynamo.Integrator { return NewVelocityVerlet() },
	"euler":    func() dynamo.Integrator { return NewEuler() },
}

// ByName returns a fresh integrator registered under name.
func ByName(name string) (dynamo.Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
