package compute

import (
	"fmt"
	"sort"
	"sync"

	"github.com/san-kum/ljmd/internal/dynamo"
)

// Backend is a force/energy kernel pair the simulator can drive.
type Backend interface {
	dynamo.ForceBackend
	Available() bool
	// Description names the implementation and, where it matters, the
	// instruction set it was selected for.
	Description() string
}

var (
	mu            sync.RWMutex
	activeBackend Backend
)

func init() {
	activeBackend = AutoSelectBackend()
}

func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	activeBackend = b
}

func GetBackend() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return activeBackend
}

// AutoSelectBackend prefers the lane kernel when the host has a vector
// unit wide enough for it, and the scalar kernel otherwise.
func AutoSelectBackend() Backend {
	lanes := NewLaneBackend()
	if lanes.Accelerated() {
		return lanes
	}
	return NewScalarBackend()
}

var backends = map[string]func() Backend{
	"scalar": func() Backend { return NewScalarBackend() },
	"lanes":  func() Backend { return NewLaneBackend() },
	"auto":   AutoSelectBackend,
}

// ByName resolves a kernel name from config or the command line. The
// empty name means the process-wide active backend.
func ByName(name string) (Backend, error) {
	if name == "" {
		return GetBackend(), nil
	}
	fn, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown kernel: %s (available: %v)", name, ListBackends())
	}
	b := fn()
	if !b.Available() {
		return nil, fmt.Errorf("kernel %s not available on this host", name)
	}
	return b, nil
}

func ListBackends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
