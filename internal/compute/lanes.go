package compute

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/san-kum/ljmd/internal/dynamo"
	"github.com/san-kum/ljmd/internal/physics"
)

// LaneBackend runs the lane-batched kernels. The kernels are portable Go
// and run on any host; the detected ISA only decides whether auto
// selection prefers them.
type LaneBackend struct {
	isa string
}

func NewLaneBackend() *LaneBackend {
	return &LaneBackend{isa: DetectISA()}
}

func (l *LaneBackend) Name() string    { return "lanes" }
func (l *LaneBackend) Available() bool { return true }

func (l *LaneBackend) Description() string {
	return fmt.Sprintf("%d-wide lanes (%s)", physics.LaneWidth, l.isa)
}

// Accelerated reports whether the host has a vector unit that holds a full
// batch of float64 lanes.
func (l *LaneBackend) Accelerated() bool {
	return l.isa != ISAPortable
}

func (l *LaneBackend) Forces(pos, force dynamo.Vectors, boxSize float64) {
	physics.ComputeForcesSIMD(pos, force, boxSize)
}

func (l *LaneBackend) Energy(pos dynamo.Vectors, boxSize float64) float64 {
	return physics.ComputeEnergySIMD(pos, boxSize)
}

const (
	ISAAVX512   = "AVX-512"
	ISAAVX2     = "AVX2"
	ISAASIMD    = "ASIMD"
	ISAPortable = "portable"
)

// DetectISA returns the widest vector extension relevant to 4 x float64
// batches. ASIMD only holds two doubles per register but still pairs well
// with the lane kernel's unrolled loops.
func DetectISA() string {
	switch runtime.GOARCH {
	case "amd64":
		if cpu.X86.HasAVX512F {
			return ISAAVX512
		}
		if cpu.X86.HasAVX2 {
			return ISAAVX2
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			return ISAASIMD
		}
	}
	return ISAPortable
}
