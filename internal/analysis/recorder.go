package analysis

import (
	"github.com/san-kum/ljmd/internal/dynamo"
	"github.com/san-kum/ljmd/internal/metrics"
)

// Frame is one snapshot of the particle state.
type Frame struct {
	Step int
	Time float64
	Pos  dynamo.Vectors
	Vel  dynamo.Vectors
}

// Recorder keeps a copy of every n-th sample it is shown. The first two
// kept frames fix the step stride; later frames off that stride are
// dropped, so a run whose step count is not a multiple of the sampling
// interval still yields an evenly spaced series.
type Recorder struct {
	every  int
	seen   int
	frames []Frame
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every}
}

func (r *Recorder) OnStep(s dynamo.Sample, p *dynamo.Particles) {
	if r.seen%r.every == 0 && r.onStride(s.Step) {
		r.frames = append(r.frames, Frame{
			Step: s.Step,
			Time: s.Time,
			Pos:  p.Pos.Clone(),
			Vel:  p.Vel.Clone(),
		})
	}
	r.seen++
}

func (r *Recorder) onStride(step int) bool {
	n := len(r.frames)
	if n < 2 {
		return true
	}
	stride := r.frames[1].Step - r.frames[0].Step
	return step-r.frames[n-1].Step == stride
}

func (r *Recorder) Frames() []Frame { return r.frames }

// Interval returns the time between consecutive frames, assuming uniform
// sampling.
func (r *Recorder) Interval() float64 {
	if len(r.frames) < 2 {
		return 0
	}
	return r.frames[1].Time - r.frames[0].Time
}

func (r *Recorder) Reset() {
	r.frames = nil
	r.seen = 0
}

// KineticSeries returns the kinetic energy of every frame.
func KineticSeries(frames []Frame, mass float64) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = metrics.KineticEnergy(f.Vel, mass)
	}
	return out
}
