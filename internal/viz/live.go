package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ljmd/internal/dynamo"
	"github.com/san-kum/ljmd/internal/experiment"
	"github.com/san-kum/ljmd/internal/metrics"
)

const (
	width           = 60
	height          = 22
	historyCapacity = 300
	maxStepsPerTick = 256
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives an experiment step by step and renders the particles in a
// rotating box next to the running thermodynamics.
type Model struct {
	exp     *experiment.Experiment
	sim     *dynamo.Simulator
	p       *dynamo.Particles
	initial *dynamo.Particles
	cfg     dynamo.Config
	name    string

	step          int
	stepsPerFrame int
	running       bool
	showHelp      bool
	err           error

	canvas *Canvas
	camera *Camera
	frame  *Wireframe

	last      dynamo.Sample
	e0        float64
	totalHist []float64
	tempHist  []float64
	maxDrift  float64
}

func NewModel(exp *experiment.Experiment, name string) Model {
	m := Model{
		exp:           exp,
		sim:           exp.GetSimulator(),
		p:             exp.Particles(),
		initial:       exp.Particles().Clone(),
		cfg:           exp.RunConfig(),
		name:          name,
		stepsPerFrame: 4,
		running:       true,
		canvas:        NewCanvas(width, height),
		camera:        NewCamera(),
		frame:         CreateCubeWireframe(2),
		totalHist:     make([]float64, 0, historyCapacity),
		tempHist:      make([]float64, 0, historyCapacity),
	}
	m.prime()
	return m
}

func (m *Model) prime() {
	m.sim.Prime(m.p, m.cfg.BoxSize)
	m.last = m.sim.Sample(m.p, 0, m.cfg)
	m.e0 = m.last.Total()
	m.record()
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "[":
			m.stepsPerFrame = max(1, m.stepsPerFrame/2)
		case "]":
			m.stepsPerFrame = min(maxStepsPerTick, m.stepsPerFrame*2)
		case "t":
			NextTheme()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance(m.stepsPerFrame)
		}
		return m, tick()
	}
	return m, nil
}

// advance runs n steps and records one sample.
func (m *Model) advance(n int) {
	for i := 0; i < n; i++ {
		m.sim.Step(m.p, m.cfg)
		m.step++
		if err := dynamo.CheckState(m.p, m.step, m.cfg.Dt); err != nil {
			m.err = err
			m.running = false
			return
		}
	}
	m.last = m.sim.Sample(m.p, m.step, m.cfg)
	m.record()
}

func (m *Model) record() {
	total := m.last.Total()
	drift := math.Abs(total - m.e0)
	if m.e0 != 0 {
		drift /= math.Abs(m.e0)
	}
	m.maxDrift = math.Max(m.maxDrift, drift)

	m.totalHist = appendCapped(m.totalHist, total)
	m.tempHist = appendCapped(m.tempHist, metrics.Temperature(m.p.Vel, m.cfg.Mass))
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// reset restores the initial particle state.
func (m *Model) reset() {
	m.p.Pos.CopyFrom(m.initial.Pos)
	m.p.Vel.CopyFrom(m.initial.Vel)
	m.p.Force.CopyFrom(m.initial.Force)
	m.step = 0
	m.err = nil
	m.running = true
	m.maxDrift = 0
	m.totalHist = m.totalHist[:0]
	m.tempHist = m.tempHist[:0]
	m.prime()
}

func (m *Model) draw() {
	m.canvas.Clear()
	Render3D(m.canvas, m.frame, m.camera)
	RenderParticles(m.canvas, m.p.Pos, m.cfg.BoxSize, m.camera)
}

func (m Model) status(st styles) string {
	switch {
	case m.err != nil:
		if errors.Is(m.err, dynamo.ErrInvalidState) {
			return st.failed.Render("UNSTABLE: " + m.err.Error())
		}
		return st.failed.Render(m.err.Error())
	case !m.running:
		return st.paused.Render("PAUSED")
	default:
		return st.running.Render(fmt.Sprintf("RUNNING ×%d", m.stepsPerFrame))
	}
}

func (m Model) View() string {
	st := themeStyles(CurrentTheme)
	m.draw()
	canvasView := st.canvas.Render(m.canvas.String())

	n := m.p.Len()
	row := func(label, value string) string {
		return st.label.Render(label) + st.value.Render(value) + "\n"
	}

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status(st) + "\n\n")

	s.WriteString(row("Step", fmt.Sprintf("%d", m.step)))
	s.WriteString(row("Time", fmt.Sprintf("%.3f", float64(m.step)*m.cfg.Dt)))
	s.WriteString(row("Particles", fmt.Sprintf("%d (ρ=%.3f)", n, metrics.Density(n, m.cfg.BoxSize))))
	s.WriteString(row("Box", fmt.Sprintf("%.3f", m.cfg.BoxSize)))
	s.WriteString(row("Kernel", m.exp.Backend().Description()))
	s.WriteString("\n")
	s.WriteString(row("Kinetic", fmt.Sprintf("%.4f", m.last.Kinetic/float64(n))))
	s.WriteString(row("Potential", fmt.Sprintf("%.4f", m.last.Potential/float64(n))))
	s.WriteString(row("Total", fmt.Sprintf("%.4f", m.last.Total()/float64(n))))
	s.WriteString(row("Temp", fmt.Sprintf("%.4f", metrics.Temperature(m.p.Vel, m.cfg.Mass))))
	s.WriteString(row("Drift", fmt.Sprintf("%.2e", m.maxDrift)))

	if len(m.totalHist) > 1 {
		chart := asciigraph.Plot(m.totalHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Total energy"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}
	s.WriteString(st.label.Render("T(t)") + SparklineChart(m.tempHist, 30) + "\n")

	s.WriteString(st.hint.Render("SP:Pause R:Reset Q:Quit\n[ ]:Speed T:Theme ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset to initial state   ║
║  Q        - Quit                     ║
║  [ / ]    - Halve/double steps/frame ║
║  x y z    - Rotate (shift reverses)  ║
║  + / -    - Zoom                     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run starts the live view full-screen.
func Run(exp *experiment.Experiment, name string) error {
	_, err := tea.NewProgram(NewModel(exp, name), tea.WithAltScreen()).Run()
	return err
}
