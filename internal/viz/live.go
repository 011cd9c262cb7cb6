package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/kepler"
	"github.com/san-kum/kepler/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailLength     = 120
	pathSamples     = 96
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model animates a set of bodies. Propagation is analytic, so time can be
// stepped backward as freely as forward.
type Model struct {
	title    string
	bodies   []sim.Body
	t, dt    float64
	duration float64

	states []dynamo.State
	solves []kepler.Result

	// scale maps world lengths to unit-sized view coordinates.
	scale   float64
	paths   *Wireframe
	trails  [][]Vec3
	camera  *Camera
	canvas  *Canvas
	running bool

	selected      int
	radiusHistory []float64
	iterHistory   []float64
	showHelp      bool
}

func NewModel(title string, bodies []sim.Body, dt, duration float64) Model {
	m := Model{
		title:    title,
		bodies:   bodies,
		dt:       dt,
		duration: duration,
		camera:   NewCamera(),
		canvas:   NewCanvas(width, height),
		running:  true,
		trails:   make([][]Vec3, len(bodies)),
	}
	m.scale = 1 / viewExtent(bodies, duration)
	m.paths = m.buildPaths()
	m.propagate()
	return m
}

// viewExtent is the largest distance any body reaches: apoapsis for closed
// orbits, and the farther end of the run for open ones.
func viewExtent(bodies []sim.Body, duration float64) float64 {
	extent := 0.0
	for _, b := range bodies {
		el := b.Propagator.Elements()
		if !el.Hyperbolic() {
			extent = math.Max(extent, el.SemiMajorAxis*(1+el.Eccentricity))
			continue
		}
		for _, t := range []float64{0, duration} {
			x, _ := b.Propagator.At(t)
			extent = math.Max(extent, x.Position().Norm())
		}
	}
	if extent == 0 || math.IsInf(extent, 0) || math.IsNaN(extent) {
		return 1
	}
	return extent
}

// buildPaths samples each closed orbit once around for the background.
func (m *Model) buildPaths() *Wireframe {
	w := CreateAxesWireframe(0.15)
	for _, b := range m.bodies {
		if b.Propagator.Elements().Hyperbolic() {
			continue
		}
		period := b.Propagator.Period()
		pts := make([]Vec3, 0, pathSamples+1)
		for i := 0; i <= pathSamples; i++ {
			x, _ := b.Propagator.At(period * float64(i) / pathSamples)
			pts = append(pts, m.toView(x))
		}
		w.AddPath(pts)
	}
	return w
}

func (m *Model) toView(x dynamo.State) Vec3 {
	return Vec3{x[0], x[1], x[2]}.Scale(m.scale)
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
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			if len(m.bodies) > 0 {
				m.selected = (m.selected + 1) % len(m.bodies)
				m.radiusHistory = m.radiusHistory[:0]
				m.iterHistory = m.iterHistory[:0]
			}
		case "[":
			m.seek(-10 * m.dt)
		case "]":
			m.seek(10 * m.dt)
		case "?":
			m.showHelp = !m.showHelp
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
		}
	case TickMsg:
		if m.running && m.t+m.dt <= m.duration+1e-9*m.dt {
			m.seek(m.dt)
		}
		return m, tick()
	}
	return m, nil
}

// seek moves time by delta, clamped to [0, duration].
func (m *Model) seek(delta float64) {
	m.t = math.Max(0, math.Min(m.duration, m.t+delta))
	m.propagate()
}

func (m *Model) reset() {
	m.t = 0
	for i := range m.trails {
		m.trails[i] = m.trails[i][:0]
	}
	m.radiusHistory = m.radiusHistory[:0]
	m.iterHistory = m.iterHistory[:0]
	m.propagate()
}

func (m *Model) propagate() {
	m.states = make([]dynamo.State, len(m.bodies))
	m.solves = make([]kepler.Result, len(m.bodies))
	for i, b := range m.bodies {
		m.states[i], m.solves[i] = b.Propagator.At(m.t)
		if !m.states[i].IsValid() {
			continue
		}
		m.trails[i] = appendCapped(m.trails[i], m.toView(m.states[i]), trailLength)
	}

	if len(m.bodies) == 0 {
		return
	}
	sel := m.selected
	m.radiusHistory = appendCapped(m.radiusHistory, m.states[sel].Position().Norm(), historyCapacity)
	m.iterHistory = appendCapped(m.iterHistory, float64(m.solves[sel].Iterations), historyCapacity)
}

func appendCapped[T any](s []T, v T, capacity int) []T {
	s = append(s, v)
	if len(s) > capacity {
		s = s[len(s)-capacity:]
	}
	return s
}

func (m *Model) draw() {
	m.canvas.Clear()
	Render3D(m.canvas, m.paths, m.camera)

	trails := NewWireframe()
	for _, tr := range m.trails {
		trails.AddPath(tr)
	}
	Render3D(m.canvas, trails, m.camera)

	cw, ch := m.canvas.Width*2, m.canvas.Height*4
	for i, x := range m.states {
		if !x.IsValid() {
			continue
		}
		if px, py, _, ok := m.camera.Project(m.toView(x), cw, ch); ok {
			m.canvas.Dot(px, py)
			if i == m.selected {
				m.canvas.Dot(px-2, py-2)
			}
		}
	}
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	header := lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true).MarginBottom(1)
	s.WriteString(header.Render(strings.ToUpper(m.title)) + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	} else if m.t >= m.duration {
		status = "DONE"
	}
	s.WriteString(status + "\n")
	s.WriteString(ProgressBar(m.t/m.duration, 30) + "\n\n")

	if len(m.bodies) > 0 {
		b, x, res := m.bodies[m.selected], m.states[m.selected], m.solves[m.selected]
		el := b.Propagator.Elements()

		if len(m.radiusHistory) > 1 {
			chart := asciigraph.Plot(m.radiusHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("radius "+b.Name))
			s.WriteString(graphStyle.Render(chart) + "\n")
		}
		s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3f", m.t)) + "\n")
		s.WriteString(labelStyle.Render("Body") + valueStyle.Render(fmt.Sprintf("%s (e=%.4g)", b.Name, el.Eccentricity)) + "\n")
		s.WriteString(labelStyle.Render("Radius") + valueStyle.Render(fmt.Sprintf("%.4g", x.Position().Norm())) + "\n")
		s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%.4g", x.Velocity().Norm())) + "\n")
		s.WriteString(labelStyle.Render("Anomaly") + valueStyle.Render(fmt.Sprintf("%.6f", res.Anomaly)) + "\n")
		s.WriteString(labelStyle.Render("Solve") + StatusStyle(res.Status.String()).Render(res.Status.String()) +
			valueStyle.Render(fmt.Sprintf(" %d it, |f|=%.1e", res.Iterations, math.Abs(res.Residual))) + "\n")
		s.WriteString(labelStyle.Render("Iterations") + SparklineChart(m.iterHistory, 30) + "\n")
	}

	s.WriteString("\n" + Separator(30) + "\n")
	for i, b := range m.bodies {
		marker := "  "
		if i == m.selected {
			marker = "> "
		}
		s.WriteString(marker + labelStyle.Render(b.Name) + StatusStyle(m.solves[i].Status.String()).Render(m.solves[i].Status.String()) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit Tab:Body\n[ ]:Seek xyz:Rotate +-:Zoom ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset to t = 0           ║
║  Q        - Quit                     ║
║  Tab      - Select next body         ║
║  [ / ]    - Seek backward/forward    ║
║  x/y/z    - Rotate view (shift: back)║
║  + / -    - Zoom                     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run starts the live view full screen and blocks until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
