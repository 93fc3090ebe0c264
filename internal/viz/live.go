package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/shapesim/internal/scene"
	"github.com/san-kum/shapesim/internal/softbody"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	paramStep       = 0.01
	frameInterval   = time.Second / 60
)

// LiftForce is the per-vertex force applied while dragging a body.
var LiftForce = mgl64.Vec3{0, 1.5, 0}

type tunable struct {
	name string
	get  func(softbody.Params) float64
	set  func(*softbody.Params, float64)
}

var tunables = []tunable{
	{"alpha", func(p softbody.Params) float64 { return p.Stiffness }, func(p *softbody.Params, v float64) { p.Stiffness = v }},
	{"beta", func(p softbody.Params) float64 { return p.LinearBlend }, func(p *softbody.Params, v float64) { p.LinearBlend = v }},
	{"delta", func(p softbody.Params) float64 { return p.VelocityDamping }, func(p *softbody.Params, v float64) { p.VelocityDamping = v }},
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live view of a running scene.
type Model struct {
	scene  *scene.Scene
	title  string
	canvas *Canvas
	wire   *Wireframe
	cam    *Camera
	theme  Theme
	st     styles

	running  bool
	selected int
	body     int
	dragging bool
	showHelp bool

	energy []float64
	note   string
	err    error
}

func NewModel(s *scene.Scene, title string) Model {
	return Model{
		scene:   s,
		title:   title,
		canvas:  NewCanvas(width, height),
		wire:    &Wireframe{},
		cam:     NewCamera(),
		theme:   ThemeCyberpunk,
		st:      newStyles(ThemeCyberpunk),
		running: true,
		energy:  make([]float64, 0, historyCapacity),
	}
}

// Run starts the live view and blocks until the user quits.
func Run(s *scene.Scene, title string) error {
	_, err := tea.NewProgram(NewModel(s, title), tea.WithAltScreen()).Run()
	return err
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
			m.selected = (m.selected + 1) % len(tunables)
		case "up", "k":
			m.adjust(paramStep)
		case "down", "j":
			m.adjust(-paramStep)
		case "m":
			m.cycleMode()
		case "n":
			m.nextBody()
		case "f":
			m.toggleDrag()
		case "left", "h":
			m.cam.Orbit(-0.1, 0)
		case "right", "l":
			m.cam.Orbit(0.1, 0)
		case "pgup":
			m.cam.Orbit(0, 0.1)
		case "pgdown":
			m.cam.Orbit(0, -0.1)
		case "+", "=":
			m.cam.ZoomIn()
		case "-", "_":
			m.cam.ZoomOut()
		case "t":
			m.theme = NextTheme(m.theme)
			m.st = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	if err := m.scene.Frame(); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.energy = append(m.energy, m.scene.KineticEnergy())
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

func (m *Model) reset() {
	if err := m.scene.Reset(); err != nil {
		m.err = err
		return
	}
	for _, e := range m.scene.Entries() {
		e.Body.ClearUserForce()
	}
	m.dragging = false
	m.energy = m.energy[:0]
	m.err = nil
	m.note = ""
}

func (m *Model) params() softbody.Params {
	if m.scene.Len() == 0 {
		return softbody.DefaultParams()
	}
	return m.scene.Entries()[0].Body.Params
}

func (m *Model) adjust(delta float64) {
	t := tunables[m.selected]
	v := t.get(m.params()) + delta
	if err := m.scene.Apply(func(p *softbody.Params) { t.set(p, v) }); err != nil {
		m.note = err.Error()
	}
}

// cycleMode moves every body to the next goal rule. Bodies that cannot
// use the new rule keep their current one.
func (m *Model) cycleMode() {
	next := m.params().Mode.Next()
	m.note = ""
	if err := m.scene.Apply(func(p *softbody.Params) { p.Mode = next }); err != nil {
		m.note = err.Error()
	}
}

func (m *Model) nextBody() {
	if m.scene.Len() == 0 {
		return
	}
	if m.dragging {
		m.toggleDrag()
	}
	m.body = (m.body + 1) % m.scene.Len()
}

func (m *Model) toggleDrag() {
	if m.scene.Len() == 0 {
		return
	}
	b := m.scene.Entries()[m.body].Body
	if m.dragging {
		b.ClearUserForce()
	} else {
		b.SetUserForce(LiftForce)
	}
	m.dragging = !m.dragging
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.wire.Clear()
	m.wire.AddBox(m.params().WallDist)
	for _, e := range m.scene.Entries() {
		m.wire.AddMesh(e.Body.Mesh)
	}
	Render3D(m.canvas, m.wire, m.cam)
}

func (m Model) View() string {
	m.draw()
	canvasView := m.st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(m.st.header.Render(strings.ToUpper(m.title)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(m.st.failed.Render("FAILED") + "\n\n")
	case m.running:
		s.WriteString(m.st.running.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(m.st.paused.Render("PAUSED") + "\n\n")
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(m.st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(m.st.label.Render(label) + m.st.value.Render(value) + "\n")
	}
	p := m.params()
	row("Time", fmt.Sprintf("%.3fs", m.scene.Time))
	row("Frame", fmt.Sprintf("%d", m.scene.Frames))
	row("Bodies", fmt.Sprintf("%d", m.scene.Len()))
	row("Contacts", fmt.Sprintf("%d", m.scene.Contacts))
	row("Mode", p.Mode.String())
	if m.scene.Len() > 0 {
		e := m.scene.Entries()[m.body]
		drag := ""
		if m.dragging {
			drag = " (lifting)"
		}
		row("Selected", e.Name+drag)
	}

	s.WriteString("\nPARAMETERS\n")
	for i, t := range tunables {
		v := t.get(p)
		line := fmt.Sprintf("%-6s %s %.3f", t.name, paramBar(v, 10), v)
		if i == m.selected {
			s.WriteString(m.st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + m.st.label.Render(line) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + m.st.failed.Render(m.err.Error()) + "\n")
	} else if m.note != "" {
		s.WriteString("\n" + m.st.paused.Render(m.note) + "\n")
	}

	s.WriteString(m.st.help.Render("SP:Pause R:Reset Q:Quit\nTab ↑↓:Tune M:Mode\nN:Body F:Lift ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.st.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Space     pause / resume
  R         reset every body to its rest shape
  Tab       select alpha, beta or delta
  Up/K      increase the selected parameter
  Down/J    decrease the selected parameter
  M         next goal mode
  N         select the next body
  F         toggle the lift force on the selected body
  Left/Right, PgUp/PgDn  orbit the camera
  +/-       zoom
  T         next theme
  Q         quit
`
