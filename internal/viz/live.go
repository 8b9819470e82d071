package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/droptower/internal/gravity"
	"github.com/san-kum/droptower/internal/sim"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 36
	maxStepsFrame   = 256
	frameInterval   = time.Second / 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model renders a running simulation. The core never calls back into the
// view: every frame the model steps the simulation and redraws from the
// particle snapshot.
type Model struct {
	cfg  sim.Config
	seed uint64
	opts []sim.Option

	sim           *sim.Simulation
	canvas        *Canvas
	proj          projection
	stepsPerFrame int
	running       bool
	theme         Theme
	styles        styles
	gHistory      []float64
	title         string
	err           error
}

// NewModel initializes a simulation for cfg and seed. stepsPerFrame ticks
// are taken per rendered frame.
func NewModel(cfg sim.Config, seed uint64, stepsPerFrame int, title string, opts ...sim.Option) (Model, error) {
	s, err := sim.Initialize(cfg, seed, opts...)
	if err != nil {
		return Model{}, err
	}
	canvas := NewCanvas(width, height)
	theme := Themes[0]
	return Model{
		cfg:           cfg,
		seed:          seed,
		opts:          opts,
		sim:           s,
		canvas:        canvas,
		proj:          newProjection(canvas, cfg.Chamber()),
		stepsPerFrame: max(1, min(stepsPerFrame, maxStepsFrame)),
		running:       true,
		theme:         theme,
		styles:        newStyles(theme),
		gHistory:      make([]float64, 0, historyCapacity),
		title:         title,
	}, nil
}

func (m Model) Init() tea.Cmd { return tick() }

// Simulation exposes the driven simulation.
func (m Model) Simulation() *sim.Simulation { return m.sim }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running {
				m.step(1)
			}
		case "r":
			m.reset()
		case "t":
			m.theme = nextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case "+", "=":
			m.stepsPerFrame = min(m.stepsPerFrame*2, maxStepsFrame)
		case "-", "_":
			m.stepsPerFrame = max(m.stepsPerFrame/2, 1)
		}
	case TickMsg:
		if m.running {
			m.step(m.stepsPerFrame)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step(n int) {
	for i := 0; i < n && m.err == nil && !m.sim.IsTerminal(); i++ {
		status, err := m.sim.Step()
		if err != nil {
			m.err = err
			return
		}
		m.gHistory = append(m.gHistory, status.GEff)
		if len(m.gHistory) > historyCapacity {
			m.gHistory = m.gHistory[1:]
		}
	}
}

// reset restarts the run from the same seed.
func (m *Model) reset() {
	s, err := sim.Initialize(m.cfg, m.seed, m.opts...)
	if err != nil {
		m.err = err
		return
	}
	m.sim = s
	m.gHistory = m.gHistory[:0]
	m.err = nil
}

func (m *Model) draw() {
	m.canvas.Clear()
	drawChamber(m.canvas, m.proj, m.cfg.Chamber())
	drawParticles(m.canvas, m.proj, m.sim.System())
}

func (m Model) phase(p gravity.Phase) string {
	if p == gravity.FreeFall {
		return m.styles.freeFall.Render("FREE FALL")
	}
	return m.styles.loaded.Render("LOADED")
}

func (m Model) row(label, value string) string {
	return m.styles.label.Render(label) + m.styles.value.Render(value) + "\n"
}

func (m Model) View() string {
	m.draw()
	st := m.sim.Status()

	state := "RUNNING"
	switch {
	case m.err != nil:
		state = m.styles.warning.Render("ERROR: " + m.err.Error())
	case m.sim.IsTerminal():
		state = "COMPLETED"
	case !m.running:
		state = "PAUSED"
	}

	var s strings.Builder
	s.WriteString(m.styles.header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(state + "\n\n")
	s.WriteString(m.row("Phase", m.phase(st.Phase)))
	s.WriteString(m.row("Time", fmt.Sprintf("%.2f / %.2f s", st.Time, m.cfg.SimulationTime)))
	s.WriteString(m.row("g_eff", fmt.Sprintf("%.3f cm/s²", st.GEff)))
	s.WriteString(m.row("Chamber v", fmt.Sprintf("%.2f cm/s", st.ChamberVelocity)))
	s.WriteString(m.row("Kinetic E", fmt.Sprintf("%.1f erg", m.sim.System().KineticEnergy())))
	s.WriteString(m.row("Particles", fmt.Sprintf("%d", m.sim.System().Len())))
	s.WriteString(m.row("Model", m.sim.Config().GravityModel))
	s.WriteString(m.row("Steps/frame", fmt.Sprintf("%d", m.stepsPerFrame)))
	s.WriteString("\n" + ProgressBar(st.Time/m.cfg.SimulationTime, historyCapacity) + "\n")
	s.WriteString(Sparkline(m.gHistory, historyCapacity) + "\n")
	s.WriteString(m.styles.help.Render("SP:Pause .:Step R:Reset Q:Quit\n+/-:Speed T:Theme"))

	canvasView := m.styles.canvas.Render(m.canvas.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.styles.panel.Render(s.String()))
}

// Run drives m in the terminal until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
