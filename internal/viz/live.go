// Package viz renders a running simulation in the terminal. Each slip
// plane is drawn as a line of cells with dislocations placed by their
// line coordinate, and a sparkline tracks the population history.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/ddsim/dd2d/internal/crystal"
	"github.com/ddsim/dd2d/internal/sim"
)

const (
	planeWidth      = 72
	historyCapacity = 600
	graphHeight     = 6
)

type TickMsg time.Time

type Model struct {
	stepper *sim.Stepper
	cfg     sim.Config

	running     bool
	done        bool
	lastDt      float64
	nucleated   int
	annihilated int

	countHistory []float64
	width        int
	showHelp     bool
}

func NewModel(stepper *sim.Stepper, cfg sim.Config) Model {
	return Model{
		stepper:      stepper,
		cfg:          cfg,
		running:      true,
		width:        planeWidth,
		countHistory: make([]float64, 0, historyCapacity),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.done {
				m.advance()
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		if msg.Width-8 > 20 && msg.Width-8 < planeWidth {
			m.width = msg.Width - 8
		}
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) advance() {
	info := m.stepper.Step(m.cfg)
	m.lastDt = info.Dt
	m.nucleated += info.Nucleated
	m.annihilated += info.Annihilated

	m.countHistory = append(m.countHistory, float64(m.stepper.Polycrystal().DislocationCount()))
	if len(m.countHistory) > historyCapacity {
		m.countHistory = m.countHistory[1:]
	}

	if m.stepper.Iteration() >= m.cfg.Iterations {
		m.done = true
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("\n  " + headerStyle.Render("dd2d") + "\n")

	pc := m.stepper.Polycrystal()
	for gi, g := range pc.Grains() {
		for pi, sp := range g.SlipPlanes() {
			b.WriteString(fmt.Sprintf("  %s %s\n",
				planeStyle.Render(fmt.Sprintf("g%d p%d", gi, pi)),
				m.renderPlane(sp)))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderStats())

	if len(m.countHistory) > 1 {
		graph := asciigraph.Plot(m.countHistory,
			asciigraph.Height(graphHeight),
			asciigraph.Width(m.width),
			asciigraph.Caption("dislocation count"))
		b.WriteString(graphStyle.Render(graph) + "\n")
	}

	if m.showHelp {
		b.WriteString(helpStyle.Render("  space pause   s step   q quit") + "\n")
	} else {
		b.WriteString(helpStyle.Render("  ? help") + "\n")
	}
	return b.String()
}

// renderPlane places defects on a line of cells by line coordinate.
// Positive dislocations render as +, negative as -, latent sources as *.
func (m Model) renderPlane(sp *crystal.SlipPlane) string {
	ext := sp.Extremities()
	lo := sp.LineCoordinate(ext[0])
	hi := sp.LineCoordinate(ext[1])
	if hi < lo {
		lo, hi = hi, lo
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	cells := make([]string, m.width)
	for i := range cells {
		cells[i] = planeStyle.Render("·")
	}

	place := func(coord float64, glyph string) {
		idx := int((coord - lo) / span * float64(m.width-1))
		if idx >= 0 && idx < m.width {
			cells[idx] = glyph
		}
	}

	for _, src := range sp.Sources() {
		place(sp.LineCoordinate(src.Position()), sourceStyle.Render("*"))
	}
	dir := sp.LineDirection()
	for _, d := range sp.Dislocations() {
		glyph := positiveStyle.Render("+")
		if d.Burgers().Dot(dir) < 0 {
			glyph = negativeStyle.Render("-")
		}
		place(sp.LineCoordinate(d.Position()), glyph)
	}

	return strings.Join(cells, "")
}

func (m Model) renderStats() string {
	status := "running"
	if m.done {
		status = "done"
	} else if !m.running {
		status = "paused"
	}

	rows := []struct {
		label string
		value string
	}{
		{"status", status},
		{"iteration", fmt.Sprintf("%d / %d", m.stepper.Iteration(), m.cfg.Iterations)},
		{"time", fmt.Sprintf("%.4e s", m.stepper.Time())},
		{"dt", fmt.Sprintf("%.4e s", m.lastDt)},
		{"dislocations", fmt.Sprintf("%d", m.stepper.Polycrystal().DislocationCount())},
		{"nucleated", fmt.Sprintf("%d", m.nucleated)},
		{"annihilated", fmt.Sprintf("%d", m.annihilated)},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString("  " + labelStyle.Render(r.label) + valueStyle.Render(r.value) + "\n")
	}
	return b.String()
}

func Run(stepper *sim.Stepper, cfg sim.Config) error {
	_, err := tea.NewProgram(NewModel(stepper, cfg), tea.WithAltScreen()).Run()
	return err
}
