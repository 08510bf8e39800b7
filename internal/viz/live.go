// Package viz renders a live terminal view of an integration run:
// the trajectory advances in real time with an asciigraph plot of the
// state components.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/models"
	"github.com/san-kum/odelab/internal/ode"
)

const (
	graphWidth      = 80
	graphHeight     = 12
	historyCapacity = 600
)

type TickMsg time.Time

// Model holds the live integration state for the bubbletea loop.
type Model struct {
	model   *models.Model
	stepper integrators.Stepper
	dt      float64
	fps     int

	t       float64
	y       ode.State
	history [][]float64
	running bool
	done    bool
	invalid bool
}

func NewModel(m *models.Model, st integrators.Stepper, dt float64, fps int) Model {
	return Model{
		model:   m,
		stepper: st,
		dt:      dt,
		fps:     fps,
		t:       m.T0,
		y:       m.Y0.Clone(),
		history: make([][]float64, 0, historyCapacity),
		running: true,
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
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
			m.t = m.model.T0
			m.y = m.model.Y0.Clone()
			m.history = m.history[:0]
			m.done = false
			m.invalid = false
			m.running = true
		}
		return m, nil

	case TickMsg:
		if m.running && !m.done && !m.invalid {
			// A few integration steps per frame keeps wall time roughly
			// proportional to simulated time.
			for i := 0; i < 5 && m.t < m.model.TEnd; i++ {
				h := m.dt
				if m.t+h > m.model.TEnd {
					h = m.model.TEnd - m.t
				}
				m.y = m.stepper.Step(m.model.System, m.t, m.y, h)
				m.t += h

				if !m.y.IsValid() {
					m.invalid = true
					break
				}

				sample := make([]float64, len(m.y))
				copy(sample, m.y)
				if len(m.history) == historyCapacity {
					m.history = m.history[1:]
				}
				m.history = append(m.history, sample)
			}
			if m.t >= m.model.TEnd {
				m.done = true
			}
		}
		return m, m.tick()
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s  [%s]", m.model.Name, m.stepper.Name())))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(m.model.Equation))
	b.WriteString("\n\n")

	if len(m.history) > 1 {
		series := make([]float64, len(m.history))
		for i, s := range m.history {
			series[i] = s[0]
		}
		b.WriteString(graphStyle.Render(asciigraph.Plot(series,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("y0"),
		)))
		b.WriteString("\n\n")
	}

	b.WriteString(labelStyle.Render("t"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%10.4f / %.4f", m.t, m.model.TEnd)))
	b.WriteString("\n")
	for i, v := range m.y {
		b.WriteString(labelStyle.Render(fmt.Sprintf("y%d", i)))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%10.6f", v)))
		b.WriteString("\n")
	}

	switch {
	case m.invalid:
		b.WriteString("\n" + errorStyle.Render("state diverged (NaN/Inf)"))
	case m.done:
		b.WriteString("\n" + doneStyle.Render("reached t_end"))
	case !m.running:
		b.WriteString("\n" + pausedStyle.Render("paused"))
	}

	b.WriteString(helpStyle.Render("\n\nspace pause · r restart · q quit"))
	return b.String()
}

// Run starts the live view and blocks until the user quits.
func Run(m *models.Model, st integrators.Stepper, dt float64, fps int) error {
	p := tea.NewProgram(NewModel(m, st, dt, fps))
	_, err := p.Run()
	return err
}
