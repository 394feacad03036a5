package studio

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduagent/internal/content"
	"github.com/abhisek/eduagent/internal/ui/components"
	"github.com/abhisek/eduagent/internal/ui/layout"
	"github.com/abhisek/eduagent/internal/ui/theme"
)

// runDoneMsg carries the outcome of a pipeline run.
type runDoneMsg struct {
	env *content.Envelope
	err error
}

// runScreen runs the pipeline and then shows the result cards. It also
// shows stored runs, in which case nothing is run.
type runScreen struct {
	deps   *deps
	grade  content.Grade
	topic  string
	cancel context.CancelFunc

	spinner spinner.Model
	running bool
	env     *content.Envelope
	err     error
	offset  int
}

var _ Screen = (*runScreen)(nil)

func newRunScreen(d *deps, grade content.Grade, topic string) *runScreen {
	return &runScreen{
		deps:    d,
		grade:   grade,
		topic:   topic,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.StepActive)),
		running: true,
	}
}

func newStoredScreen(d *deps, grade content.Grade, topic string, env *content.Envelope) *runScreen {
	return &runScreen{deps: d, grade: grade, topic: topic, env: env}
}

func (s *runScreen) Init() tea.Cmd {
	if !s.running {
		return nil
	}
	ctx, cancel := context.WithCancel(s.deps.ctx)
	s.cancel = cancel
	grade, topic := s.grade, s.topic
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		env, err := s.deps.runAndRecord(ctx, grade, topic)
		return runDoneMsg{env: env, err: err}
	})
}

func (s *runScreen) Title() string {
	return fmt.Sprintf("Grade %s · %s", s.grade, s.topic)
}

func (s *runScreen) KeyHints() []layout.KeyHint {
	if s.running {
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *runScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case runDoneMsg:
		s.running = false
		s.env, s.err = msg.env, msg.err
		return s, nil

	case spinner.TickMsg:
		if !s.running {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			if s.cancel != nil {
				s.cancel()
			}
			return s, pop
		case "up", "k":
			s.offset--
		case "down", "j":
			s.offset++
		case "pgup":
			s.offset -= 10
		case "pgdown", "space":
			s.offset += 10
		case "home", "g":
			s.offset = 0
		}
	}
	return s, nil
}

func (s *runScreen) View(width, height int) string {
	cardWidth := min(width-2, 100)

	if s.running {
		steps := components.Steps{Labels: components.PipelineSteps, Active: 1}
		body := s.spinner.View() + " " + theme.Body.Render("Generating, reviewing and refining...") +
			"\n\n" + steps.View()
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
	}

	if s.err != nil {
		msg := theme.ErrorText.Render("Error: "+s.err.Error()) + "\n\n" +
			theme.Hint.Render("Press Esc to go back and try again.")
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Width(cardWidth).Render(msg))
	}

	var b strings.Builder
	done := len(components.PipelineSteps)
	if s.env.Refined == nil {
		done--
	}
	b.WriteString(components.Steps{Labels: components.PipelineSteps[:done], Active: done}.View())
	b.WriteString("\n")
	b.WriteString(components.ResultCards(s.env.Result, cardWidth))

	var view string
	view, s.offset = layout.Window(b.String(), s.offset, height)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, view)
}
