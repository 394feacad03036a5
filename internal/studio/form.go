package studio

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduagent/internal/content"
	"github.com/abhisek/eduagent/internal/ui/components"
	"github.com/abhisek/eduagent/internal/ui/layout"
	"github.com/abhisek/eduagent/internal/ui/theme"
)

const (
	fieldGrade = iota
	fieldTopic
)

// formScreen collects the grade and topic.
type formScreen struct {
	deps   *deps
	fields [2]components.TextInput
	focus  int
}

var _ Screen = (*formScreen)(nil)

func newFormScreen(d *deps) *formScreen {
	grade := components.NewTextInput("Grade (1-12)", "4", true, 2)
	grade.SetValue(string(content.DefaultGrade))
	topic := components.NewTextInput("Topic", "e.g. Photosynthesis", false, 200)

	return &formScreen{
		deps:   d,
		fields: [2]components.TextInput{grade, topic},
		focus:  fieldTopic,
	}
}

func (s *formScreen) Init() tea.Cmd {
	return s.fields[s.focus].Focus()
}

func (s *formScreen) Title() string {
	return "New Lesson"
}

func (s *formScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Generate"},
	}
	if s.deps.opts.Generations != nil {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "History"})
	}
	return hints
}

func (s *formScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "tab", "shift+tab", "up", "down":
			return s, s.setFocus(1 - s.focus)
		case "ctrl+r":
			if s.deps.opts.Generations == nil {
				return s, nil
			}
			return s, push(newHistoryScreen(s.deps))
		case "enter":
			if s.focus == fieldGrade {
				return s, s.setFocus(fieldTopic)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *formScreen) setFocus(i int) tea.Cmd {
	s.fields[s.focus].Blur()
	s.focus = i
	return s.fields[i].Focus()
}

// submit validates the form and starts a run.
func (s *formScreen) submit() tea.Cmd {
	s.fields[fieldGrade].Err = ""
	s.fields[fieldTopic].Err = ""

	topic := strings.TrimSpace(s.fields[fieldTopic].Value())
	if topic == "" {
		s.fields[fieldTopic].Err = "Please enter a topic"
		return nil
	}
	gradeText := strings.TrimSpace(s.fields[fieldGrade].Value())
	if n, err := strconv.Atoi(gradeText); err != nil || n < 1 || n > 12 {
		s.fields[fieldGrade].Err = "Please enter a valid grade (1-12)"
		return s.setFocus(fieldGrade)
	}

	return push(newRunScreen(s.deps, content.Grade(gradeText), topic))
}

func (s *formScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(content.ProductName))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(content.Tagline))
	b.WriteString("\n\n")
	b.WriteString(s.fields[fieldGrade].View())
	b.WriteString("\n\n")
	b.WriteString(s.fields[fieldTopic].View())
	b.WriteString("\n\n")
	b.WriteString(components.Steps{Labels: components.PipelineSteps, Active: 0}.View())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Render(b.String()))
}
