package studio

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduagent/internal/content"
	"github.com/abhisek/eduagent/internal/store"
	"github.com/abhisek/eduagent/internal/ui/layout"
	"github.com/abhisek/eduagent/internal/ui/theme"
)

const historyLimit = 50

type historyLoadedMsg struct {
	records []store.GenerationRecord
	err     error
}

// historyScreen lists past runs, newest first.
type historyScreen struct {
	deps     *deps
	records  []store.GenerationRecord
	selected int
	offset   int
	loaded   bool
	errMsg   string
}

var _ Screen = (*historyScreen)(nil)

func newHistoryScreen(d *deps) *historyScreen {
	return &historyScreen{deps: d}
}

func (s *historyScreen) Init() tea.Cmd {
	return func() tea.Msg {
		records, err := s.deps.opts.Generations.List(s.deps.ctx, historyLimit)
		return historyLoadedMsg{records: records, err: err}
	}
}

func (s *historyScreen) Title() string {
	return "History"
}

func (s *historyScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *historyScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.err != nil {
			s.errMsg = msg.err.Error()
		} else {
			s.records = msg.records
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, pop
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
		case "enter":
			return s, s.open()
		}
	}
	return s, nil
}

// open shows the selected run.
func (s *historyScreen) open() tea.Cmd {
	if s.selected >= len(s.records) {
		return nil
	}
	rec := s.records[s.selected]
	env, err := content.DecodeEnvelope(rec.Result)
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	return push(newStoredScreen(s.deps, content.Grade(rec.Grade), rec.Topic, env))
}

func (s *historyScreen) View(width, height int) string {
	centered := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return centered.Foreground(theme.Error).Render("\n\nError: " + s.errMsg)
	}
	if !s.loaded {
		return centered.Foreground(theme.TextDim).Render("\n\nLoading history...")
	}
	if len(s.records) == 0 {
		return centered.Foreground(theme.TextDim).Italic(true).
			Render("\n\nNo lessons yet. Generate one first!")
	}

	visible := max(height-2, 1)
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+visible {
		s.offset = s.selected - visible + 1
	}
	end := min(s.offset+visible, len(s.records))

	var b strings.Builder
	b.WriteString("\n")
	for i := s.offset; i < end; i++ {
		rec := s.records[i]
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		status := strings.ToUpper(rec.ReviewStatus)
		if rec.Refined {
			status += " → refined"
		}
		line := fmt.Sprintf("%s%s  Grade %-3s %-32s %s",
			prefix, rec.CreatedAt.Local().Format("Jan 02 15:04"), rec.Grade, truncate(rec.Topic, 32), status)

		style := theme.Body
		if i == s.selected {
			style = theme.Selected
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
