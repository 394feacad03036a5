// Package studio is the interactive terminal front end: a form for the
// topic and grade, a live view of the pipeline, and the saved history.
package studio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduagent/internal/content"
	"github.com/abhisek/eduagent/internal/store"
	"github.com/abhisek/eduagent/internal/ui/layout"
)

// Runner executes one generate, review and refine cycle.
type Runner interface {
	Run(ctx context.Context, grade content.Grade, topic string) (*content.Result, error)
}

// Options wires the studio to the pipeline and history.
type Options struct {
	Pipeline Runner

	// Generations stores finished runs. Nil disables history.
	Generations store.GenerationRepo

	// Model is shown in the header and recorded with each run.
	Model string
}

// deps is what screens share.
type deps struct {
	ctx  context.Context
	opts Options
}

// runAndRecord runs the pipeline and saves the result to history.
func (d *deps) runAndRecord(ctx context.Context, grade content.Grade, topic string) (*content.Envelope, error) {
	start := time.Now()
	res, err := d.opts.Pipeline.Run(ctx, grade, topic)
	if err != nil {
		return nil, err
	}
	env := content.NewEnvelope(res)

	if d.opts.Generations != nil {
		rec, err := env.Record(grade, topic, d.opts.Model, time.Since(start))
		if err == nil {
			err = d.opts.Generations.Save(d.ctx, rec)
		}
		if err != nil {
			slog.Warn("save generation", "id", env.ID, "error", err)
		}
	}
	return env, nil
}

// model is the root Bubble Tea model.
type model struct {
	router *router
	model  string
	width  int
	height int
}

func newModel(ctx context.Context, opts Options) model {
	d := &deps{ctx: ctx, opts: opts}
	return model{
		router: newRouter(newFormScreen(d)),
		model:  opts.Model,
	}
}

func (m model) Init() tea.Cmd {
	return m.router.active().Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m, m.router.update(msg)
}

func (m model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current terminal size.
func (m model) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.active()
	header := layout.RenderHeader(content.ProductName, active.Title(), m.model, m.width)
	hints := active.KeyHints()
	hints = append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := active.View(m.width, contentHeight)

	return layout.RenderFrame(header, body, footer, m.width, m.height)
}

// Run starts the studio and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	if opts.Pipeline == nil {
		return fmt.Errorf("studio: pipeline is required")
	}
	p := tea.NewProgram(newModel(ctx, opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("studio: %w", err)
	}
	return nil
}
