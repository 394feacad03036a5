package studio

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/eduagent/internal/ui/layout"
)

// Screen is one page of the studio.
type Screen interface {
	// Init returns an initial command when the screen is first shown.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string

	// KeyHints lists the footer key hints.
	KeyHints() []layout.KeyHint
}

// pushScreenMsg asks the router to show a new screen.
type pushScreenMsg struct {
	screen Screen
}

// popScreenMsg asks the router to go back to the previous screen.
type popScreenMsg struct{}

func push(s Screen) tea.Cmd {
	return func() tea.Msg { return pushScreenMsg{screen: s} }
}

func pop() tea.Msg {
	return popScreenMsg{}
}

// router keeps the screen stack. The first screen is never popped.
type router struct {
	stack []Screen
}

func newRouter(initial Screen) *router {
	return &router{stack: []Screen{initial}}
}

func (r *router) active() Screen {
	return r.stack[len(r.stack)-1]
}

func (r *router) depth() int {
	return len(r.stack)
}

func (r *router) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pushScreenMsg:
		r.stack = append(r.stack, msg.screen)
		return msg.screen.Init()
	case popScreenMsg:
		if len(r.stack) > 1 {
			r.stack = r.stack[:len(r.stack)-1]
		}
		return nil
	}

	updated, cmd := r.active().Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}
