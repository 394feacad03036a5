package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduagent/internal/ui/theme"
)

// PipelineSteps names the stages shown while content is produced.
var PipelineSteps = []string{"Input", "Generator", "Reviewer", "Refinement"}

// Steps renders a horizontal step indicator. Steps before active are
// done, the step at active is in progress, the rest are pending. An
// active index past the last step marks every step done.
type Steps struct {
	Labels []string
	Active int
}

// View renders the indicator.
func (s Steps) View() string {
	parts := make([]string, 0, len(s.Labels))
	for i, label := range s.Labels {
		switch {
		case i < s.Active:
			parts = append(parts, theme.StepDone.Render("✓ "+label))
		case i == s.Active:
			parts = append(parts, theme.StepActive.Render("● "+label))
		default:
			parts = append(parts, theme.StepPending.Render("○ "+label))
		}
	}
	sep := lipgloss.NewStyle().Foreground(theme.Border).Render(" ─ ")
	return strings.Join(parts, sep)
}
