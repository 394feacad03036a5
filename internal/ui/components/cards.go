package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduagent/internal/content"
	"github.com/abhisek/eduagent/internal/ui/theme"
)

// ContentCard renders an explanation and its questions inside a card.
// The option matching the answer letter is highlighted.
func ContentCard(title string, c *content.Content, width int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(title))
	b.WriteString("\n\n")

	switch {
	case c == nil:
		b.WriteString(theme.Hint.Render("No content."))
	case c.ParseError:
		b.WriteString(theme.Warning.Render("The model's answer could not be read as content. Raw response:"))
		b.WriteString("\n")
		b.WriteString(theme.Body.Render(c.RawResponse))
	default:
		if c.PartialParse {
			b.WriteString(theme.Warning.Render("Recovered from a malformed response."))
			b.WriteString("\n\n")
		}
		b.WriteString(theme.SectionTitle.Render("Explanation"))
		b.WriteString("\n")
		b.WriteString(theme.Body.Render(c.Explanation))

		if len(c.MCQs) > 0 {
			b.WriteString("\n\n")
			b.WriteString(theme.SectionTitle.Render("Questions"))
			for i, q := range c.MCQs {
				b.WriteString("\n\n")
				b.WriteString(renderMCQ(i+1, q))
			}
		}
	}

	return card(b.String(), width)
}

func renderMCQ(n int, q content.MCQ) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
		Render(fmt.Sprintf("%d. %s", n, q.Question)))
	for _, opt := range q.Options {
		b.WriteString("\n   ")
		if IsAnswer(opt, q.Answer) {
			b.WriteString(theme.Correct.Render(opt + "  ✓"))
		} else {
			b.WriteString(theme.Body.Render(opt))
		}
	}
	return b.String()
}

// IsAnswer reports whether option is the one named by answer: either the
// same text, or a label such as "B) ..." whose letter equals answer.
func IsAnswer(option, answer string) bool {
	option = strings.TrimSpace(option)
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	if strings.EqualFold(option, answer) {
		return true
	}
	rest, ok := strings.CutPrefix(option, answer)
	if !ok {
		return false
	}
	return rest == "" || strings.ContainsAny(rest[:1], ").: ")
}

// ReviewCard renders the reviewer's verdict and feedback.
func ReviewCard(r *content.Review, width int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Review"))
	b.WriteString("  ")
	if r.Failed() {
		b.WriteString(theme.FailBadge.Render("FAIL"))
	} else {
		b.WriteString(theme.PassBadge.Render(strings.ToUpper(statusOrPass(r))))
	}
	b.WriteString("\n\n")

	if r == nil || len(r.Feedback) == 0 {
		b.WriteString(theme.Hint.Render("No issues found."))
	} else {
		for i, f := range r.Feedback {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(theme.Warning.Render("• "))
			b.WriteString(theme.Body.Render(f))
		}
	}

	return card(b.String(), width)
}

func statusOrPass(r *content.Review) string {
	if r == nil || r.Status == "" {
		return content.StatusPass
	}
	return r.Status
}

// ResultCards renders a full run: the draft, its review and the
// refinement when there is one.
func ResultCards(res *content.Result, width int) string {
	cards := []string{
		ContentCard("Generated Content", res.Generator, width),
		ReviewCard(res.Reviewer, width),
	}
	if res.Refined != nil {
		cards = append(cards, ContentCard("Refined Content", res.Refined, width))
	}
	return strings.Join(cards, "\n")
}

func card(body string, width int) string {
	style := theme.Card
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(body)
}
