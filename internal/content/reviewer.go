package content

import (
	"context"
	"fmt"

	"github.com/abhisek/eduagent/internal/llm"
)

// Reviewer checks content for age-appropriateness, correctness and clarity.
type Reviewer struct {
	provider llm.Provider
	cfg      Config
}

// NewReviewer creates a Reviewer backed by provider.
func NewReviewer(provider llm.Provider, cfg Config) *Reviewer {
	return &Reviewer{provider: provider, cfg: cfg}
}

// Review asks the model for a verdict on c. Only the model call can fail.
func (r *Reviewer) Review(ctx context.Context, c *Content, grade Grade) (*Review, error) {
	rendered, err := c.ReviewText()
	if err != nil {
		return nil, fmt.Errorf("render content for review: %w", err)
	}

	text, err := ask(ctx, r.provider, r.cfg, PurposeReview, ReviewerPrompt(grade, rendered), ReviewSchema)
	if err != nil {
		return nil, err
	}
	return ParseReview(text), nil
}
