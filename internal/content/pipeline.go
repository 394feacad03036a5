package content

import (
	"context"
	"log/slog"
	"strings"

	"github.com/abhisek/eduagent/internal/llm"
)

// Pipeline runs generate, review and at most one refinement.
type Pipeline struct {
	generator *Generator
	reviewer  *Reviewer
}

// NewPipeline wires a Generator and Reviewer to the same provider.
func NewPipeline(provider llm.Provider, cfg Config) *Pipeline {
	return &Pipeline{
		generator: NewGenerator(provider, cfg),
		reviewer:  NewReviewer(provider, cfg),
	}
}

// Run produces content for topic at grade and reviews it. A "fail" verdict
// regenerates once with the reviewer's feedback; the refinement is not
// reviewed again.
func (p *Pipeline) Run(ctx context.Context, grade Grade, topic string) (*Result, error) {
	draft, err := p.generator.Generate(ctx, grade, topic, "")
	if err != nil {
		return nil, err
	}

	review, err := p.reviewer.Review(ctx, draft, grade)
	if err != nil {
		return nil, err
	}

	result := &Result{Generator: draft, Reviewer: review}
	slog.Info("content reviewed",
		"grade", string(grade),
		"topic", topic,
		"status", review.Status,
		"feedback_items", len(review.Feedback),
		"partial_parse", draft.PartialParse,
		"parse_error", draft.ParseError)

	if !review.Failed() {
		return result, nil
	}

	refined, err := p.generator.Generate(ctx, grade, topic, strings.Join(review.Feedback, "\n"))
	if err != nil {
		return nil, err
	}
	result.Refined = refined
	return result, nil
}
