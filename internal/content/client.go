package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/abhisek/eduagent/internal/llm"
)

// Purposes recorded with each model call.
const (
	PurposeGenerate = "generate"
	PurposeRefine   = "refine"
	PurposeReview   = "review"
)

// Purposes lists every purpose in pipeline order.
func Purposes() []string {
	return []string{PurposeGenerate, PurposeReview, PurposeRefine}
}

// ask sends one prompt and returns the model's text. In structured mode a
// response the provider rejected for failing its schema or running out of
// tokens is still returned, so the repair chain gets a chance at it.
func ask(ctx context.Context, provider llm.Provider, cfg Config, purpose, prompt string, schema *llm.Schema) (string, error) {
	ctx = llm.WithPurpose(ctx, purpose)

	req := llm.Request{
		System:      SystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   cfg.MaxTokens,
		Temperature: lo.ToPtr(cfg.Temperature),
		TopP:        lo.ToPtr(cfg.TopP),
	}
	if cfg.Structured {
		req.Schema = schema
	}

	resp, err := provider.Generate(ctx, req)
	if err != nil {
		if raw, ok := llm.SalvageableContent(err); ok && cfg.Structured {
			slog.Warn("structured output rejected, repairing raw text",
				"purpose", purpose, "error", err)
			return string(raw), nil
		}
		return "", fmt.Errorf("%s: %w", purpose, err)
	}
	return resp.Text(), nil
}
