package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/eduagent/internal/content"
	"github.com/abhisek/eduagent/internal/llm"
	"github.com/abhisek/eduagent/internal/store"
)

// newPipeline builds the configured provider, logging each call to the
// store, and wires it into a content pipeline. The mock provider is
// seeded with demo answers so everything runs without a model.
func newPipeline(ctx context.Context, st *store.Store) (*content.Pipeline, llm.Provider, error) {
	provider, err := llm.NewProvider(ctx, appConfig.LLM, st.EventRepo())
	if err != nil {
		return nil, nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	if m, ok := provider.(*llm.MockProvider); ok {
		slog.Warn("using the mock LLM provider; responses are canned demo content")
		content.SeedDemo(m)
	}
	slog.Debug("LLM provider ready", "provider", appConfig.LLM.Provider, "model", provider.ModelID())
	return content.NewPipeline(provider, appConfig.Generation), provider, nil
}
