package content

import (
	"context"

	"github.com/abhisek/eduagent/internal/llm"
)

// Generator writes grade-leveled explanations and questions.
type Generator struct {
	provider llm.Provider
	cfg      Config
}

// NewGenerator creates a Generator backed by provider.
func NewGenerator(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, cfg: cfg}
}

// Generate produces content on topic for grade. A non-empty feedback is
// appended as a refinement request. Only the model call can fail; any text
// the model returns becomes Content.
func (g *Generator) Generate(ctx context.Context, grade Grade, topic, feedback string) (*Content, error) {
	purpose := PurposeGenerate
	if feedback != "" {
		purpose = PurposeRefine
	}

	text, err := ask(ctx, g.provider, g.cfg, purpose, GeneratorPrompt(grade, topic, feedback), ContentSchema)
	if err != nil {
		return nil, err
	}
	return ParseContent(text), nil
}
