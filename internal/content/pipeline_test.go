package content

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/eduagent/internal/llm"
)

const (
	draftJSON   = `{"explanation":"Draft explanation.","mcqs":[{"question":"Q1","options":["A) a","B) b","C) c","D) d"],"answer":"A"}]}`
	refinedJSON = `{"explanation":"Simpler explanation.","mcqs":[]}`
	passJSON    = `{"status": "pass", "feedback": []}`
	failJSON    = `{"status": "fail", "feedback": ["Too many big words", "Q1 needs a picture"]}`
)

func TestPipeline_PassSkipsRefinement(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(draftJSON), llm.MockText(passJSON))
	p := NewPipeline(mock, DefaultConfig())

	res, err := p.Run(context.Background(), "4", "Photosynthesis")
	require.NoError(t, err)

	assert.Equal(t, "Draft explanation.", res.Generator.Explanation)
	assert.Equal(t, StatusPass, res.Reviewer.Status)
	assert.Nil(t, res.Refined)
	assert.Equal(t, 2, mock.CallCount())
	assert.Equal(t, []string{PurposeGenerate, PurposeReview}, mock.Purposes)
}

func TestPipeline_FailRefinesExactlyOnce(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.SetPurposeResponse(PurposeGenerate, llm.MockText(draftJSON))
	mock.SetPurposeResponse(PurposeReview, llm.MockText(failJSON))
	mock.SetPurposeResponse(PurposeRefine, llm.MockText(refinedJSON))
	p := NewPipeline(mock, DefaultConfig())

	res, err := p.Run(context.Background(), "2", "Fractions")
	require.NoError(t, err)

	require.NotNil(t, res.Refined)
	assert.Equal(t, "Simpler explanation.", res.Refined.Explanation)
	assert.Same(t, res.Refined, res.Final())
	assert.Equal(t, 1, mock.CallsFor(PurposeRefine))
	assert.Equal(t, 1, mock.CallsFor(PurposeReview), "refined content is not reviewed again")
	assert.Equal(t, 3, mock.CallCount())

	refinePrompt := mock.Calls[2].Messages[0].Content
	assert.True(t, strings.HasSuffix(refinePrompt, "Refinement Request: Too many big words\nQ1 needs a picture"))
}

func TestPipeline_FailWithoutFeedback(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockText(draftJSON),
		llm.MockText(`{"status":"fail","feedback":[]}`),
		llm.MockText(refinedJSON),
	)
	res, err := NewPipeline(mock, DefaultConfig()).Run(context.Background(), "4", "Rain")
	require.NoError(t, err)

	require.NotNil(t, res.Refined)
	assert.Equal(t, 3, mock.CallCount())
	assert.NotContains(t, mock.Calls[2].Messages[0].Content, "Refinement Request")
}

func TestPipeline_RequestShape(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(draftJSON), llm.MockText(passJSON))
	_, err := NewPipeline(mock, DefaultConfig()).Run(context.Background(), "7", "Cells")
	require.NoError(t, err)

	gen := mock.Calls[0]
	assert.Equal(t, SystemPrompt, gen.System)
	assert.Equal(t, 2048, gen.MaxTokens)
	require.NotNil(t, gen.Temperature)
	require.NotNil(t, gen.TopP)
	assert.InDelta(t, 0.3, *gen.Temperature, 1e-9)
	assert.InDelta(t, 0.9, *gen.TopP, 1e-9)
	assert.Nil(t, gen.Schema)
	require.Len(t, gen.Messages, 1)
	assert.Equal(t, llm.RoleUser, gen.Messages[0].Role)
	assert.Contains(t, gen.Messages[0].Content, `Generate content for Grade 7 on "Cells".`)

	review := mock.Calls[1].Messages[0].Content
	assert.Contains(t, review, "Review this Grade 7 educational content.")
	assert.Contains(t, review, "  \"explanation\": \"Draft explanation.\"")
}

func TestPipeline_ReviewsPartialContent(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockText(`Sure! "explanation": "Half an answer`),
		llm.MockText(passJSON),
	)
	res, err := NewPipeline(mock, DefaultConfig()).Run(context.Background(), "4", "Magnets")
	require.NoError(t, err)

	assert.True(t, res.Generator.PartialParse)
	assert.Equal(t, DefaultExplanation, res.Generator.Explanation)
	assert.Contains(t, mock.Calls[1].Messages[0].Content, `"partial_parse": true`)
}

func TestPipeline_ModelErrorsPropagate(t *testing.T) {
	down := &llm.ErrProviderUnavailable{Err: errors.New("connection refused")}

	t.Run("generator", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Err: down})
		_, err := NewPipeline(mock, DefaultConfig()).Run(context.Background(), "4", "Stars")
		var unavail *llm.ErrProviderUnavailable
		require.ErrorAs(t, err, &unavail)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, 1, mock.CallCount())
	})

	t.Run("reviewer", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockText(draftJSON), llm.MockResponse{Err: down})
		_, err := NewPipeline(mock, DefaultConfig()).Run(context.Background(), "4", "Stars")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "review")
	})

	t.Run("refinement", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockText(draftJSON), llm.MockText(failJSON), llm.MockResponse{Err: down})
		_, err := NewPipeline(mock, DefaultConfig()).Run(context.Background(), "4", "Stars")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refine")
	})
}

func TestPipeline_StructuredModeRepairsRejectedOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Structured = true

	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrMaxTokensExceeded{Content: json.RawMessage(`{"explanation":"Cut short","mcqs":[]`)}},
		llm.MockResponse{Err: &llm.ErrInvalidResponse{Content: json.RawMessage(`{"status":"pass","feedback":"fine"}`), Err: errors.New("schema")}},
	)
	res, err := NewPipeline(mock, cfg).Run(context.Background(), "4", "Tides")
	require.NoError(t, err)

	assert.Equal(t, "Cut short", res.Generator.Explanation)
	assert.Equal(t, []string{"fine"}, res.Reviewer.Feedback)
	assert.Same(t, ContentSchema, mock.Calls[0].Schema)
	assert.Same(t, ReviewSchema, mock.Calls[1].Schema)
}

func TestPipeline_StructuredRefinementCalledOnceWithRetry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Structured = true

	rejected := llm.MockResponse{Err: &llm.ErrInvalidResponse{
		Content: json.RawMessage(`{"explanation":"Refined tides","mcqs":[]}`),
		Err:     errors.New("schema"),
	}}
	mock := llm.NewMockProvider(
		llm.MockText(draftJSON),
		llm.MockText(`{"status":"fail","feedback":["too short"]}`),
		rejected,
		rejected,
	)
	provider := llm.WithRetry(mock, llm.RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	})

	res, err := NewPipeline(provider, cfg).Run(context.Background(), "4", "Tides")
	require.NoError(t, err)

	assert.Equal(t, 3, mock.CallCount(), "one generate, one review, one refine")
	require.NotNil(t, res.Refined)
	assert.Equal(t, "Refined tides", res.Refined.Explanation)
}

func TestPipeline_RawModeDoesNotSalvageErrors(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrInvalidResponse{Content: json.RawMessage(`{}`), Err: errors.New("bad")}},
	)
	_, err := NewPipeline(mock, DefaultConfig()).Run(context.Background(), "4", "Tides")
	assert.Error(t, err)
}

func TestSeedDemo(t *testing.T) {
	mock := llm.NewMockProvider()
	SeedDemo(mock)

	res, err := NewPipeline(mock, DefaultConfig()).Run(context.Background(), "3", "Photosynthesis")
	require.NoError(t, err)
	assert.Len(t, res.Generator.MCQs, 3)
	assert.Equal(t, StatusPass, res.Reviewer.Status)
}
