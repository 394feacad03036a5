package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOllamaProvider(t *testing.T, model string, handler http.HandlerFunc) *OllamaProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewOllamaProvider(OllamaConfig{BaseURL: server.URL + "/", Model: model})
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestOllamaProvider_HappyPath(t *testing.T) {
	var got ollamaChatRequest
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":             "llama3:latest",
			"message":           map[string]any{"role": "assistant", "content": "Here is the JSON: {\"explanation\":\"x\"}"},
			"done":              true,
			"done_reason":       "stop",
			"prompt_eval_count": 120,
			"eval_count":        340,
		})
	}

	p := newTestOllamaProvider(t, "llama3", handler)
	resp, err := p.Generate(context.Background(), Request{
		System:      "You are a precise educational content assistant.",
		Messages:    []Message{{Role: RoleUser, Content: "Generate content for Grade 3."}},
		MaxTokens:   2048,
		Temperature: lo.ToPtr(0.3),
		TopP:        lo.ToPtr(0.9),
	})
	require.NoError(t, err)

	assert.Equal(t, "Here is the JSON: {\"explanation\":\"x\"}", resp.Text(), "raw text must not be validated")
	assert.Equal(t, "llama3:latest", resp.Model)
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, Usage{InputTokens: 120, OutputTokens: 340, TotalTokens: 460}, resp.Usage)

	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Nil(t, got.Format)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, ollamaOptions{Temperature: lo.ToPtr(0.3), TopP: lo.ToPtr(0.9), NumPredict: 2048}, got.Options)
}

func TestOllamaProvider_SendsZeroSampling(t *testing.T) {
	var body map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":       "llama3",
			"message":     map[string]any{"role": "assistant", "content": "{}"},
			"done":        true,
			"done_reason": "stop",
		})
	}

	p := newTestOllamaProvider(t, "llama3", handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:    []Message{{Role: RoleUser, Content: "Generate content for Grade 4."}},
		MaxTokens:   10,
		Temperature: lo.ToPtr(0.0),
		TopP:        lo.ToPtr(0.9),
	})
	require.NoError(t, err)

	options, ok := body["options"].(map[string]any)
	require.True(t, ok, "options missing from %v", body)
	assert.Contains(t, options, "temperature", "zero temperature must reach the server")
	assert.InDelta(t, 0.0, options["temperature"], 1e-9)
	assert.InDelta(t, 0.9, options["top_p"], 1e-9)
}

func TestOllamaProvider_OmitsUnsetSampling(t *testing.T) {
	var body map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":       "llama3",
			"message":     map[string]any{"role": "assistant", "content": "{}"},
			"done":        true,
			"done_reason": "stop",
		})
	}

	p := newTestOllamaProvider(t, "llama3", handler)
	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Generate content for Grade 4."}},
	})
	require.NoError(t, err)

	options, _ := body["options"].(map[string]any)
	assert.NotContains(t, options, "temperature")
	assert.NotContains(t, options, "top_p")
}

func TestOllamaProvider_StructuredOutput(t *testing.T) {
	var format any
	handler := func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		format = body["format"]

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":       "llama3",
			"message":     map[string]any{"role": "assistant", "content": `{"question":"Q","options":["A) a","B) b"],"answer":"A"}`},
			"done":        true,
			"done_reason": "stop",
		})
	}

	p := newTestOllamaProvider(t, "llama3", handler)
	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "q"}},
		Schema:   mcqSchema(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"question":"Q","options":["A) a","B) b"],"answer":"A"}`, resp.Text())

	schema, ok := format.(map[string]any)
	require.True(t, ok, "schema should be sent as the format field")
	assert.Equal(t, "object", schema["type"])
}

func TestOllamaProvider_TruncatedStructuredOutput(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"message":     map[string]any{"role": "assistant", "content": `{"question":"Q","opt`},
			"done":        true,
			"done_reason": "length",
		})
	}

	p := newTestOllamaProvider(t, "llama3", handler)
	_, err := p.Generate(context.Background(), Request{Schema: mcqSchema()})

	var maxTok *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &maxTok)
	assert.Equal(t, `{"question":"Q","opt`, string(maxTok.Content))
}

func TestOllamaProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"rate limited", http.StatusTooManyRequests, func(t *testing.T, err error) {
			var rl *ErrRateLimit
			assert.ErrorAs(t, err, &rl)
		}},
		{"model missing", http.StatusNotFound, func(t *testing.T, err error) {
			var unavail *ErrProviderUnavailable
			require.ErrorAs(t, err, &unavail)
			assert.Contains(t, err.Error(), `model "llama3" not found`)
		}},
		{"server error", http.StatusInternalServerError, func(t *testing.T, err error) {
			var unavail *ErrProviderUnavailable
			assert.ErrorAs(t, err, &unavail)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOllamaProvider(t, "llama3", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{"error": `model "llama3" not found, try pulling it first`})
			})
			_, err := p.Generate(context.Background(), Request{})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOllamaProvider_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	p, err := NewOllamaProvider(OllamaConfig{BaseURL: url, Model: "llama3"})
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail), "got %T", err)
}

func TestOllamaProvider_Ping(t *testing.T) {
	tags := func(names ...string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			models := make([]map[string]any, 0, len(names))
			for _, n := range names {
				models = append(models, map[string]any{"name": n})
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"models": models})
		}
	}

	t.Run("latest tag matches bare name", func(t *testing.T) {
		p := newTestOllamaProvider(t, "llama3", tags("mistral:7b", "llama3:latest"))
		assert.NoError(t, p.Ping(context.Background()))
	})

	t.Run("exact tag", func(t *testing.T) {
		p := newTestOllamaProvider(t, "llama3:8b", tags("llama3:8b"))
		assert.NoError(t, p.Ping(context.Background()))
	})

	t.Run("model not pulled", func(t *testing.T) {
		p := newTestOllamaProvider(t, "llama3", tags("mistral:7b"))
		err := p.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ollama pull llama3")
	})
}

func TestNewOllamaProvider_RequiresModel(t *testing.T) {
	_, err := NewOllamaProvider(OllamaConfig{})
	assert.Error(t, err)
}

func TestMapOllamaStopReason(t *testing.T) {
	assert.Equal(t, "max_tokens", mapOllamaStopReason("length"))
	assert.Equal(t, "end", mapOllamaStopReason("stop"))
	assert.Equal(t, "end", mapOllamaStopReason(""))
}
