package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"resty.dev/v3"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaProvider implements Provider against a local Ollama server's
// /api/chat endpoint.
type OllamaProvider struct {
	client *resty.Client
	model  string
}

// NewOllamaProvider creates a new Ollama provider. No credentials are
// required; the server is assumed to be reachable at cfg.BaseURL.
func NewOllamaProvider(cfg OllamaConfig) (*OllamaProvider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetHeader("Content-Type", "application/json")

	return &OllamaProvider{
		client: client,
		model:  cfg.Model,
	}, nil
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   any             `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaChatResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	DoneReason      string        `json:"done_reason"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}

type ollamaErrorBody struct {
	Error string `json:"error"`
}

type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	body := ollamaChatRequest{
		Model:    p.model,
		Messages: buildOllamaMessages(req),
		Stream:   false,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			TopP:        req.TopP,
			NumPredict:  req.MaxTokens,
		},
	}
	if req.Schema != nil {
		body.Format = req.Schema.Definition
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&ollamaChatResponse{}).
		Post("/api/chat")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ErrProviderUnavailable{Err: err}
	}
	if resp.IsError() {
		return nil, mapOllamaError(resp.StatusCode(), resp.String())
	}

	chat, ok := resp.Result().(*ollamaChatResponse)
	if !ok || chat == nil {
		return nil, &ErrInvalidResponse{
			Content: json.RawMessage(resp.String()),
			Err:     fmt.Errorf("unexpected Ollama response body"),
		}
	}

	content := json.RawMessage(chat.Message.Content)
	stop := mapOllamaStopReason(chat.DoneReason)

	if err := checkStructured(req.Schema, stop, content); err != nil {
		return nil, err
	}

	model := chat.Model
	if model == "" {
		model = p.model
	}

	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  chat.PromptEvalCount,
			OutputTokens: chat.EvalCount,
			TotalTokens:  chat.PromptEvalCount + chat.EvalCount,
		},
		Model:      model,
		StopReason: stop,
	}, nil
}

func (p *OllamaProvider) ModelID() string {
	return p.model
}

// Ping checks that the Ollama server answers and has the configured model
// pulled. A bare model name matches its ":latest" tag.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&ollamaTags{}).
		Get("/api/tags")
	if err != nil {
		return &ErrProviderUnavailable{Err: err}
	}
	if resp.IsError() {
		return mapOllamaError(resp.StatusCode(), resp.String())
	}

	tags, _ := resp.Result().(*ollamaTags)
	if tags == nil {
		return &ErrProviderUnavailable{Err: fmt.Errorf("empty model list")}
	}
	for _, m := range tags.Models {
		if m.Name == p.model || m.Name == p.model+":latest" {
			return nil
		}
	}
	return fmt.Errorf("model %q is not available on the Ollama server (try: ollama pull %s)", p.model, p.model)
}

// Close releases the underlying HTTP client.
func (p *OllamaProvider) Close() error {
	return p.client.Close()
}

func buildOllamaMessages(req Request) []ollamaMessage {
	messages := make([]ollamaMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, ollamaMessage{Role: role, Content: m.Content})
	}
	return messages
}

func mapOllamaStopReason(reason string) string {
	switch reason {
	case "length":
		return "max_tokens"
	default:
		return "end"
	}
}

func mapOllamaError(status int, body string) error {
	msg := body
	var eb ollamaErrorBody
	if json.Unmarshal([]byte(body), &eb) == nil && eb.Error != "" {
		msg = eb.Error
	}
	err := fmt.Errorf("ollama: HTTP %d: %s", status, msg)

	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
