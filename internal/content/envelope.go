package content

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/eduagent/internal/store"
)

// Envelope is a completed run as the API returns it and as the
// generation history stores it.
type Envelope struct {
	Success     bool   `json:"success"`
	ProductName string `json:"product_name"`
	ID          string `json:"id"`
	*Result
}

// NewEnvelope wraps res under a fresh ID.
func NewEnvelope(res *Result) *Envelope {
	return &Envelope{
		Success:     true,
		ProductName: ProductName,
		ID:          uuid.NewString(),
		Result:      res,
	}
}

// Record builds the history row for the envelope.
func (e *Envelope) Record(grade Grade, topic, model string, latency time.Duration) (*store.GenerationRecord, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode generation %s: %w", e.ID, err)
	}
	status := StatusPass
	if e.Reviewer != nil && e.Reviewer.Status != "" {
		status = e.Reviewer.Status
	}
	return &store.GenerationRecord{
		ID:           e.ID,
		Grade:        string(grade),
		Topic:        topic,
		ReviewStatus: status,
		Refined:      e.Refined != nil,
		Model:        model,
		LatencyMs:    latency.Milliseconds(),
		Result:       payload,
	}, nil
}

// DecodeEnvelope reads back a stored envelope.
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode generation: %w", err)
	}
	if e.Result == nil || e.Generator == nil {
		return nil, fmt.Errorf("decode generation: no generator output")
	}
	return &e, nil
}
