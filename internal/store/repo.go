package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match when non-empty
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM calls sharing a purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM calls served by one provider and model.
type ModelUsage struct {
	Provider     string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and reads back LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns the event with the given ID, or nil if none exists.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// GenerationRecord is one completed generate, review and refine run.
// Result holds the response payload exactly as it was sent to the client.
type GenerationRecord struct {
	ID           string
	Sequence     int64
	CreatedAt    time.Time
	Grade        string
	Topic        string
	ReviewStatus string
	Refined      bool
	Model        string
	LatencyMs    int64
	Result       json.RawMessage
}

// GenerationRepo persists pipeline results.
type GenerationRepo interface {
	// Save stores rec. ID must be unique; Sequence and CreatedAt are
	// assigned by the store when zero.
	Save(ctx context.Context, rec *GenerationRecord) error

	// List returns the most recent records, newest first.
	List(ctx context.Context, limit int) ([]GenerationRecord, error)

	// Get returns the record with the given ID, or nil if none exists.
	Get(ctx context.Context, id string) (*GenerationRecord, error)
}
