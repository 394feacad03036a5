package llm

import "context"

type ctxKey int

const purposeKey ctxKey = iota

// WithPurpose labels the calls made with ctx, e.g. "generate" or "review".
// The label is recorded in the request log and drives MockProvider fallbacks.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
