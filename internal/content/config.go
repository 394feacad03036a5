package content

// Config holds the sampling settings shared by every content call.
type Config struct {
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gt=0"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	TopP        float64 `mapstructure:"top_p" validate:"gte=0,lte=1"`

	// Structured attaches JSON Schemas to requests so providers that
	// support it constrain their output.
	Structured bool `mapstructure:"structured"`
}

// DefaultConfig returns the sampling settings the prompts were tuned with.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   2048,
		Temperature: 0.3,
		TopP:        0.9,
	}
}
