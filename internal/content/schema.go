package content

import "github.com/abhisek/eduagent/internal/llm"

// ContentSchema describes generator output for providers with native
// structured output.
var ContentSchema = &llm.Schema{
	Name:        "educational-content",
	Description: "A short explanation of a topic with multiple-choice questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "Two short paragraphs explaining the topic",
			},
			"mcqs": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": `Four options labelled "A) " to "D) "`,
						},
						"answer": map[string]any{
							"type": "string",
							"enum": []any{"A", "B", "C", "D"},
						},
					},
					"required":             []any{"question", "options", "answer"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"explanation", "mcqs"},
		"additionalProperties": false,
	},
}

// ReviewSchema describes reviewer output.
var ReviewSchema = &llm.Schema{
	Name:        "content-review",
	Description: "A pass or fail verdict with the issues found",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{
				"type": "string",
				"enum": []any{StatusPass, StatusFail},
			},
			"feedback": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []any{"status", "feedback"},
		"additionalProperties": false,
	},
}
