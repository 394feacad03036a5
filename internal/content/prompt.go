package content

import (
	"fmt"
	"strings"
)

// SystemPrompt is sent with every model call.
const SystemPrompt = "You are a precise educational content assistant. Always output valid JSON only, with no additional text, explanations, or markdown formatting. Start your response with { and end with }."

const generatorTemplate = `You are an educational content generator. Generate content for Grade %[1]s on "%[2]s".

LANGUAGE for Grade %[1]s: %[3]s

CRITICAL: Output ONLY valid JSON. No intro text, no markdown.

Format:
{
"explanation": "2 short paragraphs explaining the topic.",
"mcqs": [
{ "question": "Q1", "options": ["A) opt1", "B) opt2", "C) opt3", "D) opt4"], "answer": "A" },
{ "question": "Q2", "options": ["A) opt1", "B) opt2", "C) opt3", "D) opt4"], "answer": "B" },
{ "question": "Q3", "options": ["A) opt1", "B) opt2", "C) opt3", "D) opt4"], "answer": "C" }
]
}
`

const reviewerTemplate = `Review this Grade %[1]s educational content. Check: age-appropriateness, correctness, clarity.

Content:
%[2]s

CRITICAL: Output ONLY JSON. No intro, no markdown, no explanation. Just raw JSON:

{"status": "pass", "feedback": []}

OR if issues found:

{"status": "fail", "feedback": ["issue 1", "issue 2"]}`

// GeneratorPrompt builds the content request for topic at grade. A
// non-empty feedback turns it into a refinement request.
func GeneratorPrompt(grade Grade, topic, feedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, generatorTemplate, grade, topic, grade.Guidance())
	if feedback != "" {
		b.WriteString("\n\nRefinement Request: ")
		b.WriteString(feedback)
	}
	return b.String()
}

// ReviewerPrompt builds the review request for already-rendered content.
func ReviewerPrompt(grade Grade, contentJSON string) string {
	return fmt.Sprintf(reviewerTemplate, grade, contentJSON)
}

// Product identity shown by the web page, the API and the studio.
const (
	ProductName = "EduAgent AI"
	Tagline     = "Intelligent Educational Content Generation"
)
