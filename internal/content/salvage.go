package content

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/abhisek/eduagent/internal/repair"
)

// DefaultExplanation stands in when salvage finds no explanation value.
const DefaultExplanation = "Content generated but format was complex."

// ReviewerIrregularNote is the feedback attached when a review could not be read.
const ReviewerIrregularNote = "Note: Reviewer output format was irregular, but processing continued."

var (
	contentSuffixes = []string{`}`, `]}`, `"}]}`, `]}}}`}
	reviewSuffixes  = []string{`}`, `]}`, `"}}`}

	explanationOpen = regexp.MustCompile(`"explanation":\s*"`)
	mcqPattern      = regexp.MustCompile(`(?s)\{\s*"question":\s*"(.*?)".*?"options":\s*\[(.*?)\].*?"answer":\s*"(.*?)"\s*\}`)
)

// ParseContent turns generator output into Content. It never fails: text
// that yields no object is salvaged field by field when it mentions an
// explanation, and reported as a parse error otherwise.
func ParseContent(text string) *Content {
	text = repair.Clean(text)

	if obj, src, ok := repair.ObjectSource(text, "explanation", contentSuffixes); ok {
		return contentFromObject(obj, src)
	}

	if strings.Contains(text, "explanation") {
		return &Content{
			Explanation:  salvageExplanation(text),
			MCQs:         salvageMCQs(text),
			PartialParse: true,
		}
	}

	return &Content{RawResponse: text, ParseError: true}
}

// ParseReview turns reviewer output into a Review. Unreadable output passes
// with a note so a formatting slip never blocks the learner.
func ParseReview(text string) *Review {
	text = repair.Clean(text)

	if obj, ok := repair.Object(text, "status", reviewSuffixes); ok {
		return reviewFromObject(obj)
	}

	return &Review{
		Status:      StatusPass,
		Feedback:    []string{ReviewerIrregularNote},
		RawResponse: text,
	}
}

// salvageExplanation returns the text between `"explanation": "` and the
// next quote that is not directly preceded by a backslash.
func salvageExplanation(text string) string {
	loc := explanationOpen.FindStringIndex(text)
	if loc == nil {
		return DefaultExplanation
	}
	start := loc[1]
	for i := start; i < len(text); i++ {
		if text[i] == '"' && text[i-1] != '\\' {
			return text[start:i]
		}
	}
	return DefaultExplanation
}

func salvageMCQs(text string) []MCQ {
	matches := mcqPattern.FindAllStringSubmatch(text, -1)
	return lo.Map(matches, func(m []string, _ int) MCQ {
		return MCQ{
			Question: m[1],
			Options:  splitOptions(m[2]),
			Answer:   m[3],
		}
	})
}

func splitOptions(list string) []string {
	return lo.Map(strings.Split(list, ","), func(opt string, _ int) string {
		opt = strings.TrimSpace(opt)
		opt = strings.Trim(opt, `"`)
		return strings.Trim(opt, `'`)
	})
}
