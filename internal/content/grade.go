package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// DefaultGrade is used when a request names no grade, and its guidance is
// used for any grade outside the table.
const DefaultGrade Grade = "4"

var gradeGuidance = map[int]string{
	1:  "Use very simple words (1-2 syllables). Short sentences (5-8 words). Use fun examples.",
	2:  "Use simple words. Short sentences (6-10 words). Relate to everyday objects.",
	3:  "Use familiar vocabulary. Sentences can be slightly longer. Include relatable examples.",
	4:  "Use grade-appropriate vocabulary. Clear explanations. Real-world connections.",
	5:  "Slightly more advanced vocabulary. Can introduce subject-specific terms with definitions.",
	6:  "Can use more complex sentence structures. Introduce formal academic language.",
	7:  "Academic vocabulary appropriate. Can handle abstract concepts.",
	8:  "Advanced academic language. Complex reasoning and examples.",
	9:  "High school level vocabulary. Sophisticated explanations.",
	10: "Advanced concepts. Formal academic writing.",
	11: "Pre-college level complexity.",
	12: "College-prep level content.",
}

// Grade is a school grade exactly as the caller wrote it. Prompts print the
// label; the numeric level only selects language guidance.
type Grade string

// Level returns the grade as an integer when the label is made only of
// ASCII digits, and 4 otherwise.
func (g Grade) Level() int {
	if g == "" {
		return 4
	}
	for i := 0; i < len(g); i++ {
		if g[i] < '0' || g[i] > '9' {
			return 4
		}
	}
	n, err := strconv.Atoi(string(g))
	if err != nil {
		return 4
	}
	return n
}

// Guidance returns the language guidance for the grade's level, falling
// back to grade 4 outside 1-12.
func (g Grade) Guidance() string {
	if s, ok := gradeGuidance[g.Level()]; ok {
		return s
	}
	return gradeGuidance[4]
}

// UnmarshalJSON accepts a JSON string, number or boolean and keeps its text
// as the label. null leaves the grade unchanged.
func (g *Grade) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*g = Grade(s)
	case '{', '[':
		return fmt.Errorf("grade must be a number or a string")
	default:
		*g = Grade(b)
	}
	return nil
}

// GradeLevels lists the grades that have dedicated guidance.
func GradeLevels() []int {
	levels := make([]int, 0, len(gradeGuidance))
	for i := 1; i <= 12; i++ {
		levels = append(levels, i)
	}
	return levels
}
