package content

import (
	"encoding/json"
	"maps"

	"github.com/abhisek/eduagent/internal/repair"
)

// MCQ is one multiple-choice question.
type MCQ struct {
	Question string         `mapstructure:"question" json:"question" yaml:"question"`
	Options  []string       `mapstructure:"options" json:"options" yaml:"options"`
	Answer   string         `mapstructure:"answer" json:"answer" yaml:"answer"`
	Extra    map[string]any `mapstructure:",remain" json:"-" yaml:"-"`
}

// Content is the generator's output: an explanation and its questions.
//
// Content parsed from a model keeps the object exactly as the model sent
// it and marshals back to that object, unknown keys included. When no
// object could be recovered, ParseError is set and RawResponse holds the
// cleaned model text.
type Content struct {
	Explanation  string         `mapstructure:"explanation" yaml:"explanation,omitempty"`
	MCQs         []MCQ          `mapstructure:"mcqs" yaml:"mcqs,omitempty"`
	PartialParse bool           `mapstructure:"partial_parse" yaml:"partial_parse,omitempty"`
	ParseError   bool           `mapstructure:"parse_error" yaml:"parse_error,omitempty"`
	RawResponse  string         `mapstructure:"raw_response" yaml:"raw_response,omitempty"`
	Extra        map[string]any `mapstructure:",remain" yaml:"extra,omitempty"`

	raw map[string]any
	src string
}

// MarshalJSON emits the model's own object when there is one.
func (c *Content) MarshalJSON() ([]byte, error) {
	if c.raw != nil {
		return json.Marshal(c.raw)
	}
	return json.Marshal(c.Map())
}

// UnmarshalJSON reads content back from its JSON form, as stored in the
// generation history.
func (c *Content) UnmarshalJSON(b []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*c = *contentFromObject(obj, string(b))
	return nil
}

// Map returns the content as a JSON object.
func (c *Content) Map() map[string]any {
	if c.raw != nil {
		return maps.Clone(c.raw)
	}
	if c.ParseError {
		return map[string]any{
			"raw_response": c.RawResponse,
			"parse_error":  true,
		}
	}

	out := make(map[string]any, len(c.Extra)+3)
	maps.Copy(out, c.Extra)
	mcqs := make([]map[string]any, 0, len(c.MCQs))
	for _, q := range c.MCQs {
		m := make(map[string]any, len(q.Extra)+3)
		maps.Copy(m, q.Extra)
		m["question"] = q.Question
		m["options"] = nonNil(q.Options)
		m["answer"] = q.Answer
		mcqs = append(mcqs, m)
	}
	out["explanation"] = c.Explanation
	out["mcqs"] = mcqs
	if c.PartialParse {
		out["partial_parse"] = true
	}
	return out
}

// ReviewText renders c for the reviewer prompt: two-space indented JSON,
// keys in the model's order, non-ASCII escaped.
func (c *Content) ReviewText() (string, error) {
	var (
		text string
		err  error
	)
	switch {
	case c.src != "":
		text, err = repair.IndentSource(c.src)
	case c.raw != nil:
		text, err = repair.Indent(c.raw)
	default:
		text, err = repair.Indent(c.view())
	}
	if err != nil {
		return "", err
	}
	return repair.ASCII(text), nil
}

type mcqView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

type contentView struct {
	Explanation  string    `json:"explanation"`
	MCQs         []mcqView `json:"mcqs"`
	PartialParse bool      `json:"partial_parse,omitempty"`
}

type parseErrorView struct {
	RawResponse string `json:"raw_response"`
	ParseError  bool   `json:"parse_error"`
}

// view orders fields the way they are built: explanation before
// questions, question before options before answer.
func (c *Content) view() any {
	if c.ParseError {
		return parseErrorView{RawResponse: c.RawResponse, ParseError: true}
	}
	v := contentView{Explanation: c.Explanation, MCQs: []mcqView{}, PartialParse: c.PartialParse}
	for _, q := range c.MCQs {
		v.MCQs = append(v.MCQs, mcqView{Question: q.Question, Options: nonNil(q.Options), Answer: q.Answer})
	}
	return v
}

// Review is the reviewer's verdict on a piece of content.
type Review struct {
	Status      string         `mapstructure:"status" yaml:"status"`
	Feedback    []string       `mapstructure:"feedback" yaml:"feedback"`
	RawResponse string         `mapstructure:"raw_response" yaml:"raw_response,omitempty"`
	Extra       map[string]any `mapstructure:",remain" yaml:"extra,omitempty"`

	raw map[string]any
}

// Failed reports whether the reviewer asked for a refinement. Only the
// exact status "fail" counts.
func (r *Review) Failed() bool {
	return r != nil && r.Status == StatusFail
}

func (r *Review) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return json.Marshal(r.raw)
	}
	out := make(map[string]any, len(r.Extra)+3)
	maps.Copy(out, r.Extra)
	out["status"] = r.Status
	out["feedback"] = nonNil(r.Feedback)
	if r.RawResponse != "" {
		out["raw_response"] = r.RawResponse
	}
	return json.Marshal(out)
}

func (r *Review) UnmarshalJSON(b []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*r = *reviewFromObject(obj)
	return nil
}

// Review verdicts.
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// Result is one full pipeline run. Refined is nil unless the review failed.
type Result struct {
	Generator *Content `json:"generator" yaml:"generator"`
	Reviewer  *Review  `json:"reviewer" yaml:"reviewer"`
	Refined   *Content `json:"refined" yaml:"refined"`
}

// Final returns the content a learner should see: the refinement when
// there is one, the first draft otherwise.
func (r *Result) Final() *Content {
	if r.Refined != nil {
		return r.Refined
	}
	return r.Generator
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
