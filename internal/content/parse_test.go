package content

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContent_WellFormedRoundTrips(t *testing.T) {
	text := `{"explanation":"Plants make food.","mcqs":[{"question":"What?","options":["A) a","B) b","C) c","D) d"],"answer":"A","hint":"think"}],"source":"model","score":0.95}`

	c := ParseContent(text)
	assert.False(t, c.PartialParse)
	assert.False(t, c.ParseError)
	assert.Equal(t, "Plants make food.", c.Explanation)
	require.Len(t, c.MCQs, 1)
	assert.Equal(t, []string{"A) a", "B) b", "C) c", "D) d"}, c.MCQs[0].Options)
	assert.Equal(t, "think", c.MCQs[0].Extra["hint"])
	assert.Contains(t, c.Extra, "source")

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, text, string(out))
}

func TestParseContent_FencedAndDoubleEncoded(t *testing.T) {
	fenced := ParseContent("```json\n{\"explanation\":\"E\",\"mcqs\":[]}\n```")
	assert.Equal(t, "E", fenced.Explanation)

	double := ParseContent(`"{\"explanation\":\"E2\",\"mcqs\":[]}"`)
	assert.Equal(t, "E2", double.Explanation)
}

func TestParseContent_MissingTrailingBrace(t *testing.T) {
	c := ParseContent(`{"explanation":"Light helps plants grow.","mcqs":[{"question":"Q","options":["A) x","B) y"],"answer":"B"}]`)
	assert.False(t, c.PartialParse)
	assert.Equal(t, "Light helps plants grow.", c.Explanation)
	require.Len(t, c.MCQs, 1)
	assert.Equal(t, "B", c.MCQs[0].Answer)
}

func TestParseContent_ChattyPreamble(t *testing.T) {
	c := ParseContent(`Here is your content: {"explanation":"E","mcqs":[]} Enjoy!`)
	assert.Equal(t, "E", c.Explanation)
	assert.False(t, c.PartialParse)
}

func TestParseContent_Salvage(t *testing.T) {
	text := `{"explanation": "Water \"cycles\" forever.", "mcqs": [
{ "question": "Where does rain come from?", "options": ["A) Clouds", 'B) Rocks', "C) Trees"], "answer": "A" },
{ "question": "What is ice?", "options": ["A) Frozen water", "B) Gas"], "answer": "A" }
], broken`

	c := ParseContent(text)
	assert.True(t, c.PartialParse)
	assert.Equal(t, `Water \"cycles\" forever.`, c.Explanation)
	require.Len(t, c.MCQs, 2)
	assert.Equal(t, "Where does rain come from?", c.MCQs[0].Question)
	assert.Equal(t, []string{"A) Clouds", "B) Rocks", "C) Trees"}, c.MCQs[0].Options)
	assert.Equal(t, "A", c.MCQs[1].Answer)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, true, got["partial_parse"])
	assert.Len(t, got["mcqs"], 2)
}

func TestParseContent_SalvageDefaults(t *testing.T) {
	c := ParseContent(`The explanation is that plants are green`)
	assert.True(t, c.PartialParse)
	assert.Equal(t, DefaultExplanation, c.Explanation)
	assert.Empty(t, c.MCQs)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"explanation":"Content generated but format was complex.","mcqs":[],"partial_parse":true}`, string(out))
}

func TestParseContent_ParseError(t *testing.T) {
	c := ParseContent("```\nI'm sorry, I can't do that.\n```")
	assert.True(t, c.ParseError)
	assert.Equal(t, "I'm sorry, I can't do that.", c.RawResponse)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw_response":"I'm sorry, I can't do that.","parse_error":true}`, string(out))
}

func TestParseContent_LooseTypes(t *testing.T) {
	c := ParseContent(`{"explanation":"E","mcqs":[{"question":"Q","options":"A) only","answer":1}]}`)
	require.Len(t, c.MCQs, 1)
	assert.Equal(t, []string{"A) only"}, c.MCQs[0].Options)
	assert.Equal(t, "1", c.MCQs[0].Answer)
}

func TestParseReview(t *testing.T) {
	t.Run("pass", func(t *testing.T) {
		r := ParseReview(`{"status": "pass", "feedback": []}`)
		assert.Equal(t, StatusPass, r.Status)
		assert.False(t, r.Failed())
		out, err := json.Marshal(r)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"pass","feedback":[]}`, string(out))
	})

	t.Run("fail repaired", func(t *testing.T) {
		r := ParseReview(`{"status": "fail", "feedback": ["Too hard", "Q2 answer is wrong"`)
		assert.True(t, r.Failed())
		assert.Equal(t, []string{"Too hard", "Q2 answer is wrong"}, r.Feedback)
	})

	t.Run("only exact fail refines", func(t *testing.T) {
		assert.False(t, ParseReview(`{"status": "FAIL", "feedback": ["x"]}`).Failed())
		assert.False(t, ParseReview(`{"status": "failed", "feedback": ["x"]}`).Failed())
	})

	t.Run("unparseable defaults to pass", func(t *testing.T) {
		r := ParseReview("The content looks great to me!")
		assert.Equal(t, StatusPass, r.Status)
		assert.Equal(t, []string{ReviewerIrregularNote}, r.Feedback)
		assert.Equal(t, "The content looks great to me!", r.RawResponse)

		out, err := json.Marshal(r)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"pass","feedback":["Note: Reviewer output format was irregular, but processing continued."],"raw_response":"The content looks great to me!"}`, string(out))
	})

	t.Run("structured feedback kept as text", func(t *testing.T) {
		r := ParseReview(`{"status":"fail","feedback":[{"issue":"too long"}]}`)
		assert.Equal(t, []string{`{"issue":"too long"}`}, r.Feedback)
	})
}

func TestResultJSON(t *testing.T) {
	res := &Result{
		Generator: ParseContent(`{"explanation":"E","mcqs":[]}`),
		Reviewer:  ParseReview(`{"status":"pass","feedback":[]}`),
	}
	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"generator":{"explanation":"E","mcqs":[]},"reviewer":{"status":"pass","feedback":[]},"refined":null}`, string(out))

	var back Result
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "E", back.Final().Explanation)
	assert.Nil(t, back.Refined)
}

func TestContentReviewText(t *testing.T) {
	t.Run("keeps the model's key order", func(t *testing.T) {
		c := ParseContent(`{"mcqs":[{"question":"Où?","options":["A) ici"],"answer":"A"}],"explanation":"Les marées"}`)
		text, err := c.ReviewText()
		require.NoError(t, err)
		assert.Equal(t, "{\n"+
			"  \"mcqs\": [\n"+
			"    {\n"+
			"      \"question\": \"O\\u00f9?\",\n"+
			"      \"options\": [\n"+
			"        \"A) ici\"\n"+
			"      ],\n"+
			"      \"answer\": \"A\"\n"+
			"    }\n"+
			"  ],\n"+
			"  \"explanation\": \"Les mar\\u00e9es\"\n"+
			"}", text)
	})

	t.Run("salvaged content in build order", func(t *testing.T) {
		c := ParseContent(`{"explanation": "Water cycles.", "mcqs": [{"question": "What?", "options": ['A) rain', 'B) sun'], "answer": "A"}], broken`)
		require.True(t, c.PartialParse)
		text, err := c.ReviewText()
		require.NoError(t, err)
		assert.Less(t, strings.Index(text, `"question"`), strings.Index(text, `"options"`))
		assert.Less(t, strings.Index(text, `"options"`), strings.Index(text, `"answer"`))
		assert.Contains(t, text, `"partial_parse": true`)
	})

	t.Run("parse error", func(t *testing.T) {
		c := ParseContent("no json here")
		text, err := c.ReviewText()
		require.NoError(t, err)
		assert.Less(t, strings.Index(text, `"raw_response"`), strings.Index(text, `"parse_error"`))
	})
}
