// Package repair turns unreliable model text into JSON objects.
//
// Models asked for "JSON only" still wrap answers in markdown fences, stop
// before the closing brackets, or chat before the opening brace. The helpers
// here undo those habits in a fixed order and never return an error: a
// caller either gets an object or falls back to its own default.
package repair

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

var (
	leadingFence  = regexp.MustCompile("^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// Clean trims whitespace and a surrounding markdown code fence.
func Clean(text string) string {
	text = strings.TrimSpace(text)
	text = leadingFence.ReplaceAllString(text, "")
	text = trailingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Decode parses text as strict JSON. A document that decodes to a string is
// decoded once more, since some models return their JSON double-encoded; if
// that second pass fails the string itself is the value.
//
// Numbers decode as json.Number so they re-encode exactly as sent.
func Decode(text string) (any, error) {
	v, _, err := decodeSource(text)
	return v, err
}

// decodeSource is Decode that also returns the JSON text the value came
// from: text itself, or the inner document of a double-encoded answer.
func decodeSource(text string) (any, string, error) {
	v, err := decodeStrict(text)
	if err != nil {
		return nil, "", err
	}
	if s, ok := v.(string); ok {
		if inner, err := decodeStrict(s); err == nil {
			return inner, s, nil
		}
	}
	return v, text, nil
}

func decodeStrict(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if rest := strings.TrimLeft(text[dec.InputOffset():], " \t\r\n"); rest != "" {
		return nil, fmt.Errorf("extra data after JSON value at offset %d", dec.InputOffset())
	}
	return v, nil
}

// Object extracts a JSON object from text, which should already be Clean.
//
// The stages run in order and the first success wins:
//  1. text parses as an object containing requiredKey
//  2. text plus one of suffixes parses as a non-empty object
//  3. the span from the first '{' to the last '}' parses as a non-empty object
func Object(text, requiredKey string, suffixes []string) (map[string]any, bool) {
	obj, _, ok := ObjectSource(text, requiredKey, suffixes)
	return obj, ok
}

// ObjectSource is Object that also returns the JSON text the object was
// decoded from, keys in the order the model wrote them.
func ObjectSource(text, requiredKey string, suffixes []string) (map[string]any, string, bool) {
	if obj, src, ok := asObject(decodeSource(text)); ok {
		if _, has := obj[requiredKey]; has {
			return obj, src, true
		}
	}

	for _, suffix := range suffixes {
		if obj, src, ok := asObject(decodeSource(text + suffix)); ok && len(obj) > 0 {
			return obj, src, true
		}
	}

	if span, ok := braceSpan(text); ok {
		if obj, src, ok := asObject(decodeSource(span)); ok && len(obj) > 0 {
			return obj, src, true
		}
	}

	return nil, "", false
}

func asObject(v any, src string, err error) (map[string]any, string, bool) {
	if err != nil {
		return nil, "", false
	}
	obj, ok := v.(map[string]any)
	return obj, src, ok
}

func braceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// IndentSource re-indents JSON text with two spaces, keeping its key order
// and token spelling.
func IndentSource(src string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(src)), "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ASCII escapes every non-ASCII rune in JSON text as \uXXXX, using a
// surrogate pair above the Basic Multilingual Plane.
func ASCII(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r < utf8.RuneSelf:
			sb.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, "\\u%04x\\u%04x", hi, lo)
		default:
			fmt.Fprintf(&sb, "\\u%04x", r)
		}
	}
	return sb.String()
}

// Indent renders v as two-space indented JSON without HTML escaping.
func Indent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
