// Package parser turns raw text into JSON values, recovering JSON objects embedded in
// noisy text and wrapping text that holds no object at all.
package parser

import (
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/c360/joli/errors"
)

const (
	// ExtraField holds the text found around a recovered JSON object.
	ExtraField = "_extra"
	// TextField holds the whole input when no JSON object could be found.
	TextField = "text"
)

// Parse converts text into a JSON value.
//
// Valid JSON is returned as decoded by encoding/json. In strict mode any syntax
// failure is returned as a *errors.ParseError. Otherwise the outermost {...} span
// (first '{' to last '}') is parsed strictly and the surrounding fragments are attached
// under ExtraField; if the span is not valid JSON the ParseError is returned. Text
// without any brace span is wrapped as {"text": text} and never fails.
func Parse(text string, strict bool) (any, error) {
	value, err := decode(text)
	if err == nil {
		return value, nil
	}
	if strict {
		return nil, err
	}

	span, ok := objectSpan(text)
	if !ok {
		return map[string]any{TextField: text}, nil
	}

	recovered, err := Parse(span, true)
	if err != nil {
		return nil, err
	}

	// span starts with '{' and ends with '}', so a successful parse is an object
	record := recovered.(map[string]any)
	parts := strings.Split(text, span)
	extra := make([]any, len(parts))
	for i, part := range parts {
		extra[i] = part
	}
	record[ExtraField] = extra

	return record, nil
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(data []byte, strict bool) (any, error) {
	return Parse(string(data), strict)
}

// objectSpan returns the text from the first '{' to the last '}' that follows it.
func objectSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(text, '}')
	if end < start {
		return "", false
	}
	return text[start : end+1], true
}

func decode(text string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		offset := int64(-1)
		var syntaxErr *json.SyntaxError
		if stderrors.As(err, &syntaxErr) {
			offset = syntaxErr.Offset
		}
		return nil, errors.NewParseError(text, offset, err)
	}
	return value, nil
}
