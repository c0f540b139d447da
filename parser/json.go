package parser

import (
	"github.com/c360/joli/errors"
)

// JSONParser handles JSON payloads with a fixed strictness.
type JSONParser struct {
	strict bool
}

// NewJSONParser creates a tolerant JSON parser
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

// NewStrictJSONParser creates a parser that never falls back on malformed input
func NewStrictJSONParser() *JSONParser {
	return &JSONParser{strict: true}
}

// Parse parses data into a JSON value
func (p *JSONParser) Parse(data []byte) (any, error) {
	if len(data) == 0 && p.strict {
		return nil, ErrEmptyData
	}
	return ParseBytes(data, p.strict)
}

// Format returns the format name
func (p *JSONParser) Format() string {
	if p.strict {
		return "json"
	}
	return "json-tolerant"
}

// Strict reports whether the parser falls back on malformed input
func (p *JSONParser) Strict() bool {
	return p.strict
}

// Validate checks if the data is valid JSON, ignoring the fallback path
func (p *JSONParser) Validate(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyData
	}

	if _, err := ParseBytes(data, true); err != nil {
		return errors.WrapInvalid(err, "JSONParser", "Validate", "invalid json format")
	}

	return nil
}
