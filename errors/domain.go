package errors

import "fmt"

// maxInputEcho bounds how much of the offending input a ParseError repeats back
const maxInputEcho = 64

// ParseError reports a strict JSON parse failure, either of the whole input or of a
// {...} span recovered from noisy text.
type ParseError struct {
	Input  string // offending text, truncated
	Offset int64  // byte offset of the syntax error, -1 when unknown
	Err    error
}

// NewParseError builds a ParseError for input, truncating the echoed text.
func NewParseError(input string, offset int64, err error) *ParseError {
	if len(input) > maxInputEcho {
		input = input[:maxInputEcho] + "..."
	}
	return &ParseError{Input: input, Offset: offset, Err: err}
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("parse %q: offset %d: %v", e.Input, e.Offset, e.Err)
	}
	return fmt.Sprintf("parse %q: %v", e.Input, e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports ErrParse so callers can match the kind without errors.As.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// StyleNotFoundError reports a style name with no registry entry.
type StyleNotFoundError struct {
	Name string
}

func (e *StyleNotFoundError) Error() string {
	return fmt.Sprintf("style `%s` not found", e.Name)
}

// Is reports ErrStyleNotFound.
func (e *StyleNotFoundError) Is(target error) bool {
	return target == ErrStyleNotFound
}

// EmptyReduceError reports a reduce over an empty sequence when the style has no seed.
type EmptyReduceError struct {
	Style string
}

func (e *EmptyReduceError) Error() string {
	if e.Style == "" {
		return ErrEmptyReduce.Error()
	}
	return fmt.Sprintf("style `%s`: %v", e.Style, ErrEmptyReduce)
}

// Is reports ErrEmptyReduce.
func (e *EmptyReduceError) Is(target error) bool {
	return target == ErrEmptyReduce
}
