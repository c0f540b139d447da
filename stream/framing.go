package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/c360/joli/errors"
)

const (
	// maxLineSize bounds a single line read by Pump
	maxLineSize = 4 * 1024 * 1024
	// maxDocumentSize bounds a chunk assembled from several lines or a whole input
	maxDocumentSize = 64 * 1024 * 1024
)

// Framing decides how Pump cuts a reader into chunks.
type Framing int

const (
	// FramingLines makes every non-blank line a chunk.
	FramingLines Framing = iota
	// FramingDocuments keeps a JSON value spanning several lines together as one
	// chunk, so a pretty-printed array reaches the engine as a sequence. Lines
	// that do not start a JSON value are chunks of their own.
	FramingDocuments
	// FramingWhole reads the entire input as a single chunk.
	FramingWhole
)

func (f Framing) String() string {
	switch f {
	case FramingLines:
		return "lines"
	case FramingDocuments:
		return "documents"
	case FramingWhole:
		return "whole"
	default:
		return "unknown"
	}
}

// ParseFraming maps a framing name to its value.
func ParseFraming(s string) (Framing, error) {
	for _, f := range []Framing{FramingLines, FramingDocuments, FramingWhole} {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return 0, errors.WrapInvalid(fmt.Errorf("%w: framing %q must be lines, documents or whole", errors.ErrInvalidConfig, s),
		"stream", "ParseFraming", "parse framing")
}

// Pump writes the chunks of r, cut by the adapter's framing, until EOF or ctx is
// done. It does not end the adapter.
func (a *Adapter) Pump(ctx context.Context, r io.Reader) error {
	emit := func(line int, text string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return a.write(ctx, line, text)
	}

	var err error
	switch a.framing {
	case FramingWhole:
		err = pumpWhole(r, emit)
	case FramingDocuments:
		err = pumpDocuments(r, emit)
	default:
		err = pumpLines(r, emit)
	}
	return err
}

// write handles one framed chunk, skipping it when continueOnError allows.
func (a *Adapter) write(ctx context.Context, line int, text string) error {
	err := a.WriteValue(ctx, text)
	if err == nil {
		return nil
	}
	if !a.continueOnError || errors.IsFatal(err) {
		return err
	}
	a.logger.Warn("Skipping chunk",
		"component", "stream",
		"line", line,
		"framing", a.framing.String(),
		"class", errors.Classify(err).String(),
		"error", err)
	return nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}

func scanErr(scanner *bufio.Scanner) error {
	if err := scanner.Err(); err != nil {
		return errors.WrapTransient(err, "Adapter", "Pump", "read input")
	}
	return nil
}

func pumpLines(r io.Reader, emit func(int, string) error) error {
	scanner := newLineScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := emit(line, text); err != nil {
			return err
		}
	}
	return scanErr(scanner)
}

func pumpWhole(r io.Reader, emit func(int, string) error) error {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return errors.WrapTransient(err, "Adapter", "Pump", "read input")
	}
	if len(data) > maxDocumentSize {
		return errors.WrapInvalid(fmt.Errorf("input exceeds %d bytes", maxDocumentSize), "Adapter", "Pump", "read input")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return emit(1, string(data))
}

// document accumulates the lines of a JSON value that is not complete yet
type document struct {
	first int // line number of the first pending line
	lines []string
	size  int
}

func (d *document) empty() bool { return len(d.lines) == 0 }

func (d *document) add(line int, text string) {
	if d.empty() {
		d.first = line
	}
	d.lines = append(d.lines, text)
	d.size += len(text) + 1
}

func (d *document) reset() {
	d.lines = d.lines[:0]
	d.size = 0
}

// flushLines emits the pending lines one by one, as FramingLines would have.
func (d *document) flushLines(emit func(int, string) error) error {
	defer d.reset()
	for i, text := range d.lines {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := emit(d.first+i, text); err != nil {
			return err
		}
	}
	return nil
}

func pumpDocuments(r io.Reader, emit func(int, string) error) error {
	scanner := newLineScanner(r)
	var doc document

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")

		if doc.empty() {
			trimmed := strings.TrimSpace(text)
			if trimmed == "" {
				continue
			}
			if trimmed[0] != '{' && trimmed[0] != '[' {
				if err := emit(line, text); err != nil {
					return err
				}
				continue
			}
		}

		doc.add(line, text)
		switch documentState(strings.Join(doc.lines, "\n")) {
		case stateComplete:
			chunk := strings.Join(doc.lines, "\n")
			first := doc.first
			doc.reset()
			if err := emit(first, chunk); err != nil {
				return err
			}
		case stateBroken:
			if err := doc.flushLines(emit); err != nil {
				return err
			}
		case statePartial:
			if doc.size > maxDocumentSize {
				if err := doc.flushLines(emit); err != nil {
					return err
				}
			}
		}
	}

	if err := scanErr(scanner); err != nil {
		return err
	}
	// an unterminated value falls back to line chunks
	return doc.flushLines(emit)
}

type docState int

const (
	statePartial docState = iota
	stateComplete
	stateBroken
)

// documentState reports whether text holds a complete JSON value, the start of
// one, or something no further line can repair. Trailing text after a complete
// value still completes the chunk; the tolerant parser deals with it.
func documentState(text string) docState {
	dec := json.NewDecoder(strings.NewReader(text))
	var v any
	err := dec.Decode(&v)
	switch {
	case err == nil:
		return stateComplete
	case stderrors.Is(err, io.ErrUnexpectedEOF):
		return statePartial
	default:
		return stateBroken
	}
}
