// Package stream adapts the style engine to chunked input: every chunk is parsed,
// styled and handed to a sink as zero or one output chunk.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/c360/joli/errors"
	"github.com/c360/joli/parser"
	"github.com/c360/joli/style"
)

// Adapter processes chunks one at a time. Chunks are independent: nothing a chunk
// contains affects the handling of the next one. Writes are serialized so chunks
// reach the sink in write order.
type Adapter struct {
	engine *style.Engine
	sink   Sink

	ref             style.Ref
	strict          bool
	json            bool
	framing         Framing
	continueOnError bool
	logger          *slog.Logger
	metrics         *Metrics

	mu    sync.Mutex
	ended bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithStyle applies ref to every chunk. Without it chunks pass through unstyled.
func WithStyle(ref style.Ref) Option {
	return func(a *Adapter) {
		a.ref = ref
	}
}

// WithStrict disables recovery of JSON embedded in noise.
func WithStrict(strict bool) Option {
	return func(a *Adapter) {
		a.strict = strict
	}
}

// WithFraming selects how Pump splits its input into chunks.
func WithFraming(f Framing) Option {
	return func(a *Adapter) {
		a.framing = f
	}
}

// WithJSON serializes emitted chunks as JSON indented by two spaces.
func WithJSON(enabled bool) Option {
	return func(a *Adapter) {
		a.json = enabled
	}
}

// WithContinueOnError makes Pump log failed lines and keep reading.
func WithContinueOnError(enabled bool) Option {
	return func(a *Adapter) {
		a.continueOnError = enabled
	}
}

// WithLogger sets the logger used for failed chunks
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics records chunk outcomes into m
func WithMetrics(m *Metrics) Option {
	return func(a *Adapter) {
		a.metrics = m
	}
}

// New creates an adapter feeding sink. A nil engine resolves no names.
func New(engine *style.Engine, sink Sink, opts ...Option) *Adapter {
	if engine == nil {
		engine = style.NewEngine()
	}
	a := &Adapter{engine: engine, sink: sink, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Write handles p as one text chunk. It always reports len(p) consumed when the
// chunk was handled, including when it was filtered out.
func (a *Adapter) Write(p []byte) (int, error) {
	if err := a.WriteValue(context.Background(), string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteValue handles one chunk. Strings are parsed; any other value is taken as
// already decoded.
func (a *Adapter) WriteValue(ctx context.Context, v any) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ended {
		return errors.WrapInvalid(errors.ErrClosed, "Adapter", "Write", "check state")
	}

	a.metrics.recordChunk()
	chunk, emit, err := a.process(v)
	if err != nil {
		a.metrics.recordError(err)
		return err
	}
	if !emit {
		a.metrics.recordOutcome(outcomeDropped)
		return nil
	}

	if err := a.sink.Emit(ctx, chunk); err != nil {
		a.metrics.recordError(err)
		return errors.Wrap(err, "Adapter", "Write", "emit chunk")
	}
	a.metrics.recordOutcome(outcomeEmitted)
	return nil
}

func (a *Adapter) process(v any) (any, bool, error) {
	data := v
	if text, ok := v.(string); ok {
		parsed, err := parser.Parse(text, a.strict)
		if err != nil {
			return nil, false, err
		}
		data = parsed
	}

	if data != nil && a.ref != nil {
		out, err := a.engine.Apply(style.FromAny(data), a.ref)
		if err != nil {
			return nil, false, err
		}
		data = out.Any()
	}

	if data == nil {
		return nil, false, nil
	}

	if a.json {
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, false, errors.WrapInvalid(err, "Adapter", "Write", "serialize chunk")
		}
		return string(b), true, nil
	}
	return data, true, nil
}

// End signals completion to the sink. Only the first call reaches the sink.
func (a *Adapter) End() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ended {
		return nil
	}
	a.ended = true
	return a.sink.End()
}

// Close is End, for use as an io.WriteCloser.
func (a *Adapter) Close() error {
	return a.End()
}
