package stream

import (
	"context"

	"github.com/c360/joli/output"
)

// Sink receives the adapter's output: one Emit per surviving chunk, then a
// single End.
type Sink interface {
	Emit(ctx context.Context, chunk any) error
	End() error
}

// FuncSink adapts plain functions to Sink. Nil fields are no-ops.
type FuncSink struct {
	EmitFunc func(ctx context.Context, chunk any) error
	EndFunc  func() error
}

// Emit implements Sink.
func (s FuncSink) Emit(ctx context.Context, chunk any) error {
	if s.EmitFunc == nil {
		return nil
	}
	return s.EmitFunc(ctx, chunk)
}

// End implements Sink.
func (s FuncSink) End() error {
	if s.EndFunc == nil {
		return nil
	}
	return s.EndFunc()
}

// OutputSink sends chunks to an outputter and closes it on End.
func OutputSink(out output.Outputter) Sink {
	return FuncSink{
		EmitFunc: out.Output,
		EndFunc:  func() error { return output.Close(out) },
	}
}
