package style

import (
	"fmt"
	"time"

	"github.com/c360/joli/errors"
)

// Engine applies style references to values. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	resolver Resolver
	metrics  *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithResolver sets the lookup used for Named references.
func WithResolver(r Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithMetrics records applications into m. A nil m disables metrics.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an engine. Without a resolver every Named reference fails with
// a StyleNotFoundError.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply transforms data according to ref.
//
// A Chain is folded left to right and an empty chain returns data unchanged. A Named
// reference is resolved first; a missing name is a *errors.StyleNotFoundError. A nil
// ref returns data unchanged.
func (e *Engine) Apply(data Value, ref Ref) (Value, error) {
	switch r := ref.(type) {
	case nil:
		return data, nil
	case Chain:
		var err error
		for _, item := range r {
			if data, err = e.Apply(data, item); err != nil {
				return Absent(), err
			}
		}
		return data, nil
	case Named:
		s, ok := e.resolve(string(r))
		if !ok {
			return Absent(), &errors.StyleNotFoundError{Name: string(r)}
		}
		if s.Name == "" {
			s.Name = string(r)
		}
		return e.applyStyle(data, s)
	case Style:
		return e.applyStyle(data, r)
	default:
		return Absent(), errors.WrapInvalid(
			fmt.Errorf("%w: unsupported style reference %T", errors.ErrInvalidData, ref),
			"Engine", "Apply", "resolve reference")
	}
}

func (e *Engine) resolve(name string) (Style, bool) {
	if e.resolver == nil {
		return Style{}, false
	}
	return e.resolver.Style(name)
}

// applyStyle runs filter, reduce and map in that order.
func (e *Engine) applyStyle(data Value, s Style) (Value, error) {
	if data.IsAbsent() {
		return data, nil
	}

	start := time.Now()
	before := data.Len()

	if s.Filter != nil {
		if data.IsSequence() {
			kept := make([]any, 0, len(data.items))
			for _, item := range data.items {
				if s.Filter(item) {
					kept = append(kept, item)
				}
			}
			data = Sequence(kept)
			e.metrics.recordFiltered(s.Name, before-len(kept))
		} else if !s.Filter(data.scalar) {
			e.metrics.recordFiltered(s.Name, 1)
			e.metrics.recordApplication(s.Name, outcomeAbsent, time.Since(start))
			return Absent(), nil
		}
	}

	if s.Reduce != nil && data.IsSequence() {
		reduced, err := reduce(data.items, s)
		if err != nil {
			e.metrics.recordApplication(s.Name, outcomeError, time.Since(start))
			return Absent(), err
		}
		data = FromAny(reduced)
	}

	if s.Map != nil {
		if data.IsSequence() {
			mapped := make([]any, len(data.items))
			for i, item := range data.items {
				mapped[i] = s.Map(item)
			}
			data = Sequence(mapped)
		} else {
			data = FromAny(s.Map(data.scalar))
		}
	}

	e.metrics.recordApplication(s.Name, outcomeOK, time.Since(start))
	return data, nil
}

// reduce folds items left to right. The accumulator always starts as a private copy,
// either of the seed or of the first element.
func reduce(items []any, s Style) (any, error) {
	var acc any
	if s.HasSeed {
		acc = deepCopy(s.Seed)
	} else {
		if len(items) == 0 {
			return nil, &errors.EmptyReduceError{Style: s.Name}
		}
		acc = deepCopy(items[0])
		items = items[1:]
	}

	for _, item := range items {
		acc = s.Reduce(acc, item)
	}
	return acc, nil
}

// Apply is a convenience over plain Go values: data is classified with FromAny
// and a nil result means the value was filtered out.
func Apply(data any, ref Ref, r Resolver) (any, error) {
	out, err := NewEngine(WithResolver(r)).Apply(FromAny(data), ref)
	if err != nil {
		return nil, err
	}
	return out.Any(), nil
}
