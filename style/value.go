package style

// kind tags the variant held by a Value
type kind uint8

const (
	kindScalar kind = iota
	kindSequence
	kindAbsent
)

// Value is the subject of a style: a sequence of values, a single scalar value
// (usually a record, a map[string]any), or absent. Absent is only produced when a
// filter rejects a scalar.
type Value struct {
	kind   kind
	items  []any
	scalar any
}

// Sequence wraps items as a sequence value. A nil slice is an empty sequence.
func Sequence(items []any) Value {
	if items == nil {
		items = []any{}
	}
	return Value{kind: kindSequence, items: items}
}

// Scalar wraps v as a single value, even when v is itself a slice.
func Scalar(v any) Value {
	return Value{kind: kindScalar, scalar: v}
}

// Absent returns the value produced when a scalar does not survive filtering.
func Absent() Value {
	return Value{kind: kindAbsent}
}

// FromAny classifies a decoded JSON value: []any becomes a sequence, anything else a scalar.
func FromAny(v any) Value {
	if items, ok := v.([]any); ok {
		return Sequence(items)
	}
	return Scalar(v)
}

// IsSequence reports whether v holds a sequence.
func (v Value) IsSequence() bool {
	return v.kind == kindSequence
}

// IsAbsent reports whether v is the filtered-out result.
func (v Value) IsAbsent() bool {
	return v.kind == kindAbsent
}

// Items returns the elements of a sequence, or nil for other variants.
func (v Value) Items() []any {
	if v.kind != kindSequence {
		return nil
	}
	return v.items
}

// Len returns the number of elements of a sequence, 1 for a scalar and 0 when absent.
func (v Value) Len() int {
	switch v.kind {
	case kindSequence:
		return len(v.items)
	case kindScalar:
		return 1
	default:
		return 0
	}
}

// Any unwraps v into a plain Go value: []any for a sequence, the scalar itself,
// or nil when absent.
func (v Value) Any() any {
	switch v.kind {
	case kindSequence:
		return v.items
	case kindScalar:
		return v.scalar
	default:
		return nil
	}
}

// String names the variant, mostly for logs and test failures.
func (v Value) String() string {
	switch v.kind {
	case kindSequence:
		return "sequence"
	case kindScalar:
		return "scalar"
	default:
		return "absent"
	}
}
