package styledef

import (
	"fmt"

	"github.com/c360/joli/style"
	"github.com/c360/joli/style/expression"
)

// Reduce operations
const (
	OpSum     = "sum"
	OpCount   = "count"
	OpCountBy = "count_by"
	OpCollect = "collect"
	OpMin     = "min"
	OpMax     = "max"
	OpFirst   = "first"
	OpLast    = "last"
	OpMerge   = "merge"
)

// defaultSeeds are used when a definition gives no seed. Ops missing here fold
// without a seed.
var defaultSeeds = map[string]func() any{
	OpCount:   func() any { return float64(0) },
	OpCountBy: func() any { return map[string]any{} },
	OpCollect: func() any { return []any{} },
	OpMerge:   func() any { return map[string]any{} },
}

func (r *Reduce) compile() (fn style.ReduceFunc, seed any, hasSeed bool, err error) {
	field := r.Field

	switch r.Op {
	case OpSum:
		fn = func(acc, record any) any {
			return accNumber(acc, field) + number(lookup(record, field))
		}
	case OpMin, OpMax:
		less := r.Op == OpMin
		fn = func(acc, record any) any {
			current, next := accNumber(acc, field), number(lookup(record, field))
			if (less && next < current) || (!less && next > current) {
				return next
			}
			return current
		}
	case OpCount:
		fn = func(acc, _ any) any { return number(acc) + 1 }
	case OpCountBy:
		if field == "" {
			return nil, nil, false, fmt.Errorf("%s requires a field", r.Op)
		}
		fn = func(acc, record any) any {
			tally, ok := acc.(map[string]any)
			if !ok {
				return acc
			}
			key := fmt.Sprint(lookup(record, field))
			tally[key] = number(tally[key]) + 1
			return tally
		}
	case OpCollect:
		fn = func(acc, record any) any {
			items, _ := acc.([]any)
			return append(items, lookup(record, field))
		}
	case OpFirst:
		fn = func(acc, _ any) any { return acc }
	case OpLast:
		fn = func(_, record any) any { return record }
	case OpMerge:
		fn = func(acc, record any) any {
			merged, ok := acc.(map[string]any)
			if !ok {
				return acc
			}
			if m, ok := lookup(record, field).(map[string]any); ok {
				for k, v := range m {
					merged[k] = v
				}
			}
			return merged
		}
	default:
		return nil, nil, false, fmt.Errorf("unsupported reduce op %q", r.Op)
	}

	if r.Seed != nil {
		return fn, r.Seed, true, nil
	}
	if def, ok := defaultSeeds[r.Op]; ok {
		return fn, def(), true, nil
	}
	return fn, nil, false, nil
}

// lookup resolves field inside record; an empty field is the record itself
func lookup(record any, field string) any {
	v, _ := expression.Lookup(record, field)
	return v
}

// accNumber reads the running total. Without a seed the accumulator starts as the
// first record, so its field is read until it has become a number.
func accNumber(acc any, field string) float64 {
	if _, isRecord := acc.(map[string]any); isRecord {
		return number(lookup(acc, field))
	}
	return number(acc)
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case bool:
		if n {
			return 1
		}
	}
	return 0
}
