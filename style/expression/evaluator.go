package expression

import (
	"fmt"
	"regexp"
	"strings"
)

var operators = map[string]OperatorFunc{
	OpEqual:            operatorEqual,
	OpNotEqual:         operatorNotEqual,
	OpLessThan:         compareWith(func(c int) bool { return c < 0 }),
	OpLessThanEqual:    compareWith(func(c int) bool { return c <= 0 }),
	OpGreaterThan:      compareWith(func(c int) bool { return c > 0 }),
	OpGreaterThanEqual: compareWith(func(c int) bool { return c >= 0 }),
	OpContains:         stringOperator(strings.Contains),
	OpStartsWith:       stringOperator(strings.HasPrefix),
	OpEndsWith:         stringOperator(strings.HasSuffix),
	OpIn:               operatorIn,
	OpNotIn:            func(f, c any) bool { return !operatorIn(f, c) },
	OpExists:           func(any, any) bool { return true },
}

// Supported reports whether op names a known operator.
func Supported(op string) bool {
	_, ok := operators[op]
	return ok || op == OpRegexMatch
}

type compiledCondition struct {
	field string
	value any
	test  OperatorFunc
}

// Expression is a compiled Logical, safe for concurrent use.
type Expression struct {
	conditions []compiledCondition
	or         bool
}

// Compile validates expr and precompiles its regular expressions.
func Compile(expr Logical) (*Expression, error) {
	compiled := &Expression{conditions: make([]compiledCondition, 0, len(expr.Conditions))}

	switch expr.Logic {
	case LogicAnd, "":
	case LogicOr:
		compiled.or = true
	default:
		return nil, &CompileError{Message: fmt.Sprintf("unsupported logic operator: %s", expr.Logic)}
	}

	for _, cond := range expr.Conditions {
		c, err := compileCondition(cond)
		if err != nil {
			return nil, err
		}
		compiled.conditions = append(compiled.conditions, c)
	}
	return compiled, nil
}

func compileCondition(cond Condition) (compiledCondition, error) {
	if cond.Operator == OpRegexMatch {
		pattern, ok := cond.Value.(string)
		if !ok {
			return compiledCondition{}, &CompileError{
				Field: cond.Field, Operator: cond.Operator, Message: "regex pattern must be a string",
			}
		}
		re, err := compileRegex(pattern)
		if err != nil {
			return compiledCondition{}, &CompileError{
				Field: cond.Field, Operator: cond.Operator, Message: "invalid pattern", Err: err,
			}
		}
		return compiledCondition{field: cond.Field, value: pattern, test: regexOperator(re)}, nil
	}

	test, ok := operators[cond.Operator]
	if !ok {
		return compiledCondition{}, &CompileError{
			Field: cond.Field, Operator: cond.Operator, Message: "unsupported operator",
		}
	}
	return compiledCondition{field: cond.Field, value: cond.Value, test: test}, nil
}

// Match evaluates the expression against record. A condition on a missing field
// fails. An expression with no conditions matches everything.
func (e *Expression) Match(record any) bool {
	if len(e.conditions) == 0 {
		return true
	}

	for _, c := range e.conditions {
		ok := false
		if v, found := Lookup(record, c.field); found {
			ok = c.test(v, c.value)
		}
		if e.or && ok {
			return true
		}
		if !e.or && !ok {
			return false
		}
	}
	return !e.or
}

func operatorEqual(fieldValue, compareValue any) bool {
	if b, ok := fieldValue.(bool); ok {
		cb, isBool := compareValue.(bool)
		return isBool && b == cb
	}
	if fieldValue == nil || compareValue == nil {
		return fieldValue == nil && compareValue == nil
	}
	return compareValues(fieldValue, compareValue) == 0
}

func operatorNotEqual(fieldValue, compareValue any) bool {
	return !operatorEqual(fieldValue, compareValue)
}

func compareWith(accept func(int) bool) OperatorFunc {
	return func(fieldValue, compareValue any) bool {
		// null has no order
		if fieldValue == nil || compareValue == nil {
			return false
		}
		return accept(compareValues(fieldValue, compareValue))
	}
}

func stringOperator(test func(s, substr string) bool) OperatorFunc {
	return func(fieldValue, compareValue any) bool {
		return test(toString(fieldValue), toString(compareValue))
	}
}

func regexOperator(re *regexp.Regexp) OperatorFunc {
	return func(fieldValue, _ any) bool {
		return re.MatchString(toString(fieldValue))
	}
}

func operatorIn(fieldValue, compareValue any) bool {
	candidates, ok := compareValue.([]any)
	if !ok {
		return operatorEqual(fieldValue, compareValue)
	}
	for _, candidate := range candidates {
		if operatorEqual(fieldValue, candidate) {
			return true
		}
	}
	return false
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// compareValues orders numbers numerically and everything else by string form
func compareValues(a, b any) int {
	aNum, aIsNum := toFloat64(a)
	bNum, bIsNum := toFloat64(b)

	if aIsNum && bIsNum {
		switch {
		case aNum < bNum:
			return -1
		case aNum > bNum:
			return 1
		}
		return 0
	}

	return strings.Compare(toString(a), toString(b))
}

func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}
