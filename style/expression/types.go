// Package expression evaluates field/operator/value conditions against decoded JSON
// records. It backs the filter section of declarative style definitions.
package expression

import "fmt"

// Condition is a single field/operator/value test.
type Condition struct {
	Field    string `json:"field" yaml:"field"`       // dot path, e.g. "movie.year" or "cast.0.name"
	Operator string `json:"operator" yaml:"operator"` // e.g. "eq", "gte", "contains"
	Value    any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Logical combines conditions with a logic operator.
type Logical struct {
	Conditions []Condition `json:"conditions" yaml:"conditions"`
	Logic      string      `json:"logic,omitempty" yaml:"logic,omitempty"` // "and" (default), "or"
}

// OperatorFunc tests a resolved field value against the condition value.
type OperatorFunc func(fieldValue, compareValue any) bool

// CompileError reports a condition that cannot be compiled.
type CompileError struct {
	Field    string
	Operator string
	Message  string
	Err      error
}

func (e *CompileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("condition on field '%s' with operator '%s': %s: %v",
			e.Field, e.Operator, e.Message, e.Err)
	}
	return fmt.Sprintf("condition on field '%s' with operator '%s': %s",
		e.Field, e.Operator, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Supported operators
const (
	OpEqual            = "eq"
	OpNotEqual         = "ne"
	OpLessThan         = "lt"
	OpLessThanEqual    = "lte"
	OpGreaterThan      = "gt"
	OpGreaterThanEqual = "gte"

	OpContains   = "contains"
	OpStartsWith = "starts_with"
	OpEndsWith   = "ends_with"
	OpRegexMatch = "regex"

	OpIn    = "in"
	OpNotIn = "not_in"

	// OpExists ignores Value and passes whenever the field resolves.
	OpExists = "exists"
)

// Logic operators
const (
	LogicAnd = "and"
	LogicOr  = "or"
)
