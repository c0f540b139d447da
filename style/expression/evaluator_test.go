package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movie() map[string]any {
	return map[string]any{
		"title":  "The Avengers",
		"year":   float64(2012),
		"gross":  float64(1511757910),
		"sequel": false,
		"studio": map[string]any{
			"name": "Marvel Studios",
		},
		"cast": []any{
			map[string]any{"name": "Robert Downey Jr."},
			map[string]any{"name": "Chris Evans"},
		},
	}
}

func TestExpression_Operators(t *testing.T) {
	tests := []struct {
		name     string
		cond     Condition
		expected bool
	}{
		{"equal_numeric", Condition{Field: "year", Operator: OpEqual, Value: 2012}, true},
		{"equal_string", Condition{Field: "title", Operator: OpEqual, Value: "The Avengers"}, true},
		{"equal_bool", Condition{Field: "sequel", Operator: OpEqual, Value: false}, true},
		{"bool_not_equal_string", Condition{Field: "sequel", Operator: OpEqual, Value: "false"}, false},
		{"not_equal", Condition{Field: "year", Operator: OpNotEqual, Value: 2011}, true},
		{"less_than", Condition{Field: "year", Operator: OpLessThan, Value: 2013.0}, true},
		{"less_than_equal", Condition{Field: "year", Operator: OpLessThanEqual, Value: 2012}, true},
		{"greater_than", Condition{Field: "gross", Operator: OpGreaterThan, Value: 2e9}, false},
		{"greater_than_equal", Condition{Field: "gross", Operator: OpGreaterThanEqual, Value: 1511757910}, true},
		{"contains", Condition{Field: "title", Operator: OpContains, Value: "Aveng"}, true},
		{"starts_with", Condition{Field: "title", Operator: OpStartsWith, Value: "The"}, true},
		{"ends_with", Condition{Field: "title", Operator: OpEndsWith, Value: "Titanic"}, false},
		{"regex", Condition{Field: "title", Operator: OpRegexMatch, Value: `^The \w+$`}, true},
		{"in", Condition{Field: "year", Operator: OpIn, Value: []any{2011, 2012}}, true},
		{"not_in", Condition{Field: "year", Operator: OpNotIn, Value: []any{2009, 1997}}, true},
		{"exists", Condition{Field: "studio.name", Operator: OpExists}, true},
		{"exists_missing", Condition{Field: "studio.country", Operator: OpExists}, false},
		{"nested_path", Condition{Field: "studio.name", Operator: OpEqual, Value: "Marvel Studios"}, true},
		{"array_index", Condition{Field: "cast.1.name", Operator: OpEqual, Value: "Chris Evans"}, true},
		{"missing_field_fails", Condition{Field: "rating", Operator: OpNotEqual, Value: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Compile(Logical{Conditions: []Condition{tt.cond}})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, expr.Match(movie()))
		})
	}
}

func TestExpression_OrderingWithNull(t *testing.T) {
	record := map[string]any{"rating": nil, "year": float64(2012)}

	for _, op := range []string{OpLessThan, OpLessThanEqual, OpGreaterThan, OpGreaterThanEqual} {
		t.Run(op, func(t *testing.T) {
			nullField, err := Compile(Logical{Conditions: []Condition{{Field: "rating", Operator: op, Value: "zzz"}}})
			require.NoError(t, err)
			assert.False(t, nullField.Match(record), "null field must not order")

			nullValue, err := Compile(Logical{Conditions: []Condition{{Field: "year", Operator: op, Value: nil}}})
			require.NoError(t, err)
			assert.False(t, nullValue.Match(record), "null value must not order")
		})
	}
}

func TestExpression_Logic(t *testing.T) {
	conditions := []Condition{
		{Field: "year", Operator: OpEqual, Value: 1997},
		{Field: "title", Operator: OpContains, Value: "Avengers"},
	}

	and, err := Compile(Logical{Conditions: conditions, Logic: LogicAnd})
	require.NoError(t, err)
	assert.False(t, and.Match(movie()))

	or, err := Compile(Logical{Conditions: conditions, Logic: LogicOr})
	require.NoError(t, err)
	assert.True(t, or.Match(movie()))

	empty, err := Compile(Logical{Logic: LogicOr})
	require.NoError(t, err)
	assert.True(t, empty.Match(movie()), "no conditions matches everything")
}

func TestExpression_NonRecordInput(t *testing.T) {
	expr, err := Compile(Logical{Conditions: []Condition{{Field: "year", Operator: OpExists}}})
	require.NoError(t, err)

	assert.False(t, expr.Match("plain text"))
	assert.False(t, expr.Match(nil))
	assert.False(t, expr.Match([]any{movie()}))

	whole, err := Compile(Logical{Conditions: []Condition{{Field: "", Operator: OpGreaterThan, Value: 10}}})
	require.NoError(t, err)
	assert.True(t, whole.Match(float64(42)), "empty path tests the value itself")
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr Logical
	}{
		{"unknown_logic", Logical{Logic: "xor"}},
		{"unknown_operator", Logical{Conditions: []Condition{{Field: "year", Operator: "between"}}}},
		{"regex_not_string", Logical{Conditions: []Condition{{Field: "title", Operator: OpRegexMatch, Value: 5}}}},
		{"regex_invalid", Logical{Conditions: []Condition{{Field: "title", Operator: OpRegexMatch, Value: "(unclosed"}}}},
		{"regex_dangerous", Logical{Conditions: []Condition{{Field: "title", Operator: OpRegexMatch, Value: "(a+)+b"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.expr)
			require.Error(t, err)

			var compileErr *CompileError
			assert.ErrorAs(t, err, &compileErr)
		})
	}
}

func TestSupported(t *testing.T) {
	for _, op := range []string{OpEqual, OpRegexMatch, OpIn, OpExists} {
		assert.True(t, Supported(op), op)
	}
	assert.False(t, Supported("length_gt"))
}

func TestLookup(t *testing.T) {
	v, ok := Lookup(movie(), "cast.0.name")
	require.True(t, ok)
	assert.Equal(t, "Robert Downey Jr.", v)

	_, ok = Lookup(movie(), "cast.9.name")
	assert.False(t, ok)

	_, ok = Lookup(movie(), "title.length")
	assert.False(t, ok)
}

func TestValidateRegexComplexity(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"simple", `^\d{4}$`, false},
		{"too_long", string(make([]byte, maxPatternLength+1)), true},
		{"nested_wildcards", `(.*)*x`, true},
		{"large_repetition", `a{1000,}`, true},
		{"deep_nesting", `((((((a))))))`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRegexComplexity(tt.pattern)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
