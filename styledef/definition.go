// Package styledef decodes declarative style definitions from JSON or YAML and
// compiles them into style.Style values.
//
// A definition has up to three optional sections matching the engine's pipeline:
//
//	description: movies from 2011 onwards, titles only
//	filter:
//	  logic: and
//	  conditions:
//	    - {field: year, operator: gte, value: 2011}
//	map:
//	  pick: title
//
// Decoded values are normalized to the shapes the JSON parser produces (float64
// numbers, map[string]any objects) so definitions and parsed input compare equal.
package styledef

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/c360/joli/errors"
	"github.com/c360/joli/style/expression"
)

// Supported definition formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Definition is the serializable form of a style.
type Definition struct {
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Filter      *expression.Logical `json:"filter,omitempty" yaml:"filter,omitempty"`
	Reduce      *Reduce             `json:"reduce,omitempty" yaml:"reduce,omitempty"`
	Map         *Map                `json:"map,omitempty" yaml:"map,omitempty"`
}

// Reduce describes a fold over a sequence. A null or missing Seed means no seed,
// except for ops that define their own default.
type Reduce struct {
	Op    string `json:"op" yaml:"op"`
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
	Seed  any    `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Map describes a per-record projection or rewrite. Pick is exclusive with the
// other fields.
type Map struct {
	Pick         string         `json:"pick,omitempty" yaml:"pick,omitempty"`
	Fields       []string       `json:"fields,omitempty" yaml:"fields,omitempty"`
	Mappings     []FieldMapping `json:"mappings,omitempty" yaml:"mappings,omitempty"`
	AddFields    map[string]any `json:"add_fields,omitempty" yaml:"add_fields,omitempty"`
	RemoveFields []string       `json:"remove_fields,omitempty" yaml:"remove_fields,omitempty"`
}

// FieldMapping renames a top-level field, optionally transforming string values.
type FieldMapping struct {
	SourceField string `json:"source_field" yaml:"source_field"`
	TargetField string `json:"target_field" yaml:"target_field"`
	Transform   string `json:"transform,omitempty" yaml:"transform,omitempty"` // copy, uppercase, lowercase, trim
}

// FormatFromPath returns the definition format implied by a file extension, or ""
// when the extension is not a definition format.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// Decode parses a definition in the given format ("json", "yaml" or "yml").
func Decode(data []byte, format string) (*Definition, error) {
	var def Definition

	switch strings.ToLower(format) {
	case FormatJSON:
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, errors.WrapInvalid(err, "styledef", "Decode", "unmarshal json")
		}
	case FormatYAML, "yml":
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, errors.WrapInvalid(err, "styledef", "Decode", "unmarshal yaml")
		}
	default:
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: unsupported format %q", errors.ErrInvalidConfig, format),
			"styledef", "Decode", "select decoder")
	}

	def.normalize()
	return &def, nil
}

func (d *Definition) normalize() {
	if d.Filter != nil {
		for i := range d.Filter.Conditions {
			d.Filter.Conditions[i].Value = normalize(d.Filter.Conditions[i].Value)
		}
	}
	if d.Reduce != nil {
		d.Reduce.Seed = normalize(d.Reduce.Seed)
	}
	if d.Map != nil && d.Map.AddFields != nil {
		d.Map.AddFields = normalize(d.Map.AddFields).(map[string]any)
	}
}

// normalize converts YAML decoded values to JSON decoded shapes
func normalize(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}
