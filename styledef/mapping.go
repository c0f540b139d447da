package styledef

import (
	"fmt"
	"strings"

	"github.com/c360/joli/style"
)

// Field transforms
const (
	TransformCopy      = "copy"
	TransformUppercase = "uppercase"
	TransformLowercase = "lowercase"
	TransformTrim      = "trim"
)

func (m *Map) compile() (style.MapFunc, error) {
	if m.Pick != "" {
		if len(m.Fields) > 0 || len(m.Mappings) > 0 || len(m.AddFields) > 0 || len(m.RemoveFields) > 0 {
			return nil, fmt.Errorf("pick cannot be combined with other map operations")
		}
		pick := m.Pick
		return func(record any) any { return lookup(record, pick) }, nil
	}

	for _, mapping := range m.Mappings {
		if mapping.SourceField == "" || mapping.TargetField == "" {
			return nil, fmt.Errorf("mapping requires source_field and target_field")
		}
		switch mapping.Transform {
		case "", TransformCopy, TransformUppercase, TransformLowercase, TransformTrim:
		default:
			return nil, fmt.Errorf("unsupported transform %q", mapping.Transform)
		}
	}

	removeFields := make(map[string]bool, len(m.RemoveFields))
	for _, f := range m.RemoveFields {
		removeFields[f] = true
	}

	fields := m.Fields
	mappings := m.Mappings
	addFields := m.AddFields

	return func(record any) any {
		data, ok := record.(map[string]any)
		if !ok {
			return record
		}

		result := make(map[string]any, len(data))
		if len(fields) > 0 {
			for _, f := range fields {
				if v, found := data[f]; found {
					result[f] = v
				} else if v := lookup(data, f); v != nil {
					result[f] = v
				}
			}
		} else {
			for key, value := range data {
				result[key] = value
			}
		}

		for key := range removeFields {
			delete(result, key)
		}

		for _, mapping := range mappings {
			value, exists := data[mapping.SourceField]
			if !exists {
				continue
			}
			if mapping.SourceField != mapping.TargetField {
				delete(result, mapping.SourceField)
			}
			result[mapping.TargetField] = applyTransform(value, mapping.Transform)
		}

		for key, value := range addFields {
			result[key] = value
		}

		return result
	}, nil
}

// applyTransform only rewrites strings; other values pass through
func applyTransform(value any, transform string) any {
	s, ok := value.(string)
	if !ok {
		return value
	}

	switch transform {
	case TransformUppercase:
		return strings.ToUpper(s)
	case TransformLowercase:
		return strings.ToLower(s)
	case TransformTrim:
		return strings.TrimSpace(s)
	default:
		return value
	}
}
