package registry

import (
	"embed"
	"slices"

	"github.com/c360/joli/style"
)

// bundledFS holds the definitions shipped with joli, laid out like a .joli
// directory.
//
//go:embed bundled
var bundledFS embed.FS

const bundledRoot = "bundled"

const builtinPath = "(builtin)"

// builtinStyles are the bundled styles that need Go code.
func builtinStyles() []style.Style {
	return []style.Style{
		{
			Name:        "keys",
			Description: "sorted field names of each record",
			Map:         keys,
		},
		{
			Name:        "compact",
			Description: "drop null and empty records",
			Filter:      notEmpty,
		},
		{
			Name:        "pretty",
			Description: "values unchanged, for use with --json",
			Map:         func(record any) any { return record },
		},
	}
}

func keys(record any) any {
	m, ok := record.(map[string]any)
	if !ok {
		return nil
	}

	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)

	out := make([]any, len(names))
	for i, name := range names {
		out[i] = name
	}
	return out
}

func notEmpty(record any) bool {
	switch v := record.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case map[string]any:
		return len(v) > 0
	case []any:
		return len(v) > 0
	default:
		return true
	}
}
