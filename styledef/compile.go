package styledef

import (
	"fmt"

	"github.com/c360/joli/errors"
	"github.com/c360/joli/style"
	"github.com/c360/joli/style/expression"
)

// Compile validates the definition and builds the equivalent style.
func (d *Definition) Compile(name string) (style.Style, error) {
	s := style.Style{Name: name, Description: d.Description}

	if d.Filter != nil {
		expr, err := expression.Compile(*d.Filter)
		if err != nil {
			return style.Style{}, invalid(name, "filter", err)
		}
		s.Filter = expr.Match
	}

	if d.Reduce != nil {
		fn, seed, hasSeed, err := d.Reduce.compile()
		if err != nil {
			return style.Style{}, invalid(name, "reduce", err)
		}
		s.Reduce = fn
		if hasSeed {
			s = s.WithSeed(seed)
		}
	}

	if d.Map != nil {
		fn, err := d.Map.compile()
		if err != nil {
			return style.Style{}, invalid(name, "map", err)
		}
		s.Map = fn
	}

	return s, nil
}

func invalid(name, section string, err error) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: style %q: %s: %w", errors.ErrInvalidConfig, name, section, err),
		"styledef", "Compile", "compile "+section)
}
