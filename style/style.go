// Package style implements the style composition engine: named, chainable
// combinations of filter, reduce and map applied to a single record or a sequence
// of records.
package style

import "strings"

// FilterFunc reports whether a record survives filtering. It must not mutate record.
type FilterFunc func(record any) bool

// ReduceFunc folds record into acc and returns the new accumulator. It may mutate
// acc (the engine hands it a private copy of the seed) but must not mutate record.
type ReduceFunc func(acc, record any) any

// MapFunc transforms a record, or a whole scalar value, into any shape. It must not
// mutate record.
type MapFunc func(record any) any

// Style is a transformation unit. Every field is optional; the engine applies
// Filter, then Reduce, then Map, whichever are set.
type Style struct {
	Name        string
	Description string

	Filter FilterFunc

	// Reduce is only applied to sequences. Without a seed the first element is the
	// initial accumulator and folding starts at the second.
	Reduce  ReduceFunc
	Seed    any
	HasSeed bool

	Map MapFunc
}

// WithSeed returns a copy of s that folds from seed.
func (s Style) WithSeed(seed any) Style {
	s.Seed = seed
	s.HasSeed = true
	return s
}

// Empty reports whether s defines no operation at all.
func (s Style) Empty() bool {
	return s.Filter == nil && s.Reduce == nil && s.Map == nil
}

// Ref selects the style to apply: a Style literal, a Named reference resolved
// through a Resolver, or a Chain of references applied left to right.
type Ref interface {
	ref()
}

// Named refers to a style by registry name.
type Named string

// Chain applies each reference to the result of the previous one.
type Chain []Ref

func (Style) ref() {}
func (Named) ref() {}
func (Chain) ref() {}

// Resolver looks styles up by name.
type Resolver interface {
	Style(name string) (Style, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(name string) (Style, bool)

// Style implements Resolver.
func (f ResolverFunc) Style(name string) (Style, bool) {
	return f(name)
}

// Styles is a fixed name to style mapping usable as a Resolver.
type Styles map[string]Style

// Style implements Resolver.
func (m Styles) Style(name string) (Style, bool) {
	s, ok := m[name]
	return s, ok
}

// ParseRef turns a comma separated list of style names into a reference. A single
// name yields a Named, several yield a Chain, and blank input yields nil.
func ParseRef(spec string) Ref {
	var chain Chain
	for _, part := range strings.Split(spec, ",") {
		if name := strings.TrimSpace(part); name != "" {
			chain = append(chain, Named(name))
		}
	}

	switch len(chain) {
	case 0:
		return nil
	case 1:
		return chain[0]
	default:
		return chain
	}
}

// Names lists the style names referenced by ref, depth first. Literal styles
// contribute their Name when set.
func Names(ref Ref) []string {
	var names []string
	var walk func(Ref)
	walk = func(r Ref) {
		switch v := r.(type) {
		case Named:
			names = append(names, string(v))
		case Style:
			if v.Name != "" {
				names = append(names, v.Name)
			}
		case Chain:
			for _, item := range v {
				walk(item)
			}
		}
	}
	walk(ref)
	return names
}
