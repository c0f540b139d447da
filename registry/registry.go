// Package registry resolves style and outputter names. Entries come from three
// tiers that override each other in order: the definitions bundled with joli,
// $HOME/.joli/<kind>/ and $CWD/.joli/<kind>/. The entry name is the file name
// without its extension.
package registry

import (
	"fmt"
	"slices"

	"github.com/c360/joli/errors"
	"github.com/c360/joli/output"
	"github.com/c360/joli/style"
)

// Kind is a registry namespace.
type Kind string

// Registry kinds, named after their directories under .joli
const (
	KindStyles     Kind = "styles"
	KindOutputters Kind = "outputters"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindStyles, KindOutputters:
		return k, nil
	default:
		return "", errors.WrapInvalid(fmt.Errorf("%w: %q", errors.ErrUnknownKind, s),
			"Registry", "ParseKind", "parse kind")
	}
}

// Tier tells where an entry was loaded from.
type Tier int

// Tiers in override order
const (
	TierBundled Tier = iota
	TierHome
	TierWorkdir
)

func (t Tier) String() string {
	switch t {
	case TierBundled:
		return "bundled"
	case TierHome:
		return "home"
	case TierWorkdir:
		return "workdir"
	default:
		return "unknown"
	}
}

// Info describes a registry entry.
type Info struct {
	Name        string
	Kind        Kind
	Tier        Tier
	Path        string // file the entry came from, "(builtin)" for Go defined styles
	Description string
}

type styleEntry struct {
	style style.Style
	info  Info
}

type outputterEntry struct {
	config output.Config
	info   Info
}

// Registry is an immutable snapshot of loaded entries, safe for concurrent reads.
type Registry struct {
	styles     map[string]styleEntry
	outputters map[string]outputterEntry
}

func newRegistry() *Registry {
	return &Registry{
		styles:     make(map[string]styleEntry),
		outputters: make(map[string]outputterEntry),
	}
}

// Style implements style.Resolver.
func (r *Registry) Style(name string) (style.Style, bool) {
	e, ok := r.styles[name]
	return e.style, ok
}

// OutputterConfig returns the configuration registered under name.
func (r *Registry) OutputterConfig(name string) (output.Config, bool) {
	e, ok := r.outputters[name]
	return e.config, ok
}

// Outputter builds the outputter registered under name. Every call builds a new
// instance; callers close it.
func (r *Registry) Outputter(name string, opts ...output.Option) (output.Outputter, error) {
	cfg, ok := r.OutputterConfig(name)
	if !ok {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: `%s`", errors.ErrOutputterMissing, name),
			"Registry", "Outputter", "look up outputter")
	}

	out, err := output.New(cfg, append([]output.Option{output.WithName(name)}, opts...)...)
	if err != nil {
		return nil, errors.Wrap(err, "Registry", "Outputter", fmt.Sprintf("build outputter %s", name))
	}
	return out, nil
}

// Lookup returns the entry of kind registered under name: a style.Style for
// KindStyles, an output.Config for KindOutputters.
func (r *Registry) Lookup(kind Kind, name string) (any, bool) {
	switch kind {
	case KindStyles:
		return r.Style(name)
	case KindOutputters:
		return r.OutputterConfig(name)
	default:
		return nil, false
	}
}

// Source reports which tier provided an entry.
func (r *Registry) Source(kind Kind, name string) (Tier, bool) {
	info, ok := r.Info(kind, name)
	return info.Tier, ok
}

// Info describes one entry.
func (r *Registry) Info(kind Kind, name string) (Info, bool) {
	switch kind {
	case KindStyles:
		e, ok := r.styles[name]
		return e.info, ok
	case KindOutputters:
		e, ok := r.outputters[name]
		return e.info, ok
	default:
		return Info{}, false
	}
}

// Names lists the entry names of kind in sorted order.
func (r *Registry) Names(kind Kind) []string {
	var names []string
	switch kind {
	case KindStyles:
		for name := range r.styles {
			names = append(names, name)
		}
	case KindOutputters:
		for name := range r.outputters {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Entries describes every entry of kind, sorted by name.
func (r *Registry) Entries(kind Kind) []Info {
	names := r.Names(kind)
	entries := make([]Info, 0, len(names))
	for _, name := range names {
		info, _ := r.Info(kind, name)
		entries = append(entries, info)
	}
	return entries
}
