package registry

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/c360/joli/errors"
	"github.com/c360/joli/output"
	"github.com/c360/joli/styledef"
)

// DirName is the per-user and per-project registry directory.
const DirName = ".joli"

// maxEntrySize bounds a single definition file
const maxEntrySize = 1 << 20

// Loader builds a Registry from the bundled definitions and the home and
// working directory tiers.
type Loader struct {
	home    string
	workdir string
	bundled bool
	logger  *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHome sets the directory searched for .joli instead of the user's home.
// An empty dir skips the tier.
func WithHome(dir string) LoaderOption {
	return func(l *Loader) {
		l.home = dir
	}
}

// WithWorkdir sets the directory searched for .joli instead of the process
// working directory. An empty dir skips the tier.
func WithWorkdir(dir string) LoaderOption {
	return func(l *Loader) {
		l.workdir = dir
	}
}

// WithoutBundled skips the definitions shipped with joli.
func WithoutBundled() LoaderOption {
	return func(l *Loader) {
		l.bundled = false
	}
}

// WithLogger sets the logger for skipped files
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader rooted at the user's home and working directories.
// Either tier is skipped when the directory cannot be determined.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{bundled: true, logger: slog.Default()}
	if home, err := os.UserHomeDir(); err == nil {
		l.home = home
	}
	if wd, err := os.Getwd(); err == nil {
		l.workdir = wd
	}

	for _, opt := range opts {
		opt(l)
	}
	return l
}

type source struct {
	tier Tier
	fsys fs.FS
	root string // path inside fsys holding the kind directories
	base string // prefix used to report file paths
}

func (l *Loader) sources() []source {
	var sources []source
	if l.bundled {
		sources = append(sources, source{tier: TierBundled, fsys: bundledFS, root: bundledRoot, base: "(bundled)"})
	}
	for _, tier := range []struct {
		tier Tier
		dir  string
	}{{TierHome, l.home}, {TierWorkdir, l.workdir}} {
		if tier.dir == "" {
			continue
		}
		dir := filepath.Join(tier.dir, DirName)
		sources = append(sources, source{tier: tier.tier, fsys: os.DirFS(dir), root: ".", base: dir})
	}
	return sources
}

// Load reads every tier. A definition that fails to decode or compile fails the
// whole load; missing directories are skipped.
func (l *Loader) Load() (*Registry, error) {
	r := newRegistry()

	if l.bundled {
		for _, s := range builtinStyles() {
			r.styles[s.Name] = styleEntry{style: s, info: Info{
				Name: s.Name, Kind: KindStyles, Tier: TierBundled, Path: builtinPath, Description: s.Description,
			}}
		}
	}

	for _, src := range l.sources() {
		if err := l.loadKind(r, src, KindStyles); err != nil {
			return nil, err
		}
		if err := l.loadKind(r, src, KindOutputters); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (l *Loader) loadKind(r *Registry, src source, kind Kind) error {
	dir := path.Join(src.root, string(kind))

	files, err := fs.ReadDir(src.fsys, dir)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.WrapFatal(err, "Loader", "Load", fmt.Sprintf("read %s", filepath.Join(src.base, string(kind))))
	}

	// name -> file, a name may only be defined once per tier
	seen := make(map[string]string, len(files))
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		format := styledef.FormatFromPath(file.Name())
		if format == "" {
			l.logger.Debug("Skipping registry file",
				"component", "registry", "kind", kind, "file", file.Name())
			continue
		}

		name := strings.TrimSuffix(file.Name(), path.Ext(file.Name()))
		reported := filepath.Join(src.base, string(kind), file.Name())
		if prev, dup := seen[name]; dup {
			return errors.WrapInvalid(
				fmt.Errorf("%w: %s `%s` defined by both %s and %s", errors.ErrInvalidConfig, kind, name, prev, file.Name()),
				"Loader", "Load", "load "+reported)
		}
		seen[name] = file.Name()

		data, err := readEntry(src.fsys, path.Join(dir, file.Name()))
		if err != nil {
			return errors.WrapInvalid(err, "Loader", "Load", "read "+reported)
		}

		info := Info{Name: name, Kind: kind, Tier: src.tier, Path: reported}
		switch kind {
		case KindStyles:
			err = r.addStyle(name, data, format, info)
		case KindOutputters:
			err = r.addOutputter(name, data, format, info)
		}
		if err != nil {
			return errors.Wrap(err, "Loader", "Load", "load "+reported)
		}
	}
	return nil
}

func readEntry(fsys fs.FS, name string) ([]byte, error) {
	stat, err := fs.Stat(fsys, name)
	if err != nil {
		return nil, err
	}
	if !stat.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file")
	}
	if stat.Size() > maxEntrySize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", stat.Size(), maxEntrySize)
	}
	return fs.ReadFile(fsys, name)
}

func (r *Registry) addStyle(name string, data []byte, format string, info Info) error {
	def, err := styledef.Decode(data, format)
	if err != nil {
		return err
	}
	s, err := def.Compile(name)
	if err != nil {
		return err
	}

	info.Description = s.Description
	r.styles[name] = styleEntry{style: s, info: info}
	return nil
}

func (r *Registry) addOutputter(name string, data []byte, format string, info Info) error {
	var cfg output.Config
	// YAML is a superset of JSON, so one decoder serves both formats.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return errors.WrapInvalid(err, "Registry", "addOutputter", "decode "+format)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	info.Description = cfg.Description
	r.outputters[name] = outputterEntry{config: cfg, info: info}
	return nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the process-wide registry, loading it on first use. The result,
// including a load error, is cached for the life of the process.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = NewLoader().Load()
	})
	return defaultRegistry, defaultErr
}
