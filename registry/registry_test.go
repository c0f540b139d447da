package registry

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/joli/errors"
	"github.com/c360/joli/output"
	"github.com/c360/joli/style"
)

func writeEntry(t *testing.T, root string, kind Kind, file, content string) {
	t.Helper()
	dir := filepath.Join(root, DirName, string(kind))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
}

func load(t *testing.T, home, workdir string, opts ...LoaderOption) *Registry {
	t.Helper()
	r, err := NewLoader(append([]LoaderOption{WithHome(home), WithWorkdir(workdir)}, opts...)...).Load()
	require.NoError(t, err)
	return r
}

func TestLoad_Bundled(t *testing.T) {
	r := load(t, "", "")

	assert.Equal(t, []string{"compact", "count", "first", "keys", "last", "pretty"}, r.Names(KindStyles))
	assert.Equal(t, []string{"console"}, r.Names(KindOutputters))

	tier, ok := r.Source(KindStyles, "count")
	require.True(t, ok)
	assert.Equal(t, TierBundled, tier)

	info, ok := r.Info(KindStyles, "keys")
	require.True(t, ok)
	assert.Equal(t, builtinPath, info.Path)
	assert.NotEmpty(t, info.Description)
}

func TestBundledStyles(t *testing.T) {
	r := load(t, "", "")
	engine := style.NewEngine(style.WithResolver(r))

	records := style.Sequence([]any{
		map[string]any{"b": float64(1), "a": float64(2)},
		nil,
		map[string]any{},
		map[string]any{"c": "x"},
	})

	tests := []struct {
		ref      style.Ref
		expected any
	}{
		{style.Named("count"), float64(4)},
		{style.Named("first"), map[string]any{"b": float64(1), "a": float64(2)}},
		{style.Named("last"), map[string]any{"c": "x"}},
		{style.Chain{style.Named("compact"), style.Named("count")}, float64(2)},
		{style.Chain{style.Named("compact"), style.Named("keys")}, []any{[]any{"a", "b"}, []any{"c"}}},
	}

	for _, tt := range tests {
		t.Run(style.Names(tt.ref)[0], func(t *testing.T) {
			out, err := engine.Apply(records, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.Any())
		})
	}

	out, err := engine.Apply(style.Scalar(map[string]any{"z": true}), style.Named("pretty"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"z": true}, out.Any())
}

func TestLoad_TierOverride(t *testing.T) {
	home, workdir := t.TempDir(), t.TempDir()

	writeEntry(t, home, KindStyles, "count.yaml", "description: home count\nreduce: {op: sum}")
	writeEntry(t, home, KindStyles, "titles.yml", "map: {pick: title}")
	writeEntry(t, home, KindStyles, "years.json", `{"map": {"pick": "year"}}`)
	writeEntry(t, workdir, KindStyles, "years.json", `{"description": "project years", "map": {"pick": "year"}}`)
	writeEntry(t, workdir, KindOutputters, "archive.yaml", "type: file\npath: "+filepath.Join(workdir, "out.jsonl"))

	r := load(t, home, workdir)

	tests := []struct {
		kind Kind
		name string
		tier Tier
	}{
		{KindStyles, "count", TierHome},
		{KindStyles, "titles", TierHome},
		{KindStyles, "years", TierWorkdir},
		{KindStyles, "keys", TierBundled},
		{KindOutputters, "archive", TierWorkdir},
		{KindOutputters, "console", TierBundled},
	}
	for _, tt := range tests {
		tier, ok := r.Source(tt.kind, tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.tier, tier, tt.name)
	}

	info, _ := r.Info(KindStyles, "years")
	assert.Equal(t, "project years", info.Description)
	assert.Equal(t, filepath.Join(workdir, DirName, "styles", "years.json"), info.Path)

	s, ok := r.Style("count")
	require.True(t, ok)
	assert.Equal(t, "home count", s.Description)
}

func TestLoad_SkipsUnrelatedFiles(t *testing.T) {
	workdir := t.TempDir()
	writeEntry(t, workdir, KindStyles, "README.md", "not a style")
	writeEntry(t, workdir, KindStyles, "legacy.js", "module.exports = {}")
	require.NoError(t, os.MkdirAll(filepath.Join(workdir, DirName, "styles", "nested.yaml"), 0o755))

	r := load(t, "", workdir, WithoutBundled())
	assert.Empty(t, r.Names(KindStyles))
}

func TestLoad_InvalidEntryFailsLoad(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		file    string
		content string
	}{
		{"malformed_yaml", KindStyles, "bad.yaml", "filter: [unclosed"},
		{"invalid_style", KindStyles, "bad.json", `{"reduce": {"op": "median"}}`},
		{"invalid_outputter", KindOutputters, "bad.yaml", "type: file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workdir := t.TempDir()
			writeEntry(t, workdir, tt.kind, tt.file, tt.content)

			_, err := NewLoader(WithHome(""), WithWorkdir(workdir)).Load()
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
			assert.Contains(t, err.Error(), tt.file)
		})
	}
}

func TestLoad_DuplicateNameInTier(t *testing.T) {
	workdir := t.TempDir()
	writeEntry(t, workdir, KindStyles, "titles.json", `{"map": {"pick": "title"}}`)
	writeEntry(t, workdir, KindStyles, "titles.yaml", "map: {pick: name}")

	_, err := NewLoader(WithHome(""), WithWorkdir(workdir), WithoutBundled()).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	assert.True(t, errors.IsInvalid(err))
	assert.Contains(t, err.Error(), "titles.json")
	assert.Contains(t, err.Error(), "titles.yaml")

	// the same name in different tiers is an override, not a duplicate
	home := t.TempDir()
	writeEntry(t, home, KindStyles, "years.yaml", "map: {pick: year}")
	other := t.TempDir()
	writeEntry(t, other, KindStyles, "years.json", `{"map": {"pick": "year"}}`)
	r := load(t, home, other)
	tier, ok := r.Source(KindStyles, "years")
	require.True(t, ok)
	assert.Equal(t, TierWorkdir, tier)
}

func TestLookup(t *testing.T) {
	r := load(t, "", "")

	v, ok := r.Lookup(KindStyles, "count")
	require.True(t, ok)
	assert.IsType(t, style.Style{}, v)

	v, ok = r.Lookup(KindOutputters, "console")
	require.True(t, ok)
	assert.Equal(t, output.TypeConsole, v.(output.Config).Type)

	_, ok = r.Lookup(KindStyles, "missing")
	assert.False(t, ok)
	_, ok = r.Lookup(Kind("plugins"), "count")
	assert.False(t, ok)
	assert.Empty(t, r.Names(Kind("plugins")))
}

func TestRegistry_IsResolver(t *testing.T) {
	r := load(t, "", "")

	_, err := style.NewEngine(style.WithResolver(r)).Apply(style.Sequence(nil), style.Named("nope"))
	var notFound *errors.StyleNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.Name)
}

func TestRegistry_Outputter(t *testing.T) {
	r := load(t, "", "")

	var buf bytes.Buffer
	out, err := r.Outputter("console", output.WithWriter(&buf))
	require.NoError(t, err)
	require.NoError(t, out.Output(context.Background(), "hello"))
	assert.Equal(t, "hello\n", buf.String())

	_, err = r.Outputter("printer")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrOutputterMissing)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("styles")
	require.NoError(t, err)
	assert.Equal(t, KindStyles, k)

	_, err = ParseKind("plugins")
	assert.ErrorIs(t, err, errors.ErrUnknownKind)
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "bundled", TierBundled.String())
	assert.Equal(t, "home", TierHome.String())
	assert.Equal(t, "workdir", TierWorkdir.String())
	assert.Equal(t, "unknown", Tier(9).String())
}

func TestDefault_IsMemoized(t *testing.T) {
	first, firstErr := Default()
	second, secondErr := Default()

	assert.Same(t, first, second)
	assert.Equal(t, firstErr, secondErr)
}
