package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every registry and config tier at empty directories
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"JOLI_CONFIG", "JOLI_STYLE", "JOLI_OUTPUTTER", "JOLI_LOG_LEVEL", "JOLI_METRICS_PORT", "JOLI_FRAMING"} {
		t.Setenv(key, "")
	}
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "joli version "+Version)
}

func TestRun_FormatStdin(t *testing.T) {
	isolate(t)

	code, stdout, stderr := runCLI(t, "{\"b\":1,\"a\":2}\nhello\n\n")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "{\"a\":2,\"b\":1}\n{\"text\":\"hello\"}\n", stdout)
}

func TestRun_FormatWithStyle(t *testing.T) {
	isolate(t)

	code, stdout, stderr := runCLI(t, `{"b":1,"a":2}`+"\n", "format", "--style", "keys")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "[\"a\",\"b\"]\n", stdout)
}

func TestRun_FormatFiles(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "a.log")
	second := filepath.Join(dir, "b.log")
	require.NoError(t, os.WriteFile(first, []byte("{\"n\":1}\n"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("{\"n\":2}\n"), 0o600))

	code, stdout, stderr := runCLI(t, "", first, second)
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "{\"n\":1}\n{\"n\":2}\n", stdout)
}

const moviesJSON = `[
  {"title": "Avatar", "year": 2009},
  {"title": "Titanic", "year": 1997}
]
`

func TestRun_FormatCountFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "movies.json")
	require.NoError(t, os.WriteFile(path, []byte(moviesJSON), 0o600))

	code, stdout, stderr := runCLI(t, "", "format", "--style", "count", path)
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "2\n", stdout)
}

func TestRun_FormatChainOnArray(t *testing.T) {
	isolate(t)

	code, stdout, stderr := runCLI(t, `[{"a":1},null,{},{"b":2}]`+"\n", "format", "--style", "compact,count")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "2\n", stdout)

	code, stdout, stderr = runCLI(t, "[\n  {\"a\": 1},\n  null,\n  {\"b\": 2}\n]\n", "format", "-s", "compact,keys")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "[[\"a\"],[\"b\"]]\n", stdout)
}

func TestRun_FormatFraming(t *testing.T) {
	isolate(t)

	code, stdout, stderr := runCLI(t, moviesJSON, "format", "--framing", "whole", "-s", "count")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "2\n", stdout)

	code, stdout, stderr = runCLI(t, "{\"n\":1}\n{\"n\":2}\n", "format", "--framing", "lines", "-s", "count")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "{\"n\":1}\n{\"n\":2}\n", stdout, "reduce leaves a single record unchanged")

	t.Setenv("JOLI_FRAMING", "lines")
	code, stdout, stderr = runCLI(t, "[\n1,\n2\n]\n", "format")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, 4, strings.Count(stdout, "\n"), "configured framing applies without the flag")

	code, _, stderr = runCLI(t, "{}\n", "format", "--framing", "paragraphs")
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, stderr, "framing")
}

func TestRun_FormatJSON(t *testing.T) {
	isolate(t)

	code, stdout, stderr := runCLI(t, `{"a":1}`+"\n", "format", "--json")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "{\n  \"a\": 1\n}\n", stdout)
}

func TestRun_UnknownStyle(t *testing.T) {
	isolate(t)

	code, stdout, stderr := runCLI(t, "{}\n", "format", "-s", "compact,nope")
	assert.Equal(t, exitInvalid, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "style `nope` not found")
}

func TestRun_StrictFailure(t *testing.T) {
	isolate(t)

	code, stdout, stderr := runCLI(t, "{\"ok\":1}\nnot json\n", "format", "--strict")
	assert.Equal(t, exitInvalid, code)
	assert.Equal(t, "{\"ok\":1}\n", stdout)
	assert.Contains(t, stderr, "parse")

	code, stdout, _ = runCLI(t, "{\"ok\":1}\nnot json\n{\"ok\":2}\n", "format", "--strict", "-k")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "{\"ok\":1}\n{\"ok\":2}\n", stdout)
}

func TestRun_Styles(t *testing.T) {
	isolate(t)

	code, stdout, stderr := runCLI(t, "", "styles")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "NAME")
	for _, name := range []string{"keys", "compact", "pretty", "count", "first", "last"} {
		assert.Contains(t, stdout, name)
	}
	assert.Contains(t, stdout, "bundled")
}

func TestRun_Outputters(t *testing.T) {
	isolate(t)

	code, stdout, stderr := runCLI(t, "", "outputters")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "console")
}

func TestRun_ConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "joli.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stream:\n  style: keys\nnats:\n  token: s3cret\n"), 0o600))

	code, stdout, stderr := runCLI(t, `{"z":0,"y":0}`+"\n", "--config", path)
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "[\"y\",\"z\"]\n", stdout)

	code, stdout, _ = runCLI(t, "", "--config", path, "config")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, `"style": "keys"`)
	assert.NotContains(t, stdout, "s3cret")
}

func TestRun_ConfigFromEnvironment(t *testing.T) {
	isolate(t)

	// an empty or blank JOLI_CONFIG means no explicit file
	for _, value := range []string{"", "  "} {
		t.Setenv("JOLI_CONFIG", value)
		code, stdout, stderr := runCLI(t, `{"a":1}`+"\n")
		require.Equal(t, exitOK, code, stderr)
		assert.Equal(t, "{\"a\":1}\n", stdout)
	}

	path := filepath.Join(t.TempDir(), "joli.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stream:\n  style: keys\n"), 0o600))
	t.Setenv("JOLI_CONFIG", path)

	code, stdout, stderr := runCLI(t, `{"z":0,"y":0}`+"\n")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "[\"y\",\"z\"]\n", stdout)
}

func TestRun_InvalidGlobals(t *testing.T) {
	isolate(t)

	code, _, stderr := runCLI(t, "", "--log-level", "loud", "styles")
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, stderr, "log.level")

	code, _, _ = runCLI(t, "", "--no-such-flag")
	assert.Equal(t, exitInvalid, code)
}

func TestRun_BridgeRequiresSubjects(t *testing.T) {
	isolate(t)

	code, _, stderr := runCLI(t, "", "bridge", "--subject", "in")
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, stderr, "subject")
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger("warn", "json", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "component", "test")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"service":"joli"`)
}
