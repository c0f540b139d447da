package stream

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/joli/errors"
	"github.com/c360/joli/metric"
	"github.com/c360/joli/output"
	"github.com/c360/joli/style"
)

// collector records everything a sink receives
type collector struct {
	mu     sync.Mutex
	chunks []any
	ends   int
	err    error
}

func (c *collector) Emit(_ context.Context, chunk any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.chunks = append(c.chunks, chunk)
	return nil
}

func (c *collector) End() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ends++
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func onlyYear(year float64) style.Style {
	return style.Style{
		Name: "recent",
		Filter: func(record any) bool {
			m, ok := record.(map[string]any)
			return ok && m["year"] == year
		},
	}
}

func TestAdapter_ValidJSON(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink)

	n, err := a.Write([]byte(`{"title":"Avatar","year":2009}`))
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	require.Len(t, sink.chunks, 1)
	assert.Equal(t, map[string]any{"title": "Avatar", "year": float64(2009)}, sink.chunks[0])
}

func TestAdapter_NoisyText(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink)

	require.NoError(t, a.WriteValue(context.Background(), `INFO {"level":"warn"} done`))
	require.Len(t, sink.chunks, 1)
	assert.Equal(t, map[string]any{
		"level":  "warn",
		"_extra": []any{"INFO ", " done"},
	}, sink.chunks[0])
}

func TestAdapter_PlainText(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink)

	require.NoError(t, a.WriteValue(context.Background(), "just words"))
	assert.Equal(t, []any{map[string]any{"text": "just words"}}, sink.chunks)
}

func TestAdapter_StrictRejectsNoise(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink, WithStrict(true))

	err := a.WriteValue(context.Background(), `INFO {"level":"warn"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrParse)
	assert.Empty(t, sink.chunks)
}

func TestAdapter_DecodedValue(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink)

	require.NoError(t, a.WriteValue(context.Background(), []any{float64(1), float64(2)}))
	assert.Equal(t, []any{[]any{float64(1), float64(2)}}, sink.chunks)
}

func TestAdapter_FilteredScalarNotEmitted(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink, WithStyle(onlyYear(2009)))

	ctx := context.Background()
	require.NoError(t, a.WriteValue(ctx, `{"title":"Titanic","year":1997}`))
	require.NoError(t, a.WriteValue(ctx, `{"title":"Avatar","year":2009}`))

	require.Len(t, sink.chunks, 1)
	assert.Equal(t, "Avatar", sink.chunks[0].(map[string]any)["title"])
}

func TestAdapter_NullNotEmitted(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink)

	require.NoError(t, a.WriteValue(context.Background(), "null"))
	assert.Empty(t, sink.chunks)
}

func TestAdapter_FalsyValuesEmitted(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink)

	ctx := context.Background()
	for _, chunk := range []string{"0", "false", `""`, "[]", "{}"} {
		require.NoError(t, a.WriteValue(ctx, chunk))
	}
	assert.Equal(t, []any{float64(0), false, "", []any{}, map[string]any{}}, sink.chunks)
}

func TestAdapter_NamedStyle(t *testing.T) {
	sink := &collector{}
	engine := style.NewEngine(style.WithResolver(style.Styles{"recent": onlyYear(2009)}))
	a := New(engine, sink, WithStyle(style.Named("recent")))

	require.NoError(t, a.WriteValue(context.Background(), `[{"year":2009},{"year":1997}]`))
	assert.Equal(t, []any{[]any{map[string]any{"year": float64(2009)}}}, sink.chunks)

	missing := New(engine, sink, WithStyle(style.Named("nope")))
	err := missing.WriteValue(context.Background(), `{}`)
	var snf *errors.StyleNotFoundError
	require.ErrorAs(t, err, &snf)
	assert.Equal(t, "nope", snf.Name)
}

func TestAdapter_JSONOutput(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink, WithJSON(true))

	require.NoError(t, a.WriteValue(context.Background(), `{"a":[1,2]}`))
	require.Len(t, sink.chunks, 1)
	assert.Equal(t, "{\n  \"a\": [\n    1,\n    2\n  ]\n}", sink.chunks[0])
}

func TestAdapter_EndOnce(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink)

	require.NoError(t, a.End())
	require.NoError(t, a.End())
	require.NoError(t, a.Close())
	assert.Equal(t, 1, sink.ends)
}

func TestAdapter_WriteAfterEnd(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink)
	require.NoError(t, a.End())

	_, err := a.Write([]byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrClosed)
	assert.True(t, errors.IsInvalid(err))
	assert.Empty(t, sink.chunks)
}

func TestAdapter_EmitFailure(t *testing.T) {
	boom := stderrors.New("sink down")
	sink := &collector{err: boom}
	a := New(nil, sink)

	n, err := a.Write([]byte(`{}`))
	require.Error(t, err)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "Adapter.Write")
}

func TestAdapter_Pump(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink)

	input := "{\"n\":1}\n\n   \n{\"n\":2}\r\nplain\n"
	require.NoError(t, a.Pump(context.Background(), strings.NewReader(input)))

	assert.Equal(t, []any{
		map[string]any{"n": float64(1)},
		map[string]any{"n": float64(2)},
		map[string]any{"text": "plain"},
	}, sink.chunks)
	assert.Zero(t, sink.ends, "Pump must not end the adapter")
}

func TestAdapter_PumpStopsOnError(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink, WithStrict(true))

	err := a.Pump(context.Background(), strings.NewReader("{\"n\":1}\nbroken\n{\"n\":3}\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrParse)
	assert.Len(t, sink.chunks, 1)
}

func TestAdapter_PumpContinueOnError(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink, WithStrict(true), WithContinueOnError(true), WithLogger(quietLogger()))

	err := a.Pump(context.Background(), strings.NewReader("{\"n\":1}\nbroken\n{\"n\":3}\n"))
	require.NoError(t, err)
	assert.Len(t, sink.chunks, 2)
}

func TestAdapter_PumpCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &collector{}
	err := New(nil, sink).Pump(ctx, strings.NewReader("{}\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.chunks)
}

func TestAdapter_ChunksIndependent(t *testing.T) {
	sink := &collector{}
	a := New(nil, sink)

	ctx := context.Background()
	require.NoError(t, a.WriteValue(ctx, `{"a":`))
	require.NoError(t, a.WriteValue(ctx, `1}`))

	// a split object is never reassembled across chunks
	assert.Equal(t, []any{
		map[string]any{"text": `{"a":`},
		map[string]any{"text": `1}`},
	}, sink.chunks)
}

func TestOutputSink(t *testing.T) {
	var buf strings.Builder
	out, err := output.New(output.Config{Type: output.TypeConsole}, output.WithWriter(&buf))
	require.NoError(t, err)

	a := New(nil, OutputSink(out))
	require.NoError(t, a.WriteValue(context.Background(), `{"k":"v"}`))
	require.NoError(t, a.WriteValue(context.Background(), "hello"))
	require.NoError(t, a.End())

	assert.Equal(t, "{\"k\":\"v\"}\n{\"text\":\"hello\"}\n", buf.String())
}

func TestFuncSink_NilFuncs(t *testing.T) {
	var s FuncSink
	assert.NoError(t, s.Emit(context.Background(), 1))
	assert.NoError(t, s.End())
}

func TestAdapter_Metrics(t *testing.T) {
	m, err := NewMetrics(metric.NewTestRegistry())
	require.NoError(t, err)

	sink := &collector{}
	a := New(nil, sink, WithMetrics(m), WithStyle(onlyYear(2009)), WithStrict(true))

	ctx := context.Background()
	require.NoError(t, a.WriteValue(ctx, `{"year":2009}`))
	require.NoError(t, a.WriteValue(ctx, `{"year":1997}`))
	require.Error(t, a.WriteValue(ctx, `nope`))

	assert.Equal(t, float64(3), testutil.ToFloat64(m.chunks))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.outcomes.WithLabelValues(outcomeEmitted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.outcomes.WithLabelValues(outcomeDropped)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.outcomes.WithLabelValues(outcomeError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.errors.WithLabelValues("parse")))
}
