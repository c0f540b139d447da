//go:build integration

package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/joli/natsclient"
)

func TestIntegration_BridgeRoundTrip(t *testing.T) {
	tc := natsclient.NewTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	received := make(chan *natsclient.Msg, 4)
	require.NoError(t, tc.Client.Subscribe(ctx, "joli.out", func(_ context.Context, msg *natsclient.Msg) {
		received <- msg
	}))

	b, err := NewBridge(tc.Client, nil, BridgeConfig{Subject: "joli.in.*", OutputSubject: "joli.out"},
		WithStyle(onlyYear(2009)), WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, b.Start(ctx))
	defer b.Stop()
	require.NoError(t, tc.Client.Flush(ctx))

	require.NoError(t, tc.Client.Publish(ctx, "joli.in.a", []byte(`{"title":"Titanic","year":1997}`)))
	require.NoError(t, tc.Client.Publish(ctx, "joli.in.b", []byte(`{"title":"Avatar","year":2009}`)))

	select {
	case msg := <-received:
		assert.JSONEq(t, `{"title":"Avatar","year":2009}`, string(msg.Data))
		assert.Equal(t, "joli.in.b", msg.Headers[HeaderSource])
		assert.NotEmpty(t, msg.Headers[HeaderChunkID])
	case <-ctx.Done():
		t.Fatal("no styled chunk received")
	}

	select {
	case msg := <-received:
		t.Fatalf("filtered chunk was published: %s", msg.Data)
	case <-time.After(300 * time.Millisecond):
	}
}
