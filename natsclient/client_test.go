package natsclient

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/joli/errors"
)

func TestConnectionStatus_String(t *testing.T) {
	tests := map[ConnectionStatus]string{
		StatusDisconnected:   "disconnected",
		StatusConnecting:     "connecting",
		StatusConnected:      "connected",
		StatusReconnecting:   "reconnecting",
		StatusClosed:         "closed",
		ConnectionStatus(42): "unknown",
	}
	for status, expected := range tests {
		assert.Equal(t, expected, status.String())
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	assert.Equal(t, "nats://localhost:4222", c.URL())
	assert.Equal(t, StatusDisconnected, c.Status())
	assert.False(t, c.IsHealthy())
	assert.Equal(t, -1, c.maxReconnects)
	assert.Equal(t, "joli", c.clientName)
}

func TestNewClient_Options(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	c, err := NewClient("nats://example:4222",
		WithMaxReconnects(3),
		WithReconnectWait(time.Second),
		WithTimeout(2*time.Second),
		WithDrainTimeout(time.Second),
		WithHandlerTimeout(time.Second),
		WithLogger(logger),
		WithName("bridge"),
		WithCredentials("user", "secret"),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, c.maxReconnects)
	assert.Equal(t, 2*time.Second, c.timeout)
	assert.Same(t, logger, c.logger)
	assert.Equal(t, "bridge", c.clientName)
	assert.Len(t, c.options(), 10, "credentials add a user info option")
}

func TestNewClient_InvalidOptions(t *testing.T) {
	for name, opt := range map[string]ClientOption{
		"timeout":       WithTimeout(0),
		"drain_timeout": WithDrainTimeout(-time.Second),
		"credentials":   WithCredentials("user", ""),
		"token":         WithToken(""),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewClient("nats://localhost:4222", opt)
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestClient_NotConnected(t *testing.T) {
	c, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)
	ctx := context.Background()

	err = c.Publish(ctx, "joli.out", []byte("{}"))
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.True(t, errors.IsTransient(err))

	err = c.Subscribe(ctx, "joli.in", func(context.Context, *Msg) {})
	assert.ErrorIs(t, err, ErrNotConnected)

	assert.ErrorIs(t, c.Flush(ctx), ErrNotConnected)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, StatusClosed, c.Status())

	err = c.Connect(context.Background())
	assert.True(t, errors.IsFatal(err))
}

func TestClient_ConnectCancelled(t *testing.T) {
	c, err := NewClient("nats://127.0.0.1:1", WithMaxReconnects(0), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = c.Connect(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	assert.Equal(t, StatusDisconnected, c.Status())
}
