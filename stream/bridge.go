package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/c360/joli/errors"
	"github.com/c360/joli/natsclient"
	"github.com/c360/joli/output"
	"github.com/c360/joli/style"
)

// Message headers set on every published chunk
const (
	HeaderChunkID = "Joli-Chunk-Id"
	HeaderSource  = "Joli-Source-Subject"
)

// Conn is the part of natsclient.Client the bridge uses.
type Conn interface {
	Subscribe(ctx context.Context, subject string, handler natsclient.Handler) error
	PublishMsg(ctx context.Context, subject string, data []byte, headers map[string]string) error
}

// BridgeConfig names the subjects a bridge connects.
type BridgeConfig struct {
	Subject       string // subscribed subject, wildcards allowed
	OutputSubject string // where emitted chunks are published
}

// Validate checks that both subjects are set.
func (c BridgeConfig) Validate() error {
	if c.Subject == "" || c.OutputSubject == "" {
		return errors.WrapInvalid(fmt.Errorf("%w: subject and output subject are required", errors.ErrMissingConfig),
			"Bridge", "Validate", "check subjects")
	}
	return nil
}

// Bridge runs every message of one NATS subject through an Adapter and publishes
// the emitted chunks to another subject.
type Bridge struct {
	conn    Conn
	config  BridgeConfig
	adapter *Adapter
	logger  *slog.Logger

	mu      sync.Mutex
	started bool
}

// NewBridge creates a bridge. Adapter options apply to the embedded adapter;
// WithContinueOnError is implied since one bad message must not stop the bridge.
func NewBridge(conn Conn, engine *style.Engine, cfg BridgeConfig, opts ...Option) (*Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, errors.WrapFatal(errors.ErrNoConnection, "Bridge", "NewBridge", "check connection")
	}

	b := &Bridge{conn: conn, config: cfg}
	b.adapter = New(engine, FuncSink{EmitFunc: b.publish}, opts...)
	b.logger = b.adapter.logger
	return b, nil
}

// Start subscribes. Messages are handled until ctx is done or the connection
// closes.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Bridge", "Start", "check state")
	}
	if err := b.conn.Subscribe(ctx, b.config.Subject, b.handle); err != nil {
		return errors.Wrap(err, "Bridge", "Start", "subscribe to "+b.config.Subject)
	}

	b.started = true
	b.logger.Info("Bridge started",
		"component", "bridge",
		"subject", b.config.Subject,
		"output_subject", b.config.OutputSubject)
	return nil
}

func (b *Bridge) handle(ctx context.Context, msg *natsclient.Msg) {
	if err := b.adapter.WriteValue(withSource(ctx, msg.Subject), string(msg.Data)); err != nil {
		b.logger.Warn("Dropping message",
			"component", "bridge",
			"subject", msg.Subject,
			"class", errors.Classify(err).String(),
			"error", err)
	}
}

func (b *Bridge) publish(ctx context.Context, chunk any) error {
	data, err := output.Marshal(chunk, false)
	if err != nil {
		return errors.WrapInvalid(err, "Bridge", "publish", "marshal chunk")
	}

	headers := map[string]string{HeaderChunkID: uuid.NewString()}
	if subject, ok := ctx.Value(sourceKey{}).(string); ok {
		headers[HeaderSource] = subject
	}
	return b.conn.PublishMsg(ctx, b.config.OutputSubject, data, headers)
}

// Stop ends the embedded adapter; messages arriving afterwards are dropped.
func (b *Bridge) Stop() error {
	return b.adapter.End()
}

type sourceKey struct{}

func withSource(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, sourceKey{}, subject)
}
