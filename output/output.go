// Package output delivers styled values to their destination: the terminal, a
// file, an HTTP endpoint, a NATS subject or connected websocket clients.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/c360/joli/errors"
)

// Outputter presents one value. Implementations that hold resources also
// implement io.Closer.
type Outputter interface {
	Output(ctx context.Context, data any) error
}

// OutputterFunc adapts a function to Outputter.
type OutputterFunc func(ctx context.Context, data any) error

// Output implements Outputter.
func (f OutputterFunc) Output(ctx context.Context, data any) error {
	return f(ctx, data)
}

// Outputter types
const (
	TypeConsole   = "console"
	TypeFile      = "file"
	TypeWebhook   = "webhook"
	TypeNATS      = "nats"
	TypeWebSocket = "websocket"
)

// Config selects and configures an outputter. Only the fields of the chosen Type
// are read.
type Config struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// console
	Indent bool `json:"indent,omitempty" yaml:"indent,omitempty"`

	// file
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	Format     string `json:"format,omitempty" yaml:"format,omitempty"` // json, jsonl, raw
	Append     bool   `json:"append,omitempty" yaml:"append,omitempty"`
	BufferSize int    `json:"buffer_size,omitempty" yaml:"buffer_size,omitempty"`

	// webhook
	URL         string            `json:"url,omitempty" yaml:"url,omitempty"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Timeout     int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // seconds
	RetryCount  int               `json:"retry_count,omitempty" yaml:"retry_count,omitempty"`
	ContentType string            `json:"content_type,omitempty" yaml:"content_type,omitempty"`

	// nats
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`

	// websocket
	Addr   string `json:"addr,omitempty" yaml:"addr,omitempty"` // host:port to listen on
	WSPath string `json:"ws_path,omitempty" yaml:"ws_path,omitempty"`
}

// Validate checks the fields required by Type.
func (c Config) Validate() error {
	invalid := func(reason string) error {
		return errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrInvalidConfig, reason),
			"Config", "Validate", "check "+c.Type+" outputter")
	}

	switch c.Type {
	case TypeConsole:
	case TypeFile:
		if c.Path == "" {
			return invalid("path is required")
		}
		switch c.Format {
		case "", FormatJSON, FormatJSONL, FormatRaw:
		default:
			return invalid("format must be one of: json, jsonl, raw")
		}
		if c.BufferSize < 0 {
			return invalid("buffer_size cannot be negative")
		}
	case TypeWebhook:
		if c.URL == "" {
			return invalid("url is required")
		}
		if c.Timeout < 0 || c.Timeout > 300 {
			return invalid("timeout must be between 0 and 300 seconds")
		}
		if c.RetryCount < 0 || c.RetryCount > 10 {
			return invalid("retry_count must be between 0 and 10")
		}
	case TypeNATS:
		if c.Subject == "" {
			return invalid("subject is required")
		}
	case TypeWebSocket:
		if c.Addr == "" {
			return invalid("addr is required")
		}
	default:
		return errors.WrapInvalid(fmt.Errorf("%w: unknown outputter type %q", errors.ErrInvalidConfig, c.Type),
			"Config", "Validate", "check type")
	}
	return nil
}

// Publisher is the part of natsclient.Client the nats outputter needs.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

type options struct {
	logger     *slog.Logger
	metrics    *Metrics
	stdout     io.Writer
	httpClient *http.Client
	publisher  Publisher
	name       string
}

// Option configures outputters built by New.
type Option func(*options)

// WithLogger sets the logger used for delivery failures
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records deliveries into m
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithWriter redirects the console outputter
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

// WithHTTPClient replaces the webhook HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithPublisher supplies the NATS connection for the nats outputter
func WithPublisher(p Publisher) Option {
	return func(o *options) {
		o.publisher = p
	}
}

// WithName labels metrics and log lines, usually with the registry entry name
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// New builds the outputter described by cfg.
func New(cfg Config, opts ...Option) (Outputter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: slog.Default(), stdout: os.Stdout, name: cfg.Type}
	for _, opt := range opts {
		opt(&o)
	}

	var out Outputter
	switch cfg.Type {
	case TypeConsole:
		out = NewConsole(o.stdout, cfg.Indent)
	case TypeFile:
		f, err := NewFile(cfg)
		if err != nil {
			return nil, err
		}
		out = f
	case TypeWebhook:
		out = NewWebhook(cfg, o.httpClient)
	case TypeNATS:
		if o.publisher == nil {
			return nil, errors.WrapFatal(errors.ErrNoConnection, "Outputter", "New", "nats outputter needs a publisher")
		}
		out = NewNATS(o.publisher, cfg.Subject)
	case TypeWebSocket:
		ws, err := NewWebSocket(cfg, o.logger)
		if err != nil {
			return nil, err
		}
		out = ws
	}

	return instrument(out, cfg.Type, o), nil
}

// Marshal renders data the way outputters send it: strings verbatim, everything
// else as JSON, indented with two spaces when indent is set.
func Marshal(data any, indent bool) ([]byte, error) {
	if s, ok := data.(string); ok {
		return []byte(s), nil
	}
	if indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// Close closes out when it holds resources.
func Close(out Outputter) error {
	if c, ok := out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
