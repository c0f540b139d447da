package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/c360/joli/errors"
)

// Config is the complete joli configuration. Every section is optional; zero
// values are replaced by Defaults before files are merged in.
type Config struct {
	Styles  StylesConfig  `json:"styles" yaml:"styles"`
	Output  OutputConfig  `json:"output" yaml:"output"`
	Stream  StreamConfig  `json:"stream" yaml:"stream"`
	NATS    NATSConfig    `json:"nats" yaml:"nats"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// StylesConfig locates the registry tiers. Empty directories fall back to the
// user's home and the working directory.
type StylesConfig struct {
	Home      string `json:"home,omitempty" yaml:"home,omitempty"`
	Workdir   string `json:"workdir,omitempty" yaml:"workdir,omitempty"`
	NoBundled bool   `json:"no_bundled,omitempty" yaml:"no_bundled,omitempty"`
}

// OutputConfig names the registry outputter chunks are sent to.
type OutputConfig struct {
	Outputter string `json:"outputter" yaml:"outputter"`
}

// StreamConfig holds the defaults of the format command.
type StreamConfig struct {
	Style           string `json:"style,omitempty" yaml:"style,omitempty"` // comma separated chain
	JSON            bool   `json:"json,omitempty" yaml:"json,omitempty"`
	Strict          bool   `json:"strict,omitempty" yaml:"strict,omitempty"`
	ContinueOnError bool   `json:"continue_on_error,omitempty" yaml:"continue_on_error,omitempty"`
	Framing         string `json:"framing,omitempty" yaml:"framing,omitempty"` // lines, documents or whole
}

// NATSConfig defines the NATS connection and the subjects bridged by joli bridge.
type NATSConfig struct {
	URLs          []string      `json:"urls,omitempty" yaml:"urls,omitempty"`
	MaxReconnects int           `json:"max_reconnects,omitempty" yaml:"max_reconnects,omitempty"`
	ReconnectWait time.Duration `json:"reconnect_wait,omitempty" yaml:"reconnect_wait,omitempty"`
	Timeout       time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Username      string        `json:"username,omitempty" yaml:"username,omitempty"`
	Password      string        `json:"password,omitempty" yaml:"password,omitempty"`
	Token         string        `json:"token,omitempty" yaml:"token,omitempty"`

	Subject       string `json:"subject,omitempty" yaml:"subject,omitempty"`
	OutputSubject string `json:"output_subject,omitempty" yaml:"output_subject,omitempty"`
}

// URL joins the configured server URLs the way nats.Connect expects them.
func (n NATSConfig) URL() string {
	return strings.Join(n.URLs, ",")
}

// MetricsConfig controls the Prometheus endpoint. Port 0 disables it.
type MetricsConfig struct {
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Defaults returns the configuration used when no file sets a value.
func Defaults() *Config {
	return &Config{
		Output: OutputConfig{Outputter: "console"},
		Stream: StreamConfig{Framing: "documents"},
		NATS: NATSConfig{
			URLs:          []string{"nats://localhost:4222"},
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			Timeout:       5 * time.Second,
		},
		Metrics: MetricsConfig{Path: "/metrics"},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Validate checks the configuration for values no component can use.
func (c *Config) Validate() error {
	if c.Output.Outputter == "" {
		return invalid("output.outputter is required")
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid(fmt.Sprintf("log.level %q must be one of: debug, info, warn, error", c.Log.Level))
	}

	c.Log.Format = strings.ToLower(c.Log.Format)
	switch c.Log.Format {
	case "json", "text":
	default:
		return invalid(fmt.Sprintf("log.format %q must be json or text", c.Log.Format))
	}

	c.Stream.Framing = strings.ToLower(c.Stream.Framing)
	switch c.Stream.Framing {
	case "lines", "documents", "whole":
	default:
		return invalid(fmt.Sprintf("stream.framing %q must be one of: lines, documents, whole", c.Stream.Framing))
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return invalid(fmt.Sprintf("metrics.port %d out of range", c.Metrics.Port))
	}
	if c.Metrics.Port > 0 && !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path must start with /")
	}

	if err := c.NATS.validate(); err != nil {
		return err
	}
	return nil
}

func (n NATSConfig) validate() error {
	if len(n.URLs) == 0 {
		return invalid("nats.urls cannot be empty")
	}
	for i, url := range n.URLs {
		if strings.TrimSpace(url) == "" {
			return invalid(fmt.Sprintf("nats.urls[%d] is empty", i))
		}
	}
	if n.ReconnectWait < 0 || n.Timeout < 0 {
		return invalid("nats durations cannot be negative")
	}
	if n.Token != "" && n.Username != "" {
		return invalid("nats.token and nats.username are mutually exclusive")
	}
	if n.Subject != "" && n.Subject == n.OutputSubject {
		return invalid("nats.output_subject must differ from nats.subject")
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", errors.ErrInvalidConfig, msg)
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// String returns a JSON representation of the config with secrets masked
func (c *Config) String() string {
	masked := c.Clone()
	if masked.NATS.Password != "" {
		masked.NATS.Password = "****"
	}
	if masked.NATS.Token != "" {
		masked.NATS.Token = "****"
	}
	data, _ := json.MarshalIndent(masked, "", "  ")
	return string(data)
}
