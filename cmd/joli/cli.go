package main

// CLI is the joli command tree.
type CLI struct {
	Globals

	Format     FormatCmd     `cmd:"" default:"withargs" help:"Format files or stdin chunk by chunk (default)"`
	Styles     StylesCmd     `cmd:"" help:"List registered styles and where they come from"`
	Outputters OutputtersCmd `cmd:"" help:"List registered outputters and where they come from"`
	Bridge     BridgeCmd     `cmd:"" help:"Style every message of a NATS subject and republish it"`
	Config     ConfigCmd     `cmd:"" help:"Print the effective configuration"`
	Version    VersionCmd    `cmd:"" help:"Print version information"`
}

// Globals are flags shared by every command. Empty values defer to the
// configuration files and JOLI_* environment.
type Globals struct {
	ConfigPath  string `name:"config" short:"c" help:"Configuration file (JSON or YAML)" env:"JOLI_CONFIG"`
	LogLevel    string `name:"log-level" help:"Log level: debug, info, warn, error"`
	LogFormat   string `name:"log-format" help:"Log format: json, text"`
	MetricsPort int    `name:"metrics-port" help:"Serve Prometheus metrics on this port, 0 disables" default:"-1"`
}

// FormatCmd runs the stream adapter over files or stdin.
type FormatCmd struct {
	Style           string   `short:"s" help:"Style or comma separated chain of styles"`
	JSON            bool     `name:"json" short:"j" help:"Emit JSON indented by two spaces"`
	Strict          bool     `help:"Fail on lines that are not valid JSON"`
	Outputter       string   `short:"o" help:"Registry outputter receiving the chunks"`
	ContinueOnError bool     `name:"continue-on-error" short:"k" help:"Log failed chunks and keep going"`
	Framing         string   `help:"How input is cut into chunks: lines, documents or whole"`
	Files           []string `arg:"" optional:"" help:"Input files, stdin when omitted" type:"existingfile"`
}

// StylesCmd lists styles.
type StylesCmd struct{}

// OutputtersCmd lists outputters.
type OutputtersCmd struct{}

// BridgeCmd connects a NATS subject to the style engine.
type BridgeCmd struct {
	NATSURL       string `name:"nats-url" help:"NATS server URLs, comma separated"`
	Subject       string `help:"Subject to consume, wildcards allowed"`
	OutputSubject string `name:"output-subject" help:"Subject receiving styled chunks"`
	Style         string `short:"s" help:"Style or comma separated chain of styles"`
	JSON          bool   `name:"json" short:"j" help:"Publish JSON indented by two spaces"`
	Strict        bool   `help:"Drop messages that are not valid JSON"`
}

// ConfigCmd prints configuration.
type ConfigCmd struct{}

// VersionCmd prints the version. It is handled before configuration loads.
type VersionCmd struct{}

// Run is never reached; run handles version before binding the app.
func (c *VersionCmd) Run() error {
	return nil
}
