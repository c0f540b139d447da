package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/c360/joli/config"
	"github.com/c360/joli/errors"
	"github.com/c360/joli/natsclient"
	"github.com/c360/joli/output"
	"github.com/c360/joli/registry"
	"github.com/c360/joli/stream"
	"github.com/c360/joli/style"
)

// Run formats each input through the stream adapter.
func (c *FormatCmd) Run(app *App) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := app.registry()
	if err != nil {
		return err
	}
	engine, err := app.engine(reg)
	if err != nil {
		return err
	}

	opts, err := app.adapterOptions(c.Style, c.JSON, c.Strict, c.ContinueOnError)
	if err != nil {
		return err
	}
	framing := c.Framing
	if framing == "" {
		framing = app.Config.Stream.Framing
	}
	f, err := stream.ParseFraming(framing)
	if err != nil {
		return err
	}
	opts = append(opts, stream.WithFraming(f))
	if err := checkStyles(reg, c.Style, app.Config.Stream.Style); err != nil {
		return err
	}

	name := c.Outputter
	if name == "" {
		name = app.Config.Output.Outputter
	}
	var extra []output.Option
	if cfg, ok := reg.OutputterConfig(name); ok && cfg.Type == output.TypeNATS {
		client, err := connectNATS(ctx, app, app.Config.NATS.URL())
		if err != nil {
			return err
		}
		defer client.Close(context.Background())
		extra = append(extra, output.WithPublisher(client))
	}

	out, err := app.outputter(reg, name, extra...)
	if err != nil {
		return err
	}

	adapter := stream.New(engine, stream.OutputSink(out), opts...)
	pumpErr := c.pump(ctx, app, adapter)
	return stderrors.Join(pumpErr, adapter.End())
}

func (c *FormatCmd) pump(ctx context.Context, app *App, adapter *stream.Adapter) error {
	if len(c.Files) == 0 {
		return adapter.Pump(ctx, app.stdin)
	}

	for _, path := range c.Files {
		f, err := os.Open(path)
		if err != nil {
			return errors.WrapInvalid(err, "joli", "format", "open "+path)
		}
		err = adapter.Pump(ctx, f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// checkStyles fails fast on style names missing from the registry instead of on
// the first chunk.
func checkStyles(reg *registry.Registry, flag, fallback string) error {
	spec := flag
	if spec == "" {
		spec = fallback
	}
	for _, name := range style.Names(style.ParseRef(spec)) {
		if _, ok := reg.Style(name); !ok {
			return &errors.StyleNotFoundError{Name: name}
		}
	}
	return nil
}

// Run lists styles.
func (c *StylesCmd) Run(app *App) error {
	return listEntries(app, registry.KindStyles)
}

// Run lists outputters.
func (c *OutputtersCmd) Run(app *App) error {
	return listEntries(app, registry.KindOutputters)
}

func listEntries(app *App, kind registry.Kind) error {
	reg, err := app.registry()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(app.stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTIER\tDESCRIPTION\tPATH")
	for _, info := range reg.Entries(kind) {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, info.Tier, info.Description, info.Path)
	}
	return w.Flush()
}

// Run bridges NATS subjects until interrupted.
func (c *BridgeCmd) Run(app *App) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	nc := app.Config.NATS
	cfg := stream.BridgeConfig{Subject: nc.Subject, OutputSubject: nc.OutputSubject}
	if c.Subject != "" {
		cfg.Subject = c.Subject
	}
	if c.OutputSubject != "" {
		cfg.OutputSubject = c.OutputSubject
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	reg, err := app.registry()
	if err != nil {
		return err
	}
	engine, err := app.engine(reg)
	if err != nil {
		return err
	}
	if err := checkStyles(reg, c.Style, app.Config.Stream.Style); err != nil {
		return err
	}
	opts, err := app.adapterOptions(c.Style, c.JSON, c.Strict, true)
	if err != nil {
		return err
	}

	url := c.NATSURL
	if url == "" {
		url = nc.URL()
	}
	client, err := connectNATS(ctx, app, url)
	if err != nil {
		return err
	}
	defer client.Close(context.Background())

	bridge, err := stream.NewBridge(client, engine, cfg, opts...)
	if err != nil {
		return err
	}
	if err := bridge.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	app.Logger.Info("Shutting down bridge")
	return bridge.Stop()
}

// connectNATS connects with the configured credentials and timeouts.
func connectNATS(ctx context.Context, app *App, url string) (*natsclient.Client, error) {
	client, err := natsclient.NewClient(url, natsOptions(app.Config.NATS, app)...)
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

func natsOptions(nc config.NATSConfig, app *App) []natsclient.ClientOption {
	opts := []natsclient.ClientOption{
		natsclient.WithMaxReconnects(nc.MaxReconnects),
		natsclient.WithReconnectWait(nc.ReconnectWait),
		natsclient.WithLogger(app.Logger),
		natsclient.WithName(appName),
	}
	if nc.Timeout > 0 {
		opts = append(opts, natsclient.WithTimeout(nc.Timeout))
	}
	if nc.Username != "" {
		opts = append(opts, natsclient.WithCredentials(nc.Username, nc.Password))
	}
	if nc.Token != "" {
		opts = append(opts, natsclient.WithToken(nc.Token))
	}
	return opts
}

// Run prints the merged configuration with secrets masked.
func (c *ConfigCmd) Run(app *App) error {
	_, err := fmt.Fprintln(app.stdout, app.Config.String())
	return err
}
