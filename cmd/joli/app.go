package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/c360/joli/config"
	"github.com/c360/joli/errors"
	"github.com/c360/joli/metric"
	"github.com/c360/joli/output"
	"github.com/c360/joli/registry"
	"github.com/c360/joli/stream"
	"github.com/c360/joli/style"
)

// App carries what every command needs once configuration is loaded.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metric.MetricsRegistry

	stdin  io.Reader
	stdout io.Writer

	server *metric.Server
}

func newApp(g *Globals, stdin io.Reader, stdout, stderr io.Writer) (*App, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}

	logger := setupLogger(cfg.Log.Level, cfg.Log.Format, stderr)
	slog.SetDefault(logger)

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metric.NewMetricsRegistry(),
		stdin:   stdin,
		stdout:  stdout,
	}

	if cfg.Metrics.Port > 0 {
		app.server = metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, app.Metrics)
		if err := app.server.Start(); err != nil {
			return nil, err
		}
		logger.Info("Metrics server started", "address", app.server.Address())
	}
	return app, nil
}

// loadConfig layers ~/.joli and ./.joli config files, the --config file, the
// environment and finally the global flags.
func loadConfig(g *Globals) (*config.Config, error) {
	loader := config.NewLoader()

	home, _ := os.UserHomeDir()
	wd, _ := os.Getwd()
	loader.AddDefaultLayers(home, wd)
	if path := strings.TrimSpace(g.ConfigPath); path != "" {
		loader.AddLayer(path)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}
	if g.MetricsPort >= 0 {
		cfg.Metrics.Port = g.MetricsPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "joli", "loadConfig", "validate configuration")
	}
	return cfg, nil
}

// Close stops the metrics server.
func (a *App) Close() {
	if a.server != nil {
		if err := a.server.Stop(5 * time.Second); err != nil {
			a.Logger.Warn("Metrics server stop failed", "error", err)
		}
	}
}

// registry loads the style and outputter registry. The process-wide default is
// used unless configuration relocates a tier.
func (a *App) registry() (*registry.Registry, error) {
	sc := a.Config.Styles
	if sc.Home == "" && sc.Workdir == "" && !sc.NoBundled {
		return registry.Default()
	}

	opts := []registry.LoaderOption{registry.WithLogger(a.Logger)}
	if sc.Home != "" {
		opts = append(opts, registry.WithHome(sc.Home))
	}
	if sc.Workdir != "" {
		opts = append(opts, registry.WithWorkdir(sc.Workdir))
	}
	if sc.NoBundled {
		opts = append(opts, registry.WithoutBundled())
	}
	return registry.NewLoader(opts...).Load()
}

// engine builds an instrumented style engine resolving names through reg.
func (a *App) engine(reg *registry.Registry) (*style.Engine, error) {
	m, err := style.NewMetrics(a.Metrics)
	if err != nil {
		return nil, err
	}
	return style.NewEngine(style.WithResolver(reg), style.WithMetrics(m)), nil
}

// adapterOptions translates flags, falling back to configuration.
func (a *App) adapterOptions(styleSpec string, json, strict, continueOnError bool) ([]stream.Option, error) {
	if styleSpec == "" {
		styleSpec = a.Config.Stream.Style
	}

	m, err := stream.NewMetrics(a.Metrics)
	if err != nil {
		return nil, err
	}

	opts := []stream.Option{
		stream.WithJSON(json || a.Config.Stream.JSON),
		stream.WithStrict(strict || a.Config.Stream.Strict),
		stream.WithContinueOnError(continueOnError || a.Config.Stream.ContinueOnError),
		stream.WithLogger(a.Logger),
		stream.WithMetrics(m),
	}
	if ref := style.ParseRef(styleSpec); ref != nil {
		opts = append(opts, stream.WithStyle(ref))
	}
	return opts, nil
}

// outputter builds the named registry outputter, writing console output to the
// app's stdout.
func (a *App) outputter(reg *registry.Registry, name string, extra ...output.Option) (output.Outputter, error) {
	if name == "" {
		name = a.Config.Output.Outputter
	}

	m, err := output.NewMetrics(a.Metrics)
	if err != nil {
		return nil, err
	}

	opts := append([]output.Option{
		output.WithWriter(a.stdout),
		output.WithLogger(a.Logger),
		output.WithMetrics(m),
	}, extra...)
	return reg.Outputter(name, opts...)
}
