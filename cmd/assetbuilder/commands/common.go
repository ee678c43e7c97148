// Package commands implements the assetbuilder command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
	"git.home.luguber.info/inful/assetbuilder/internal/stages"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Stdout receives lint diagnostics. Defaults to os.Stdout.
	Stdout io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (compiled-in defaults when empty)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	NoColor bool             `name:"no-color" help:"Disable styled lint output"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" default:"withargs" help:"Run every enabled stage once (default command)"`
	Watch WatchCmd `cmd:"" help:"Build, serve the output with live reload and rebuild on changes"`
	Init  InitCmd  `cmd:"" help:"Write the default configuration to a file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// LoadConfig loads and validates the configuration selected by the root flags.
func LoadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewOrchestrator wires the configured stages into an orchestrator.
func NewOrchestrator(g *Global, root *CLI, cfg *config.Config, rec metrics.Recorder) (*pipeline.Orchestrator, error) {
	out := g.stdout()
	list, err := stages.FromConfig(cfg,
		stages.WithLintOutput(out),
		stages.WithColor(!root.NoColor && isTerminal(out)),
		stages.WithLogger(g.logger()),
	)
	if err != nil {
		return nil, err
	}
	return pipeline.New(list, pipeline.WithRecorder(rec), pipeline.WithLogger(g.logger())), nil
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
