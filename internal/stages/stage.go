// Package stages implements the four independent build stages: style,
// template, script lint and script build.
//
// Each stage is a Stage value that is either Enabled, wrapping a Transform, or
// Disabled, in which case running it does nothing and reports success. The
// choice is made once, from the configuration, by FromConfig.
package stages

import (
	"context"
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
)

// Transform is the work of one enabled stage. Run reports the stage's own
// classified error; it never affects sibling stages.
type Transform interface {
	Name() config.StageName
	Run(ctx context.Context) error
}

// Stage is a named stage that is either enabled or disabled.
type Stage struct {
	name      config.StageName
	transform Transform
}

// Enabled returns a stage that runs t.
func Enabled(t Transform) Stage {
	return Stage{name: t.Name(), transform: t}
}

// Disabled returns a stage that does nothing and succeeds.
func Disabled(name config.StageName) Stage {
	return Stage{name: name}
}

// Name returns the stage name.
func (s Stage) Name() config.StageName { return s.name }

// IsEnabled reports whether running the stage does any work.
func (s Stage) IsEnabled() bool { return s.transform != nil }

// Run executes the stage. A disabled stage returns nil without touching the filesystem.
func (s Stage) Run(ctx context.Context) error {
	if s.transform == nil {
		return nil
	}
	return s.transform.Run(ctx)
}

type options struct {
	lintOut  io.Writer
	useColor bool
	logger   *slog.Logger
}

// Option configures the stages built by FromConfig.
type Option func(*options)

// WithLintOutput sets where lint diagnostics are printed. Defaults to stdout.
func WithLintOutput(w io.Writer) Option {
	return func(o *options) { o.lintOut = w }
}

// WithColor enables styled lint output.
func WithColor(enabled bool) Option {
	return func(o *options) { o.useColor = enabled }
}

// WithLogger sets the logger used by the stages. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// FromConfig builds the pipeline stages in config.PipelineStages order.
func FromConfig(cfg *config.Config, opts ...Option) ([]Stage, error) {
	o := options{lintOut: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	targets, err := ParseTargets(cfg.Targets)
	if err != nil {
		return nil, err
	}

	out := make([]Stage, 0, len(config.PipelineStages))
	for _, name := range config.PipelineStages {
		if !cfg.Flag(name) {
			out = append(out, Disabled(name))
			continue
		}
		log := o.logger.With(logfields.Stage(string(name)))
		group := cfg.PathsFor(name)
		var t Transform
		switch name {
		case config.StageStyle:
			t = &StyleTransform{Paths: group, Targets: targets, Logger: log}
		case config.StageTemplate:
			t = &TemplateTransform{Paths: group, Logger: log}
		case config.StageScriptLint:
			t = &ScriptLintTransform{Paths: group, Rules: cfg.Lint.Rules, Format: cfg.Lint.Format, Out: o.lintOut, UseColor: o.useColor, Logger: log}
		case config.StageScriptBuild:
			t = &ScriptBuildTransform{Paths: group, Targets: targets, Logger: log}
		}
		out = append(out, Enabled(t))
	}
	return out, nil
}
