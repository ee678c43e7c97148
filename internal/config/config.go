package config

import (
	"fmt"
	"slices"
	"time"
)

// StageName identifies one gated unit of the build.
type StageName string

// Canonical stage names.
const (
	StageStyle       StageName = "style"
	StageTemplate    StageName = "template"
	StageScriptLint  StageName = "script-lint"
	StageScriptBuild StageName = "script-build"
	StageServer      StageName = "server"
)

// PipelineStages lists the stages run by the default build, in reporting order.
var PipelineStages = []StageName{StageStyle, StageTemplate, StageScriptLint, StageScriptBuild}

// Config represents the application configuration. A Config is built once at
// process start and must not be mutated afterwards.
type Config struct {
	Settings Settings      `yaml:"settings"`
	Paths    Paths         `yaml:"paths"`
	Server   ServerConfig  `yaml:"server"`
	Watch    WatchConfig   `yaml:"watch"`
	Lint     LintConfig    `yaml:"lint"`
	Targets  TargetsConfig `yaml:"targets"`
}

// Settings holds the per-stage feature flags.
type Settings struct {
	Style       bool `yaml:"style"`
	Template    bool `yaml:"template"`
	ScriptLint  bool `yaml:"script_lint"`
	ScriptBuild bool `yaml:"script_build"`
	Server      bool `yaml:"server"`
}

// Paths holds the roots and the per-stage path groups.
type Paths struct {
	Input     string    `yaml:"input"`  // watch root
	Output    string    `yaml:"output"` // build output root
	Server    string    `yaml:"server"` // directory served by the dev server
	Styles    PathGroup `yaml:"styles"`
	Templates PathGroup `yaml:"templates"`
	Scripts   PathGroup `yaml:"scripts"`
}

// PathGroup is the input pattern / output directory pair of a stage.
type PathGroup struct {
	Input  []string `yaml:"input"`
	Output string   `yaml:"output"`
	// Base preserves relative structure below it when writing output.
	Base string `yaml:"base,omitempty"`
}

// ServerConfig configures the development server.
type ServerConfig struct {
	Host string `yaml:"host"`
	// Port 0 binds an ephemeral port.
	Port    int  `yaml:"port"`
	Metrics bool `yaml:"metrics"`
}

// WatchConfig configures the watch loop.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	// ResyncInterval schedules unconditional rebuilds; zero disables it.
	ResyncInterval time.Duration `yaml:"resync_interval"`
}

// LintConfig maps diagnostic identifiers to a severity: error, warning or off.
type LintConfig struct {
	Rules  map[string]string `yaml:"rules"`
	Format string            `yaml:"format"` // text or json
}

// TargetsConfig selects the output syntax level and the browsers to prefix for.
type TargetsConfig struct {
	Script   string   `yaml:"script"`
	Browsers []string `yaml:"browsers"`
}

// Lint severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityOff     = "off"
)

// Flag reports whether stage is enabled. Unknown stage names are programming errors.
func (c *Config) Flag(stage StageName) bool {
	switch stage {
	case StageStyle:
		return c.Settings.Style
	case StageTemplate:
		return c.Settings.Template
	case StageScriptLint:
		return c.Settings.ScriptLint
	case StageScriptBuild:
		return c.Settings.ScriptBuild
	case StageServer:
		return c.Settings.Server
	}
	panic(fmt.Sprintf("config: unknown stage %q", stage))
}

// PathsFor returns a copy of the path group for stage. Unknown stage names are programming errors.
func (c *Config) PathsFor(stage StageName) PathGroup {
	var g PathGroup
	switch stage {
	case StageStyle:
		g = c.Paths.Styles
	case StageTemplate:
		g = c.Paths.Templates
	case StageScriptLint, StageScriptBuild:
		g = c.Paths.Scripts
	case StageServer:
		g = PathGroup{Input: []string{c.Paths.Input}, Output: c.Paths.Server}
	default:
		panic(fmt.Sprintf("config: unknown stage %q", stage))
	}
	g.Input = slices.Clone(g.Input)
	return g
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Settings: Settings{
			Style:       true,
			Template:    true,
			ScriptLint:  true,
			ScriptBuild: true,
			Server:      true,
		},
		Paths: Paths{
			Input:  "src",
			Output: "dist",
			Server: "dist",
			Styles: PathGroup{
				Input:  []string{"src/scss/main.scss"},
				Output: "dist/css",
			},
			Templates: PathGroup{
				Input:  []string{"src/pug/pages/**/*.pug"},
				Output: "dist/pages",
				Base:   "src/pug/pages",
			},
			Scripts: PathGroup{
				Input:  []string{"src/js/**/*.js"},
				Output: "dist/js",
			},
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 3000,
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		Lint: LintConfig{
			Format: "text",
			Rules: map[string]string{
				"no-debugger":            SeverityError,
				"duplicate-object-key":   SeverityError,
				"duplicate-case":         SeverityError,
				"equals-nan":             SeverityError,
				"equals-negative-zero":   SeverityWarning,
				"suspicious-boolean-not": SeverityWarning,
				"direct-eval":            SeverityWarning,
			},
		},
		Targets: TargetsConfig{
			Script:   "es2015",
			Browsers: []string{"chrome58", "edge16", "firefox57", "safari11", "ios11"},
		},
	}
}
