package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

var lintFormats = foundation.NewEnum("lint format", map[string]struct{}{"text": {}, "json": {}})

var severities = foundation.NewEnum("severity", map[string]struct{}{
	SeverityError: {}, SeverityWarning: {}, SeverityOff: {},
})

// Validate checks the configuration once at startup. Browser and script
// targets are resolved, and rejected, by stages.ParseTargets.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.ValidationError(fmt.Sprintf("server.port out of range: %d", c.Server.Port)).Build()
	}
	if c.Watch.Debounce < 0 || c.Watch.ResyncInterval < 0 {
		return errors.ValidationError("watch durations must not be negative").Build()
	}
	if _, err := lintFormats.Parse(c.Lint.Format); err != nil {
		return errors.ValidationError(err.Error()).WithContext("field", "lint.format").Build()
	}
	for rule, sev := range c.Lint.Rules {
		if _, err := severities.Parse(sev); err != nil {
			return errors.ValidationError(fmt.Sprintf("lint rule %q: %v", rule, err)).Build()
		}
	}

	if c.Paths.Input != "" && c.Paths.Output != "" && isWithin(c.Paths.Output, c.Paths.Input) {
		return errors.ConfigError("paths.output must not be inside paths.input").
			WithContext("input", c.Paths.Input).
			WithContext("output", c.Paths.Output).
			Build()
	}

	var outputs []string
	for _, stage := range PipelineStages {
		if !c.Flag(stage) {
			continue
		}
		g := c.PathsFor(stage)
		if len(g.Input) == 0 || g.Output == "" {
			return errors.ConfigError(fmt.Sprintf("stage %s requires input patterns and an output directory", stage)).Build()
		}
		for _, pattern := range g.Input {
			if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
				return errors.ConfigError(fmt.Sprintf("stage %s: invalid input pattern %q", stage, pattern)).Build()
			}
		}
		outputs = append(outputs, g.Output)
	}

	for _, stage := range PipelineStages {
		if !c.Flag(stage) {
			continue
		}
		for _, pattern := range c.PathsFor(stage).Input {
			for _, out := range outputs {
				if PatternReaches(pattern, out) {
					return errors.ConfigError(fmt.Sprintf("stage %s: input pattern %q matches output directory %s", stage, pattern, out)).Build()
				}
			}
		}
	}
	if c.Settings.Server && c.Paths.Server == "" {
		return errors.ConfigError("paths.server is required when the server is enabled").Build()
	}
	return nil
}

// PatternReaches reports whether pattern can match a file inside dir.
func PatternReaches(pattern, dir string) bool {
	base, rest := doublestar.SplitPattern(filepath.ToSlash(filepath.Clean(pattern)))
	dir = filepath.ToSlash(filepath.Clean(dir))
	if !isWithin(dir, base) {
		return false
	}
	if strings.Contains(rest, "**") {
		return true
	}
	rel, err := filepath.Rel(base, dir)
	if err != nil {
		return false
	}
	// Depth of dir below base must be shallower than the pattern's remaining segments.
	relDepth := 0
	if rel != "." {
		relDepth = len(strings.Split(filepath.ToSlash(rel), "/"))
	}
	restSegments := strings.Split(rest, "/")
	if relDepth >= len(restSegments) {
		return false
	}
	for i, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if rel == "." {
			break
		}
		if ok, _ := doublestar.Match(restSegments[i], seg); !ok {
			return false
		}
	}
	return true
}

// isWithin reports whether path equals root or lies below it.
func isWithin(path, root string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
