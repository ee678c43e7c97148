package stages

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

// Targets is the resolved output environment shared by the style and script stages.
type Targets struct {
	Script  api.Target
	Engines []api.Engine
}

var scriptTargets = foundation.NewEnum("script target", map[string]api.Target{
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"es2023": api.ES2023,
	"es2024": api.ES2024,
	"esnext": api.ESNext,
})

var engineNames = foundation.NewEnum("browser", map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"deno":    api.EngineDeno,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"hermes":  api.EngineHermes,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"node":    api.EngineNode,
	"opera":   api.EngineOpera,
	"rhino":   api.EngineRhino,
	"safari":  api.EngineSafari,
})

var browserPattern = regexp.MustCompile(`^([a-z]+)(\d+(?:\.\d+){0,2})$`)

// ParseTargets resolves the configured script level and browser list, e.g. "safari11".
func ParseTargets(cfg config.TargetsConfig) (Targets, error) {
	script, err := scriptTargets.Parse(cfg.Script)
	if err != nil {
		return Targets{}, errors.WrapError(err, errors.CategoryConfig, "invalid targets.script").
			Fatal().WithContext("field", "targets.script").Build()
	}
	t := Targets{Script: script}
	for _, b := range cfg.Browsers {
		m := browserPattern.FindStringSubmatch(strings.ToLower(b))
		if m == nil {
			return Targets{}, errors.ConfigError(fmt.Sprintf("invalid browser target %q", b)).
				WithContext("field", "targets.browsers").Build()
		}
		name, err := engineNames.Parse(m[1])
		if err != nil {
			return Targets{}, errors.WrapError(err, errors.CategoryConfig, "invalid targets.browsers").
				Fatal().WithContext("field", "targets.browsers").Build()
		}
		t.Engines = append(t.Engines, api.Engine{Name: name, Version: m[2]})
	}
	return t, nil
}

// messagesText joins esbuild messages into one line per message.
func messagesText(msgs []api.Message) string {
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		if msg.Location != nil {
			fmt.Fprintf(&b, "%s:%d:%d: ", msg.Location.File, msg.Location.Line, msg.Location.Column+1)
		}
		b.WriteString(msg.Text)
	}
	return b.String()
}
