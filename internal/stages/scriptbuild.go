package stages

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/fileset"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
)

// BundleName is the only file written by the script build stage.
const BundleName = "main.js"

// ScriptBuildTransform transpiles script sources and concatenates them, in
// match order, into one minified bundle.
type ScriptBuildTransform struct {
	Paths   config.PathGroup
	Targets Targets
	Logger  *slog.Logger
}

func (t *ScriptBuildTransform) Name() config.StageName { return config.StageScriptBuild }

// Run writes the bundle only after every file has been transpiled.
func (t *ScriptBuildTransform) Run(_ context.Context) error {
	matches, err := fileset.Expand(t.Paths.Input)
	if err != nil {
		return errors.WrapError(err, errors.CategoryBundle, "expand script inputs").Build()
	}
	if len(matches) == 0 {
		t.Logger.Info("No scripts matched", slog.Any("patterns", t.Paths.Input))
		return nil
	}

	var bundle bytes.Buffer
	for i, match := range matches {
		code, err := t.transpile(match.Path)
		if err != nil {
			return errors.WrapError(err, errors.CategoryBundle, "transpile "+match.Path).
				WithContext("file", match.Path).Build()
		}
		if i > 0 {
			bundle.WriteByte('\n')
		}
		bundle.Write(code)
	}

	m := minify.New()
	m.AddFunc("application/javascript", js.Minify)
	minified, err := m.Bytes("application/javascript", bundle.Bytes())
	if err != nil {
		return errors.WrapError(err, errors.CategoryBundle, "minify bundle").Build()
	}

	out := filepath.Join(t.Paths.Output, BundleName)
	if err := writeArtifacts(t.Logger, []artifact{{path: out, data: minified}}); err != nil {
		return errors.WrapError(err, errors.CategoryBundle, "write bundle").Build()
	}
	t.Logger.Info("Scripts bundled", logfields.Files(len(matches)), logfields.Output(out))
	return nil
}

func (t *ScriptBuildTransform) transpile(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res := api.Transform(string(src), api.TransformOptions{
		Loader:     api.LoaderJS,
		Sourcefile: path,
		Target:     t.Targets.Script,
		Engines:    t.Targets.Engines,
		LogLevel:   api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("%s", messagesText(res.Errors))
	}
	return res.Code, nil
}
