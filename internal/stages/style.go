package stages

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bep/golibsass/libsass"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/fileset"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
)

// StyleTransform compiles Sass entry files to CSS, adds vendor prefixes and
// writes a readable and a minified stylesheet per entry.
type StyleTransform struct {
	Paths   config.PathGroup
	Targets Targets
	Logger  *slog.Logger
}

func (t *StyleTransform) Name() config.StageName { return config.StageStyle }

type artifact struct {
	path string
	data []byte
}

// Run compiles every entry before writing anything.
func (t *StyleTransform) Run(_ context.Context) error {
	matches, err := fileset.Expand(t.Paths.Input)
	if err != nil {
		return errors.WrapError(err, errors.CategoryCompile, "expand style inputs").Build()
	}

	m := minify.New()
	m.AddFunc("text/css", css.Minify)

	var out []artifact
	for _, match := range matches {
		if strings.HasPrefix(filepath.Base(match.Path), "_") {
			continue
		}
		rel, err := match.Rel(t.Paths.Base)
		if err != nil {
			return errors.WrapError(err, errors.CategoryCompile, "map style output").
				WithContext("file", match.Path).Build()
		}

		compiled, err := t.compile(match.Path)
		if err != nil {
			return errors.WrapError(err, errors.CategoryCompile, "compile "+match.Path).
				WithContext("file", match.Path).Build()
		}
		prefixed, err := t.prefix(match.Path, compiled)
		if err != nil {
			return errors.WrapError(err, errors.CategoryCompile, "prefix "+match.Path).
				WithContext("file", match.Path).Build()
		}
		minified, err := t.minify(m, match.Path, prefixed)
		if err != nil {
			return errors.WrapError(err, errors.CategoryCompile, "minify "+match.Path).
				WithContext("file", match.Path).Build()
		}

		cssPath := filepath.Join(t.Paths.Output, fileset.ReplaceExt(rel, ".css"))
		out = append(out,
			artifact{path: cssPath, data: prefixed},
			artifact{path: fileset.ReplaceExt(cssPath, ".min.css"), data: minified},
		)
	}

	if err := writeArtifacts(t.Logger, out); err != nil {
		return errors.WrapError(err, errors.CategoryCompile, "write stylesheets").Build()
	}
	t.Logger.Info("Styles compiled", logfields.Files(len(out)/2), logfields.Output(t.Paths.Output))
	return nil
}

func (t *StyleTransform) compile(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	transpiler, err := libsass.New(libsass.Options{
		IncludePaths: []string{filepath.Dir(path)},
		OutputStyle:  libsass.ExpandedStyle,
		SassSyntax:   strings.EqualFold(filepath.Ext(path), ".sass"),
	})
	if err != nil {
		return nil, err
	}
	res, err := transpiler.Execute(string(src))
	if err != nil {
		return nil, err
	}
	return []byte(res.CSS), nil
}

func (t *StyleTransform) prefix(path string, src []byte) ([]byte, error) {
	res := api.Transform(string(src), api.TransformOptions{
		Loader:     api.LoaderCSS,
		Sourcefile: path,
		Engines:    t.Targets.Engines,
		LogLevel:   api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("%s", messagesText(res.Errors))
	}
	return res.Code, nil
}

// minify drops every comment, legal ones included, and minifies. The minifier
// rewrites its input in place, so it only ever sees a private copy of src.
func (t *StyleTransform) minify(m *minify.M, path string, src []byte) ([]byte, error) {
	res := api.Transform(string(src), api.TransformOptions{
		Loader:        api.LoaderCSS,
		Sourcefile:    path,
		LegalComments: api.LegalCommentsNone,
		LogLevel:      api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("%s", messagesText(res.Errors))
	}
	return m.Bytes("text/css", bytes.Clone(res.Code))
}

// writeArtifacts writes in order, creating directories as needed.
func writeArtifacts(log *slog.Logger, out []artifact) error {
	for _, a := range out {
		written, err := fileset.WriteFile(a.path, a.data)
		if err != nil {
			return err
		}
		if written {
			log.Debug("Wrote output", logfields.Path(a.path))
		}
	}
	return nil
}
