package stages

import (
	"context"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/fileset"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/render"
)

// TemplateTransform renders page templates to .html files, keeping their
// directory structure below the base directory.
type TemplateTransform struct {
	Paths  config.PathGroup
	Logger *slog.Logger
}

func (t *TemplateTransform) Name() config.StageName { return config.StageTemplate }

// Run renders every page before writing anything.
func (t *TemplateTransform) Run(_ context.Context) error {
	matches, err := fileset.Expand(t.Paths.Input)
	if err != nil {
		return errors.WrapError(err, errors.CategoryRender, "expand template inputs").Build()
	}

	r := render.New(t.Paths.Base)
	var out []artifact
	for _, match := range matches {
		if render.IsPartial(match.Path) {
			continue
		}
		rel, err := match.Rel(t.Paths.Base)
		if err != nil {
			return errors.WrapError(err, errors.CategoryRender, "map template output").
				WithContext("file", match.Path).Build()
		}
		html, err := r.RenderFile(match.Path)
		if err != nil {
			return errors.WrapError(err, errors.CategoryRender, "render "+match.Path).
				WithContext("file", match.Path).Build()
		}
		out = append(out, artifact{
			path: filepath.Join(t.Paths.Output, fileset.ReplaceExt(rel, ".html")),
			data: html,
		})
	}

	if err := writeArtifacts(t.Logger, out); err != nil {
		return errors.WrapError(err, errors.CategoryRender, "write pages").Build()
	}
	t.Logger.Info("Templates rendered", logfields.Files(len(out)), logfields.Output(t.Paths.Output))
	return nil
}
