package stages

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/fileset"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/lint"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
)

// ScriptLintTransform lints script sources and prints the diagnostics. It
// writes no files.
type ScriptLintTransform struct {
	Paths    config.PathGroup
	Rules    map[string]string
	Format   string
	Out      io.Writer
	UseColor bool
	Logger   *slog.Logger
}

func (t *ScriptLintTransform) Name() config.StageName { return config.StageScriptLint }

// Run fails with a lint error when any diagnostic has error severity.
func (t *ScriptLintTransform) Run(_ context.Context) error {
	matches, err := fileset.Expand(t.Paths.Input)
	if err != nil {
		return errors.WrapError(err, errors.CategoryLint, "expand script inputs").Build()
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, m.Path)
	}

	result, err := lint.NewLinter(&lint.Config{Rules: t.Rules}).LintFiles(files)
	if err != nil {
		return errors.WrapError(err, errors.CategoryLint, "lint scripts").Build()
	}

	formatter, err := lint.NewFormatter(t.Format, t.UseColor)
	if err != nil {
		return errors.WrapError(err, errors.CategoryLint, "lint output").Build()
	}
	if err := formatter.Format(t.Out, result); err != nil {
		return errors.WrapError(err, errors.CategoryLint, "print lint results").Build()
	}

	if result.HasErrors() {
		return errors.LintError(fmt.Sprintf("%d lint error(s) in %d file(s)", result.ErrorCount(), result.FilesTotal)).
			WithContext("errors", result.ErrorCount()).
			WithContext("warnings", result.WarningCount()).
			Build()
	}
	t.Logger.Info("Scripts linted", logfields.Files(result.FilesTotal), slog.Int("warnings", result.WarningCount()))
	return nil
}
