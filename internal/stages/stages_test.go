package stages

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// testConfig lays out the default structure below dir.
func testConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Paths.Input = filepath.Join(dir, "src")
	cfg.Paths.Output = filepath.Join(dir, "dist")
	cfg.Paths.Server = cfg.Paths.Output
	cfg.Paths.Styles = config.PathGroup{
		Input:  []string{filepath.Join(dir, "src/scss/*.scss")},
		Output: filepath.Join(dir, "dist/css"),
	}
	cfg.Paths.Templates = config.PathGroup{
		Input:  []string{filepath.Join(dir, "src/pages/**/*.{pug,tmpl,md}")},
		Output: filepath.Join(dir, "dist/pages"),
		Base:   filepath.Join(dir, "src/pages"),
	}
	cfg.Paths.Scripts = config.PathGroup{
		Input:  []string{filepath.Join(dir, "src/js/**/*.js")},
		Output: filepath.Join(dir, "dist/js"),
	}
	return cfg
}

func buildStages(t *testing.T, cfg *config.Config, lintOut io.Writer) map[config.StageName]Stage {
	t.Helper()
	list, err := FromConfig(cfg, WithLintOutput(lintOut), WithLogger(quiet))
	require.NoError(t, err)
	byName := make(map[config.StageName]Stage, len(list))
	for _, s := range list {
		byName[s.Name()] = s
	}
	return byName
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(root, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	}))
	return files
}

func TestFromConfig_Order(t *testing.T) {
	list, err := FromConfig(config.Default(), WithLogger(quiet))
	require.NoError(t, err)
	require.Len(t, list, len(config.PipelineStages))
	for i, name := range config.PipelineStages {
		assert.Equal(t, name, list[i].Name())
		assert.True(t, list[i].IsEnabled())
	}
}

func TestFromConfig_InvalidTargets(t *testing.T) {
	cfg := config.Default()
	cfg.Targets.Browsers = []string{"netscape4"}
	_, err := FromConfig(cfg)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryConfig, errors.GetCategory(err))
}

func TestDisabledStagesWriteNothing(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Settings = config.Settings{}
	writeFile(t, filepath.Join(dir, "src/scss/main.scss"), ".a { color: red; }")
	writeFile(t, filepath.Join(dir, "src/pages/index.pug"), "h1 Hi\n")
	writeFile(t, filepath.Join(dir, "src/js/a.js"), "debugger;\n")

	var lintOut bytes.Buffer
	for _, s := range buildStages(t, cfg, &lintOut) {
		assert.False(t, s.IsEnabled())
		require.NoError(t, s.Run(context.Background()), s.Name())
	}
	assert.NoDirExists(t, cfg.Paths.Output)
	assert.Empty(t, lintOut.String())
}

func TestStyleTransform(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, filepath.Join(dir, "src/scss/_vars.scss"), "$accent: #ff0000;\n")
	writeFile(t, filepath.Join(dir, "src/scss/main.scss"),
		"@import 'vars';\n/* layout rules */\n.box {\n  color: $accent;\n  .inner { user-select: none; }\n}\n")

	s := buildStages(t, cfg, io.Discard)[config.StageStyle]
	require.NoError(t, s.Run(context.Background()))

	assert.ElementsMatch(t, []string{"main.css", "main.min.css"}, listFiles(t, cfg.Paths.Styles.Output))
	plain := readFile(t, filepath.Join(cfg.Paths.Styles.Output, "main.css"))
	minified := readFile(t, filepath.Join(cfg.Paths.Styles.Output, "main.min.css"))

	assert.Contains(t, string(plain), ".box .inner")
	assert.Contains(t, string(plain), "-webkit-user-select")
	assert.NotContains(t, string(minified), "layout rules")
	assert.LessOrEqual(t, len(minified), len(plain))
}

func TestStyleTransform_PlainOutputIsNotMinified(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, filepath.Join(dir, "src/scss/main.scss"),
		".a { color: #336699; background: #ffffff; margin: 0px; }\n")

	require.NoError(t, buildStages(t, cfg, io.Discard)[config.StageStyle].Run(context.Background()))

	plain := readFile(t, filepath.Join(cfg.Paths.Styles.Output, "main.css"))
	assert.Equal(t, ".a {\n  color: #336699;\n  background: #ffffff;\n  margin: 0px;\n}\n", string(plain))

	minified := string(readFile(t, filepath.Join(cfg.Paths.Styles.Output, "main.min.css")))
	assert.Contains(t, minified, "#369")
	assert.NotContains(t, minified, "#336699")
}

func TestStyleTransform_MinifiedDropsAllComments(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, filepath.Join(dir, "src/scss/main.scss"),
		"/*! license */\n/* plain */\n.a { margin: 0; }\n")

	require.NoError(t, buildStages(t, cfg, io.Discard)[config.StageStyle].Run(context.Background()))

	minified := string(readFile(t, filepath.Join(cfg.Paths.Styles.Output, "main.min.css")))
	assert.NotContains(t, minified, "/*")
	assert.Contains(t, minified, "margin:0")
}

func TestStyleTransform_CompileError(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, filepath.Join(dir, "src/scss/main.scss"), ".a { color: $undefined; }\n")

	err := buildStages(t, cfg, io.Discard)[config.StageStyle].Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CategoryCompile, errors.GetCategory(err))
	assert.NoDirExists(t, cfg.Paths.Styles.Output)
}

func TestTemplateTransform_PathMapping(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, filepath.Join(dir, "src/pages/index.pug"), "h1 Home\n")
	writeFile(t, filepath.Join(dir, "src/pages/sub/foo.pug"), "p Foo\n")
	writeFile(t, filepath.Join(dir, "src/pages/docs/guide.md"), "# Guide\n")
	writeFile(t, filepath.Join(dir, "src/pages/_layout.tmpl"), "<b>{{ . }}</b>")

	require.NoError(t, buildStages(t, cfg, io.Discard)[config.StageTemplate].Run(context.Background()))

	assert.ElementsMatch(t,
		[]string{"index.html", "sub/foo.html", "docs/guide.html"},
		listFiles(t, cfg.Paths.Templates.Output))
	assert.Contains(t, string(readFile(t, filepath.Join(cfg.Paths.Templates.Output, "sub/foo.html"))), "Foo")
}

func TestTemplateTransform_GlobRootWithoutBase(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Paths.Templates.Base = ""
	writeFile(t, filepath.Join(dir, "src/pages/a/b.tmpl"), "<p>b</p>")

	require.NoError(t, buildStages(t, cfg, io.Discard)[config.StageTemplate].Run(context.Background()))
	assert.Equal(t, []string{"a/b.html"}, listFiles(t, cfg.Paths.Templates.Output))
}

func TestTemplateTransform_RenderErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, filepath.Join(dir, "src/pages/a.tmpl"), "<p>ok</p>")
	writeFile(t, filepath.Join(dir, "src/pages/b.tmpl"), "{{ template \"_missing.tmpl\" }}")

	err := buildStages(t, cfg, io.Discard)[config.StageTemplate].Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CategoryRender, errors.GetCategory(err))
	assert.NoDirExists(t, cfg.Paths.Templates.Output)
}

func TestScriptLintTransform(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, filepath.Join(dir, "src/js/clean.js"), "export const answer = 42;\n")

	var out bytes.Buffer
	lintStage := buildStages(t, cfg, &out)[config.StageScriptLint]
	require.NoError(t, lintStage.Run(context.Background()))
	assert.Empty(t, out.String())

	bad := filepath.Join(dir, "src/js/bad.js")
	writeFile(t, bad, "function f() {\n  debugger;\n}\n")
	err := lintStage.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CategoryLint, errors.GetCategory(err))
	assert.Contains(t, out.String(), bad)
	assert.Contains(t, out.String(), "no-debugger")
	assert.Equal(t, []string(nil), listFiles(t, cfg.Paths.Output))
}

func TestScriptLintTransform_WarningsPass(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Lint.Rules = map[string]string{"no-debugger": config.SeverityWarning}
	writeFile(t, filepath.Join(dir, "src/js/a.js"), "debugger;\n")

	var out bytes.Buffer
	require.NoError(t, buildStages(t, cfg, &out)[config.StageScriptLint].Run(context.Background()))
	assert.Contains(t, out.String(), "warning")
}

func TestScriptBuildTransform(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, filepath.Join(dir, "src/js/a.js"), "window.first = () => 1;\n")
	writeFile(t, filepath.Join(dir, "src/js/b.js"), "window.second = () => 2;\n")

	require.NoError(t, buildStages(t, cfg, io.Discard)[config.StageScriptBuild].Run(context.Background()))

	assert.Equal(t, []string{BundleName}, listFiles(t, cfg.Paths.Scripts.Output))
	bundle := string(readFile(t, filepath.Join(cfg.Paths.Scripts.Output, BundleName)))
	first := bytes.Index([]byte(bundle), []byte("first"))
	second := bytes.Index([]byte(bundle), []byte("second"))
	require.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
}

func TestScriptBuildTransform_TranspileError(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, filepath.Join(dir, "src/js/a.js"), "window.ok = 1;\n")
	writeFile(t, filepath.Join(dir, "src/js/b.js"), "function (\n")

	err := buildStages(t, cfg, io.Discard)[config.StageScriptBuild].Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CategoryBundle, errors.GetCategory(err))
	assert.NoDirExists(t, cfg.Paths.Scripts.Output)
}

func TestStagesAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, filepath.Join(dir, "src/scss/main.scss"), ".a { .b { color: blue; } }\n")
	writeFile(t, filepath.Join(dir, "src/pages/index.tmpl"), "<p>{{ \"x\" }}</p>")
	writeFile(t, filepath.Join(dir, "src/js/a.js"), "window.a = 1;\n")

	snapshot := func() map[string]string {
		files := map[string]string{}
		for _, rel := range listFiles(t, cfg.Paths.Output) {
			files[rel] = string(readFile(t, filepath.Join(cfg.Paths.Output, rel)))
		}
		return files
	}

	run := func() {
		for _, s := range buildStages(t, cfg, io.Discard) {
			require.NoError(t, s.Run(context.Background()), s.Name())
		}
	}
	run()
	first := snapshot()
	run()
	assert.Equal(t, first, snapshot())
	assert.Len(t, first, 4)
}
