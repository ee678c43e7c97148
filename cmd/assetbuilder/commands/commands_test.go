package commands

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

func testGlobal(out io.Writer) *Global {
	return &Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Stdout: out}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// writeProjectConfig writes a config file rooted at dir and returns its path.
func writeProjectConfig(t *testing.T, dir string) string {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Input = filepath.Join(dir, "src")
	cfg.Paths.Output = filepath.Join(dir, "dist")
	cfg.Paths.Server = cfg.Paths.Output
	cfg.Paths.Styles = config.PathGroup{Input: []string{filepath.Join(dir, "src/scss/main.scss")}, Output: filepath.Join(dir, "dist/css")}
	cfg.Paths.Templates = config.PathGroup{Input: []string{filepath.Join(dir, "src/pug/pages/**/*.pug")}, Output: filepath.Join(dir, "dist/pages"), Base: filepath.Join(dir, "src/pug/pages")}
	cfg.Paths.Scripts = config.PathGroup{Input: []string{filepath.Join(dir, "src/js/**/*.js")}, Output: filepath.Join(dir, "dist/js")}
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(dir, "assetbuilder.yaml")
	writeFile(t, path, string(data))
	return path
}

func TestParse_DefaultCommandIsBuild(t *testing.T) {
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{})
	require.NoError(t, err)
	assert.Equal(t, "build", kctx.Command())

	kctx, err = parser.Parse([]string{"watch", "-v"})
	require.NoError(t, err)
	assert.Equal(t, "watch", kctx.Command())
	assert.True(t, cli.Verbose)
}

func TestBuildCmd_Success(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeProjectConfig(t, dir)
	writeFile(t, filepath.Join(dir, "src/scss/main.scss"), "body { margin: 0; }\n")
	writeFile(t, filepath.Join(dir, "src/pug/pages/index.pug"), "h1 Home\n")
	writeFile(t, filepath.Join(dir, "src/js/app.js"), "window.app = 1;\n")

	var out bytes.Buffer
	err := (&BuildCmd{}).Run(testGlobal(&out), &CLI{Config: cfgPath, NoColor: true})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "dist/css/main.css"))
	assert.FileExists(t, filepath.Join(dir, "dist/css/main.min.css"))
	assert.FileExists(t, filepath.Join(dir, "dist/pages/index.html"))
	assert.FileExists(t, filepath.Join(dir, "dist/js/main.js"))
	assert.Empty(t, out.String())
}

func TestBuildCmd_LintFailureExitsNonZero(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeProjectConfig(t, dir)
	writeFile(t, filepath.Join(dir, "src/scss/main.scss"), "body { margin: 0; }\n")
	writeFile(t, filepath.Join(dir, "src/pug/pages/index.pug"), "h1 Home\n")
	writeFile(t, filepath.Join(dir, "src/js/app.js"), "debugger;\n")

	var out bytes.Buffer
	err := (&BuildCmd{}).Run(testGlobal(&out), &CLI{Config: cfgPath, NoColor: true})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryLint))
	assert.NotZero(t, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	assert.Contains(t, out.String(), "no-debugger")
	assert.FileExists(t, filepath.Join(dir, "dist/css/main.css"))
}

func TestBuildCmd_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	writeFile(t, cfgPath, "server:\n  port: -1\n")

	err := (&BuildCmd{}).Run(testGlobal(io.Discard), &CLI{Config: cfgPath})
	require.Error(t, err)
	assert.Equal(t, errors.CategoryValidation, errors.GetCategory(err))
}

func TestBuildCmd_UnknownScriptTarget(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "targets.yaml")
	writeFile(t, cfgPath, "targets:\n  script: es3\n")

	err := (&BuildCmd{}).Run(testGlobal(io.Discard), &CLI{Config: cfgPath})
	require.Error(t, err)
	assert.Equal(t, errors.CategoryConfig, errors.GetCategory(err))
	assert.Contains(t, err.Error(), "es3")
}

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assetbuilder.yaml")

	var out bytes.Buffer
	require.NoError(t, (&InitCmd{}).Run(testGlobal(&out), &CLI{Config: path}))
	assert.Contains(t, out.String(), path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	err = (&InitCmd{}).Run(testGlobal(io.Discard), &CLI{Config: path})
	require.Error(t, err)
	require.NoError(t, (&InitCmd{Force: true}).Run(testGlobal(io.Discard), &CLI{Config: path}))
}
