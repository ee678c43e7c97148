package integration

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

var updateGolden = flag.Bool("update-golden", false, "Update golden files")

// fixture resolves testdata paths before the test changes directory.
func fixture(t *testing.T, rel string) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("../testdata", rel))
	require.NoError(t, err)
	return abs
}

// TestGolden_BasicProject builds a project using every stage.
// This test verifies:
// - Partials produce no output of their own
// - Template paths keep their structure below the base
// - Scripts are bundled into a single file.
func TestGolden_BasicProject(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping golden test in short mode")
	}

	configPath := fixture(t, "configs/basic.yaml")
	goldenPath := fixture(t, "golden/basic/outputs.json")
	dir := setupProject(t, fixture(t, "projects/basic"))

	_, err := runBuild(t, configPath)
	require.NoError(t, err)

	verifyOutputs(t, filepath.Join(dir, "dist"), goldenPath, *updateGolden)

	css := readOutput(t, dir, "dist/css/main.css")
	assert.Contains(t, css, ".layout .title")
	assert.Contains(t, css, "#336699")
	assert.NotContains(t, css, "$primary")
	assert.Less(t, len(readOutput(t, dir, "dist/css/main.min.css")), len(css))

	index := readOutput(t, dir, "dist/pages/index.html")
	assert.Contains(t, index, "<title>Home</title>")
	assert.Contains(t, index, "<h1>Welcome</h1>")

	changelog := readOutput(t, dir, "dist/pages/changelog.html")
	assert.Contains(t, changelog, "<title>Changelog</title>")
	assert.Contains(t, changelog, `<h1 id="changes">Changes</h1>`)

	bundle := readOutput(t, dir, "dist/js/main.js")
	assert.Contains(t, bundle, "hello")
	assert.Contains(t, bundle, "sum")
}

// TestGolden_LintFailure verifies that a lint error fails the build while every
// other stage still produces its output.
func TestGolden_LintFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping golden test in short mode")
	}

	configPath := fixture(t, "configs/basic.yaml")
	goldenPath := fixture(t, "golden/basic/outputs.json")
	dir := setupProject(t, fixture(t, "projects/basic"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src/js/debug.js"), []byte("debugger;\n"), 0o600))

	out, err := runBuild(t, configPath)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryLint))
	assert.Contains(t, out, `"rule": "no-debugger"`)

	verifyOutputs(t, filepath.Join(dir, "dist"), goldenPath, false)
}

// TestGolden_RebuildLeavesOutputsUntouched verifies that a second build over
// unchanged sources rewrites nothing.
func TestGolden_RebuildLeavesOutputsUntouched(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping golden test in short mode")
	}

	configPath := fixture(t, "configs/basic.yaml")
	dir := setupProject(t, fixture(t, "projects/basic"))

	_, err := runBuild(t, configPath)
	require.NoError(t, err)

	before := make(map[string]os.FileInfo)
	for _, rel := range collectOutputs(t, filepath.Join(dir, "dist")) {
		info, statErr := os.Stat(filepath.Join(dir, "dist", rel))
		require.NoError(t, statErr)
		before[rel] = info
	}

	_, err = runBuild(t, configPath)
	require.NoError(t, err)

	for rel, info := range before {
		after, statErr := os.Stat(filepath.Join(dir, "dist", rel))
		require.NoError(t, statErr)
		assert.Equal(t, info.ModTime(), after.ModTime(), "%s was rewritten", rel)
	}
}
