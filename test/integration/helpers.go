package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/cmd/assetbuilder/commands"
)

// setupProject copies a fixture project into a temporary directory and makes it
// the working directory, so relative config paths resolve inside it.
func setupProject(t *testing.T, projectPath string) string {
	t.Helper()

	tmpDir := t.TempDir()
	require.NoError(t, copyDir(projectPath, tmpDir), "failed to copy test project")
	t.Chdir(tmpDir)
	return tmpDir
}

// copyDir recursively copies a directory tree.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		targetPath := filepath.Join(dst, relPath)
		if d.IsDir() {
			return os.MkdirAll(targetPath, 0o750)
		}
		return copyFile(path, targetPath)
	})
}

// copyFile copies a single file.
func copyFile(src, dst string) error {
	// #nosec G304 -- test utility with paths from test setup, not user input
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = srcFile.Close() }()

	// #nosec G304 -- test utility with paths from test setup, not user input
	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = dstFile.Close() }()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// runBuild executes the build command against configPath and returns the lint output.
func runBuild(t *testing.T, configPath string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	g := &commands.Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Stdout: &out}
	err := (&commands.BuildCmd{}).Run(g, &commands.CLI{Config: configPath, NoColor: true})
	return out.String(), err
}

// collectOutputs lists the files below outputDir as sorted slash-separated paths.
func collectOutputs(t *testing.T, outputDir string) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(outputDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err, "failed to walk output directory")
	slices.Sort(files)
	return files
}

// verifyOutputs compares the produced file set against a golden listing.
func verifyOutputs(t *testing.T, outputDir, goldenPath string, updateGolden bool) {
	t.Helper()

	actual := collectOutputs(t, outputDir)

	if updateGolden {
		data, err := json.MarshalIndent(actual, "", "  ")
		require.NoError(t, err, "failed to marshal golden listing")
		require.NoError(t, os.MkdirAll(filepath.Dir(goldenPath), 0o750), "failed to create golden directory")
		require.NoError(t, os.WriteFile(goldenPath, append(data, '\n'), 0o600), "failed to write golden file")
		t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	// #nosec G304 -- test utility reading golden file from testdata
	goldenData, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "failed to read golden file: %s", goldenPath)

	var expected []string
	require.NoError(t, json.Unmarshal(goldenData, &expected), "failed to parse golden listing")
	require.Equal(t, expected, actual, "output file set mismatch")
}

// readOutput reads a produced file relative to the project directory.
func readOutput(t *testing.T, projectDir, rel string) string {
	t.Helper()

	// #nosec G304 -- test utility reading from test output directory
	data, err := os.ReadFile(filepath.Join(projectDir, rel))
	require.NoError(t, err, "failed to read output %s", rel)
	return string(data)
}
