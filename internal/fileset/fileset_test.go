package fileset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestExpand_OrderAndDedup(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "js", "b.js"), "")
	touch(t, filepath.Join(dir, "js", "a.js"), "")
	touch(t, filepath.Join(dir, "js", "vendor", "c.js"), "")
	touch(t, filepath.Join(dir, "js", "notes.txt"), "")

	matches, err := Expand([]string{
		filepath.Join(dir, "js", "vendor", "*.js"),
		filepath.Join(dir, "js", "**", "*.js"),
	})
	require.NoError(t, err)

	var got []string
	for _, m := range matches {
		rel, err := filepath.Rel(dir, m.Path)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"js/vendor/c.js", "js/a.js", "js/b.js"}, got)
	assert.Equal(t, filepath.Join(dir, "js", "vendor"), matches[0].Root)
	assert.Equal(t, filepath.Join(dir, "js"), matches[1].Root)
}

func TestExpand_NoMatches(t *testing.T) {
	matches, err := Expand([]string{filepath.Join(t.TempDir(), "*.scss")})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMatchRel(t *testing.T) {
	m := Match{Path: filepath.Join("src", "pages", "sub", "foo.pug"), Root: filepath.Join("src", "pages")}

	rel, err := m.Rel("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("sub", "foo.pug"), rel)

	rel, err = m.Rel("src")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("pages", "sub", "foo.pug"), rel)

	_, err = m.Rel(filepath.Join("src", "other"))
	assert.Error(t, err)
}

func TestReplaceExt(t *testing.T) {
	assert.Equal(t, "sub/foo.html", ReplaceExt("sub/foo.pug", ".html"))
	assert.Equal(t, "main.min.css", ReplaceExt("main.css", ".min.css"))
	assert.Equal(t, "README.html", ReplaceExt("README", ".html"))
}

func TestWriteFile_CreatesDirsAndSkipsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist", "css", "main.css")

	written, err := WriteFile(path, []byte("a{}"))
	require.NoError(t, err)
	assert.True(t, written)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	written, err = WriteFile(path, []byte("a{}"))
	require.NoError(t, err)
	assert.False(t, written)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.WithinDuration(t, old, info.ModTime(), time.Second)

	written, err = WriteFile(path, []byte("b{}"))
	require.NoError(t, err)
	assert.True(t, written)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "b{}", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}
