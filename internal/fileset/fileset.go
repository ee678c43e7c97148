// Package fileset expands stage input patterns and writes stage outputs.
package fileset

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// Match is one file selected by an input pattern.
type Match struct {
	// Path is the matched file, as produced by the pattern.
	Path string
	// Root is the static directory prefix of the pattern that matched.
	Root string
}

// Expand resolves patterns in order. Matches of a single pattern are sorted; a
// file matched by several patterns is reported once, at its first position.
func Expand(patterns []string) ([]Match, error) {
	seen := make(map[string]struct{})
	var out []Match
	for _, pattern := range patterns {
		paths, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}
		slices.Sort(paths)
		root, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		for _, p := range paths {
			key := filepath.Clean(p)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, Match{Path: p, Root: filepath.FromSlash(root)})
		}
	}
	return out, nil
}

// Rel returns the path of m relative to base, or to the pattern root when base is empty.
func (m Match) Rel(base string) (string, error) {
	if base == "" {
		base = m.Root
	}
	rel, err := filepath.Rel(base, m.Path)
	if err != nil {
		return "", err
	}
	if rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
		return "", fmt.Errorf("%s is outside base %s", m.Path, base)
	}
	return rel, nil
}

// ReplaceExt swaps the extension of path for ext (which includes the dot).
func ReplaceExt(path, ext string) string {
	return path[:len(path)-len(filepath.Ext(path))] + ext
}

// WriteFile writes data to path, creating parent directories. Unchanged files are
// left untouched; the returned bool reports whether the file was written.
func WriteFile(path string, data []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return false, fmt.Errorf("create output dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return false, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return false, fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return false, fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return false, fmt.Errorf("rename %s: %w", path, err)
	}
	return true, nil
}
