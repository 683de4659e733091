package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func relPaths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}

func TestWalkerIncludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes/a.md", "alpha")
	writeFile(t, root, "notes/b.txt", "beta")
	writeFile(t, root, "c.md", "gamma")

	w := NewWalker([]string{"**/*.md", "*.md"}, nil)
	files, err := w.Walk(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join("notes", "a.md"), "c.md"}, relPaths(files))
}

func TestWalkerExcludePrunesDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/keep.md", "keep")
	writeFile(t, root, "vendor/skip.md", "skip")

	w := NewWalker(nil, []string{"vendor/**"})
	files, err := w.Walk(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join("docs", "keep.md")}, relPaths(files))
}

func TestWalkerDefaultsToEverything(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "one.txt", "1")
	writeFile(t, root, "two.txt", "2")

	w := NewWalker(nil, nil)
	files, err := w.Walk(root)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
