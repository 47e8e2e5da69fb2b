package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates a sessions root with transcripts at the given relative
// paths, each one minute newer than the previous.
func writeTree(t *testing.T, rels ...string) string {
	t.Helper()
	root := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(`{"type":"message"}`+"\n"), 0o600))
		mtime := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
	return root
}

func TestScan_NewestFirst(t *testing.T) {
	root := writeTree(t,
		"2026/08/01/oldest.jsonl",
		"2026/08/02/middle.jsonl",
		"2026/08/03/newest.jsonl",
		"2026/08/03/notes.txt",
	)

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "2026/08/03/newest.jsonl", files[0].Rel)
	assert.Equal(t, "2026/08/02/middle.jsonl", files[1].Rel)
	assert.Equal(t, "2026/08/01/oldest.jsonl", files[2].Rel)
	assert.Greater(t, files[0].Size, int64(0))
}

func TestScan_MissingRoot(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestResolve_ByIndex(t *testing.T) {
	root := writeTree(t, "a.jsonl", "b.jsonl", "c.jsonl")

	// Index 1 is the newest
	path, err := Resolve("1", root)
	require.NoError(t, err)
	assert.Equal(t, "c.jsonl", filepath.Base(path))

	path, err = Resolve("3", root)
	require.NoError(t, err)
	assert.Equal(t, "a.jsonl", filepath.Base(path))

	_, err = Resolve("4", root)
	assert.ErrorContains(t, err, "out of range")

	_, err = Resolve("0", root)
	assert.ErrorContains(t, err, "out of range")
}

func TestResolve_ByPath(t *testing.T) {
	root := writeTree(t, "sub/x.jsonl")
	full := filepath.Join(root, "sub", "x.jsonl")

	path, err := Resolve(full, root)
	require.NoError(t, err)
	assert.Equal(t, full, path)
}

func TestResolve_ByBasename(t *testing.T) {
	root := writeTree(t, "2026/one.jsonl", "2026/two.jsonl")

	path, err := Resolve("one.jsonl", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "2026", "one.jsonl"), path)
}

func TestResolve_AmbiguousBasename(t *testing.T) {
	root := writeTree(t, "a/same.jsonl", "b/same.jsonl")

	_, err := Resolve("same.jsonl", root)
	assert.ErrorContains(t, err, "ambiguous")
}

func TestResolve_NotFound(t *testing.T) {
	root := writeTree(t, "a.jsonl")

	_, err := Resolve("missing.jsonl", root)
	assert.ErrorContains(t, err, "session not found")
}
