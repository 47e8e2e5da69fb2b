package pipeline

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/sessum/internal/store"
)

func writeSessions(t *testing.T, root string, names ...string) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	for i, name := range names {
		path := filepath.Join(root, name)
		content := `{"type":"message","content":[{"type":"text","text":"<cwd>/proj/` + name + `</cwd>"}]}` + "\n" +
			`{"type":"message","role":"user"}` + "\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		mtime := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
}

func TestLoad_WithoutIndex(t *testing.T) {
	root := t.TempDir()
	writeSessions(t, root, "a.jsonl", "b.jsonl")

	result, err := Load(root, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalFiles)
	assert.Equal(t, 2, result.Scanned)
	assert.Zero(t, result.IndexHits)
	require.Len(t, result.Sessions, 2)

	// Newest first
	assert.Equal(t, "b.jsonl", result.Sessions[0].Rel)
	assert.Equal(t, "/proj/b.jsonl", result.Sessions[0].Cwd)
	assert.Equal(t, 2, result.Sessions[0].MessageCount)
}

func TestLoad_IndexHitsOnSecondRun(t *testing.T) {
	root := t.TempDir()
	writeSessions(t, root, "a.jsonl", "b.jsonl", "c.jsonl")

	idx, err := store.Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	first, err := Load(root, idx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Scanned)
	assert.Zero(t, first.IndexHits)

	second, err := Load(root, idx, nil)
	require.NoError(t, err)
	assert.Zero(t, second.Scanned)
	assert.Equal(t, 3, second.IndexHits)
	assert.Equal(t, first.Sessions, second.Sessions)
}

func TestLoad_ModifiedFileRescanned(t *testing.T) {
	root := t.TempDir()
	writeSessions(t, root, "a.jsonl")

	idx, err := store.Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	_, err = Load(root, idx, nil)
	require.NoError(t, err)

	// Append a message and bump the mtime
	path := filepath.Join(root, "a.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString(`{"type":"message","role":"assistant"}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	result, err := Load(root, idx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 3, result.Sessions[0].MessageCount)
}

func TestLoad_PrunesDeletedFiles(t *testing.T) {
	root := t.TempDir()
	writeSessions(t, root, "a.jsonl", "b.jsonl")

	dbPath := filepath.Join(t.TempDir(), "index.db")
	idx, err := store.Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	_, err = Load(root, idx, nil)
	require.NoError(t, err)

	removed := filepath.Join(root, "a.jsonl")
	require.NoError(t, os.Remove(removed))

	_, err = Load(root, idx, nil)
	require.NoError(t, err)

	_, found, err := idx.Get(removed)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoad_ProgressCallback(t *testing.T) {
	root := t.TempDir()
	writeSessions(t, root, "a.jsonl", "b.jsonl", "c.jsonl")

	var mu sync.Mutex
	var calls int
	var last int
	_, err := Load(root, nil, func(current, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		assert.Equal(t, 3, total)
		if current > last {
			last = current
		}
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, last)
}

func TestLoad_EmptyRoot(t *testing.T) {
	result, err := Load(filepath.Join(t.TempDir(), "missing"), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, result.TotalFiles)
	assert.Empty(t, result.Sessions)
}
