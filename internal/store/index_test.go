package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestPutGet(t *testing.T) {
	idx := openTestIndex(t)

	_, found, err := idx.Get("/sessions/a.jsonl")
	require.NoError(t, err)
	assert.False(t, found)

	e := Entry{
		Path:         "/sessions/a.jsonl",
		MtimeNs:      1234567890,
		SizeBytes:    4096,
		Cwd:          "/home/dev/proj",
		MessageCount: 17,
	}
	require.NoError(t, idx.Put(e))

	got, found, err := idx.Get("/sessions/a.jsonl")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, e, got)
}

func TestPutReplaces(t *testing.T) {
	idx := openTestIndex(t)

	e := Entry{Path: "/s.jsonl", MtimeNs: 1, SizeBytes: 10, MessageCount: 2}
	require.NoError(t, idx.Put(e))

	e.MtimeNs = 2
	e.MessageCount = 5
	require.NoError(t, idx.Put(e))

	got, found, err := idx.Get("/s.jsonl")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(2), got.MtimeNs)
	assert.Equal(t, 5, got.MessageCount)
}

func TestPrune(t *testing.T) {
	idx := openTestIndex(t)

	require.NoError(t, idx.Put(Entry{Path: "/keep.jsonl", MtimeNs: 1, SizeBytes: 1}))
	require.NoError(t, idx.Put(Entry{Path: "/gone.jsonl", MtimeNs: 1, SizeBytes: 1}))

	require.NoError(t, idx.Prune(map[string]bool{"/keep.jsonl": true}))

	_, found, err := idx.Get("/keep.jsonl")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = idx.Get("/gone.jsonl")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "index.db")
	idx, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	require.NoError(t, idx.Put(Entry{Path: "/x.jsonl", MtimeNs: 1, SizeBytes: 1}))
}
