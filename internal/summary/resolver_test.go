package summary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"default", "default"},
		{"Hello, World!", "hello-world"},
		{"already-slug", "already-slug"},
		{"  spaces  around  ", "spaces-around"},
		{"--dashes--", "dashes"},
		{"", "default"},
		{"!!!", "default"},
		{"MixedCase123", "mixedcase123"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slug(tc.in), "Slug(%q)", tc.in)
	}
}

func TestCachePath_Deterministic(t *testing.T) {
	r := NewPathResolver("/summaries", "/sessions")

	a := r.CachePath("/sessions/2026/08/one.jsonl", "default")
	b := r.CachePath("/sessions/2026/08/one.jsonl", "default")
	assert.Equal(t, a, b)

	want := filepath.Join("/summaries", "2026", "08", "one.jsonl", "default", "summary.md")
	assert.Equal(t, want, a)
}

func TestCachePath_ModelDoesNotParticipate(t *testing.T) {
	// Only session path and prompt variant shape the location; differing
	// models share one slot per variant.
	r := NewPathResolver("/summaries", "/sessions")
	path := r.CachePath("/sessions/s.jsonl", "detailed")
	assert.Contains(t, path, filepath.Join("s.jsonl", "detailed"))
	assert.NotContains(t, path, "gpt")
}

func TestCachePath_VariantSlugged(t *testing.T) {
	r := NewPathResolver("/summaries", "/sessions")
	path := r.CachePath("/sessions/s.jsonl", "My Fancy Prompt!")
	assert.Contains(t, path, string(filepath.Separator)+"my-fancy-prompt"+string(filepath.Separator))
}

func TestCachePath_ExternalSession(t *testing.T) {
	r := NewPathResolver("/summaries", "/sessions")

	path := r.CachePath("/elsewhere/run-01.jsonl", "default")
	rel, err := filepath.Rel("/summaries", path)
	require.NoError(t, err)

	parts := strings.Split(filepath.ToSlash(rel), "/")
	require.GreaterOrEqual(t, len(parts), 2)
	assert.Equal(t, "external", parts[0])
	// 12-hex digest plus slug of the file stem
	assert.Regexp(t, `^[0-9a-f]{12}-run-01$`, parts[1])

	// Same path, same digest
	again := r.CachePath("/elsewhere/run-01.jsonl", "default")
	assert.Equal(t, path, again)

	// Different path, different digest
	other := r.CachePath("/elsewhere2/run-01.jsonl", "default")
	assert.NotEqual(t, path, other)
}

func TestCachePath_NoSessionsRoot(t *testing.T) {
	r := NewPathResolver("/summaries", "")
	path := r.CachePath("/sessions/s.jsonl", "default")
	assert.Contains(t, filepath.ToSlash(path), "/external/")
}

func TestMessagesPath_SharedAcrossVariants(t *testing.T) {
	r := NewPathResolver("/summaries", "/sessions")
	mp := r.MessagesPath("/sessions/s.jsonl")
	assert.Equal(t, filepath.Join("/summaries", "s.jsonl", "summary.messages.jsonl"), mp)
}

func TestCachedVariants(t *testing.T) {
	summaryRoot := t.TempDir()
	sessionsRoot := t.TempDir()
	r := NewPathResolver(summaryRoot, sessionsRoot)
	sessionPath := filepath.Join(sessionsRoot, "s.jsonl")

	// Nothing cached yet
	variants, err := r.CachedVariants(sessionPath)
	require.NoError(t, err)
	assert.Empty(t, variants)

	for _, slug := range []string{"detailed", "default"} {
		path := r.CachePath(sessionPath, slug)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("body\n"), 0o644))
	}
	// A variant dir without a summary file does not count
	require.NoError(t, os.MkdirAll(filepath.Join(r.SummaryDir(sessionPath), "empty"), 0o755))

	variants, err = r.CachedVariants(sessionPath)
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, "default", variants[0].Slug)
	assert.Equal(t, "detailed", variants[1].Slug)
}
