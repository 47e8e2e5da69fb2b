package summary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "summary.md")
	metadata := map[string]any{
		"model":          "openai/gpt-4o-mini",
		"prompt_variant": "default",
		"message_count":  42,
	}

	written, err := WriteSummary(path, "The session covered three topics.", metadata)
	require.NoError(t, err)
	assert.Equal(t, "The session covered three topics.\n", written.Body)

	read, err := ReadSummary(path)
	require.NoError(t, err)
	assert.Equal(t, written.Body, read.Body)
	assert.Equal(t, "openai/gpt-4o-mini", read.Metadata["model"])
	assert.Equal(t, "default", read.Metadata["prompt_variant"])
	assert.Equal(t, 42, read.Metadata["message_count"])
	assert.True(t, read.Cached)
}

func TestWriteSummary_Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	_, err := WriteSummary(path, "body text", map[string]any{"k": "v"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, "---\n"))
	assert.Contains(t, content, "\n---\n\nbody text\n")
	assert.True(t, strings.HasSuffix(content, "\n"))
}

func TestWriteSummary_EmptyMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	_, err := WriteSummary(path, "just the body", nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// No front matter block at all
	assert.Equal(t, "just the body\n", string(data))

	read, err := ReadSummary(path)
	require.NoError(t, err)
	assert.Equal(t, "just the body\n", read.Body)
	assert.Empty(t, read.Metadata)
}

func TestReadSummary_MissingClosingDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	content := "---\nkey: value\nno closing delimiter here"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	read, err := ReadSummary(path)
	require.NoError(t, err)
	// Everything is body; nothing is lost
	assert.Equal(t, content+"\n", read.Body)
	assert.Empty(t, read.Metadata)
}

func TestReadSummary_NonMappingFrontMatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	require.NoError(t, os.WriteFile(path, []byte("---\n- a\n- b\n---\n\nbody\n"), 0o644))

	_, err := ReadSummary(path)
	assert.ErrorContains(t, err, "mapping")
}

func TestReadSummary_EmptyFrontMatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	require.NoError(t, os.WriteFile(path, []byte("---\n---\n\nbody\n"), 0o644))

	read, err := ReadSummary(path)
	require.NoError(t, err)
	assert.Equal(t, "body\n", read.Body)
	assert.Empty(t, read.Metadata)
}

func TestReadSummary_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	require.NoError(t, os.WriteFile(path, []byte("---\nkey: [unclosed\n---\n\nbody\n"), 0o644))

	_, err := ReadSummary(path)
	assert.ErrorContains(t, err, "front matter")
}
