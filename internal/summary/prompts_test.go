package summary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptLoader_Builtins(t *testing.T) {
	l := NewPromptLoader()

	for _, name := range []string{"default", "detailed"} {
		doc, err := l.Load(name)
		require.NoError(t, err, "builtin %q", name)
		assert.Contains(t, doc.Content, "{{")
		assert.Equal(t, "embedded:prompts/"+name+".md", doc.Path)
	}
}

func TestPromptLoader_DirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "default.md")
	require.NoError(t, os.WriteFile(custom, []byte("Custom: {{session}}\n"), 0o600))

	doc, err := NewPromptLoader(dir).Load("default")
	require.NoError(t, err)
	assert.Equal(t, custom, doc.Path)
	assert.Contains(t, doc.Content, "Custom:")
}

func TestPromptLoader_TxtFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "terse.txt"), []byte("{{session}}"), 0o600))

	doc, err := NewPromptLoader(dir).Load("terse")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "terse.txt"), doc.Path)
}

func TestPromptLoader_DirectPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mine.md")
	require.NoError(t, os.WriteFile(path, []byte("summarize {{session}} now"), 0o600))

	doc, err := NewPromptLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
}

func TestPromptLoader_NotFound(t *testing.T) {
	_, err := NewPromptLoader(t.TempDir()).Load("no-such-variant")
	assert.ErrorContains(t, err, "not found")
}

func TestPromptValidation_UnbalancedBraces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.md")
	require.NoError(t, os.WriteFile(path, []byte("{{session}} and a stray {{"), 0o600))

	_, err := NewPromptLoader().Load(path)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "mismatched")
}

func TestPromptValidation_NoPlaceholders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "static.md")
	require.NoError(t, os.WriteFile(path, []byte("no placeholders at all"), 0o600))

	_, err := NewPromptLoader().Load(path)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "placeholders")
}
