package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateXDG points config and data dirs at temp locations.
func isolateXDG(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func TestLoad_NoFileReturnsDefaults(t *testing.T) {
	isolateXDG(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, cfg.OpenRouter.Model)
	assert.Equal(t, 0.2, cfg.OpenRouter.Temperature)
	assert.Equal(t, 3, cfg.OpenRouter.MaxRetries)
	assert.Equal(t, "default", cfg.Prompts.DefaultVariant)
	assert.False(t, Exists())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolateXDG(t)

	cfg := DefaultConfig()
	cfg.General.SessionsDir = "/srv/sessions"
	cfg.OpenRouter.Model = "anthropic/claude-sonnet-4"
	cfg.Prompts.Dirs = []string{"/etc/sessum/prompts"}

	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/sessions", loaded.General.SessionsDir)
	assert.Equal(t, "anthropic/claude-sonnet-4", loaded.OpenRouter.Model)
	assert.Equal(t, []string{"/etc/sessum/prompts"}, loaded.Prompts.Dirs)
}

func TestLoad_MalformedFile(t *testing.T) {
	isolateXDG(t)

	require.NoError(t, os.MkdirAll(ConfigDir(), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("not [valid toml"), 0o600))

	_, err := Load()
	assert.ErrorContains(t, err, "parsing config")
}

func TestAPIKey_EnvWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OpenRouter.APIKey = "from-config"

	t.Setenv("OPENROUTER_API_KEY", "from-env")
	assert.Equal(t, "from-env", APIKey(cfg))

	t.Setenv("OPENROUTER_API_KEY", "")
	assert.Equal(t, "from-config", APIKey(cfg))
}

func TestSessionsDir(t *testing.T) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".codex", "sessions"), SessionsDir(cfg))

	cfg.General.SessionsDir = "/custom/sessions"
	assert.Equal(t, "/custom/sessions", SessionsDir(cfg))

	cfg.General.SessionsDir = "~/my-sessions"
	assert.Equal(t, filepath.Join(home, "my-sessions"), SessionsDir(cfg))
}

func TestDataPaths(t *testing.T) {
	dir := isolateXDG(t)

	assert.Equal(t, filepath.Join(dir, "data", "sessum", "index.db"), IndexPath())
	assert.Equal(t, filepath.Join(dir, "data", "sessum", "models.json"), ModelCatalogPath())
	assert.Equal(t, filepath.Join(dir, "data", "sessum", "summaries"), SummariesDir(DefaultConfig()))
}
