// Package config handles sessum configuration loading and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all sessum configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	OpenRouter OpenRouterConfig `toml:"openrouter"`
	Prompts    PromptsConfig    `toml:"prompts"`
}

// GeneralConfig holds directory layout and listing preferences.
type GeneralConfig struct {
	SessionsDir  string `toml:"sessions_dir,omitempty"`
	SummariesDir string `toml:"summaries_dir,omitempty"`
	ListLimit    int    `toml:"list_limit"`
}

// OpenRouterConfig holds OpenRouter API settings.
type OpenRouterConfig struct {
	APIKey          string  `toml:"api_key,omitempty"`
	BaseURL         string  `toml:"base_url,omitempty"`
	Referer         string  `toml:"referer,omitempty"`
	Title           string  `toml:"title,omitempty"`
	Model           string  `toml:"model,omitempty"`
	ReasoningEffort string  `toml:"reasoning_effort,omitempty"`
	Temperature     float64 `toml:"temperature"`
	MaxRetries      int     `toml:"max_retries"`
	TimeoutSecs     int     `toml:"timeout_secs"`
}

// PromptsConfig holds prompt template search settings.
type PromptsConfig struct {
	Dirs           []string `toml:"dirs,omitempty"`
	DefaultVariant string   `toml:"default_variant,omitempty"`
}

// DefaultModel is used when neither config nor flags name one.
const DefaultModel = "openai/gpt-4o-mini"

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			ListLimit: 20,
		},
		OpenRouter: OpenRouterConfig{
			Model:           DefaultModel,
			ReasoningEffort: "medium",
			Temperature:     0.2,
			MaxRetries:      3,
			TimeoutSecs:     60,
		},
		Prompts: PromptsConfig{
			DefaultVariant: "default",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sessum")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "sessum")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "sessum")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "sessum")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := os.MkdirAll(ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// APIKey returns the OpenRouter key from env var or config, in that order.
func APIKey(cfg Config) string {
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		return key
	}
	return cfg.OpenRouter.APIKey
}

// SessionsDir returns the configured sessions root, defaulting to
// ~/.codex/sessions.
func SessionsDir(cfg Config) string {
	if cfg.General.SessionsDir != "" {
		return expandHome(cfg.General.SessionsDir)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".codex", "sessions")
}

// SummariesDir returns the configured summary root, defaulting to the
// data directory.
func SummariesDir(cfg Config) string {
	if cfg.General.SummariesDir != "" {
		return expandHome(cfg.General.SummariesDir)
	}
	return filepath.Join(DataDir(), "summaries")
}

// IndexPath returns the location of the SQLite session index.
func IndexPath() string {
	return filepath.Join(DataDir(), "index.db")
}

// ModelCatalogPath returns the on-disk location of the cached model catalog.
func ModelCatalogPath() string {
	return filepath.Join(DataDir(), "models.json")
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
