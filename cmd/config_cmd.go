// Package cmd implements the sessum CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/sessum/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current defaults",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Sessions directory:  %s\n", config.SessionsDir(cfg))
	fmt.Printf("    Summaries directory: %s\n", config.SummariesDir(cfg))
	fmt.Printf("    List limit:          %d\n", cfg.General.ListLimit)
	fmt.Println()

	fmt.Println("  [OpenRouter]")
	key := config.APIKey(cfg)
	if key != "" {
		fmt.Printf("    API key:          %s\n", maskAPIKey(key))
	} else {
		fmt.Println("    API key:          not configured (set OPENROUTER_API_KEY)")
	}
	fmt.Printf("    Model:            %s\n", cfg.OpenRouter.Model)
	fmt.Printf("    Reasoning effort: %s\n", cfg.OpenRouter.ReasoningEffort)
	fmt.Printf("    Temperature:      %.2f\n", cfg.OpenRouter.Temperature)
	fmt.Printf("    Max retries:      %d\n", cfg.OpenRouter.MaxRetries)
	fmt.Printf("    Timeout:          %ds\n", cfg.OpenRouter.TimeoutSecs)
	if cfg.OpenRouter.BaseURL != "" {
		fmt.Printf("    Base URL:         %s\n", cfg.OpenRouter.BaseURL)
	}
	fmt.Println()

	fmt.Println("  [Prompts]")
	fmt.Printf("    Default variant: %s\n", cfg.Prompts.DefaultVariant)
	if len(cfg.Prompts.Dirs) > 0 {
		for _, dir := range cfg.Prompts.Dirs {
			fmt.Printf("    Directory:       %s\n", dir)
		}
	} else {
		fmt.Println("    Directories:     (builtin prompts only)")
	}

	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if config.Exists() {
		return fmt.Errorf("%s already exists", config.ConfigPath())
	}
	if err := config.Save(config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("  Wrote %s\n", config.ConfigPath())
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
