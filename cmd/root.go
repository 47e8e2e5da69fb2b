package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/sessum/internal/config"
	"github.com/theirongolddev/sessum/internal/pipeline"
)

var (
	flagSessionsDir string
	flagQuiet       bool
	flagNoIndex     bool
)

var rootCmd = &cobra.Command{
	Use:   "sessum",
	Short: "Session transcript summarizer",
	Long:  "Browse recorded session transcripts, extract their message logs, and summarize them via OpenRouter.",
	RunE:  runList,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagSessionsDir, "sessions-dir", "d", "", "Sessions directory (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagNoIndex, "no-index", false, "Skip the SQLite index, rescan everything")
}

// loadedConfig loads config, falling back to defaults when no file exists.
func loadedConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// sessionsRoot resolves the sessions directory from the flag or config.
func sessionsRoot(cfg config.Config) string {
	if flagSessionsDir != "" {
		return flagSessionsDir
	}
	return config.SessionsDir(cfg)
}

// loadSessions is the shared listing path used by list and browse.
// Uses the SQLite index when available for fast subsequent runs.
func loadSessions(root string) (*pipeline.LoadResult, error) {
	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%50 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Scanning [%d/%d]", current, total)
		}
	}

	idx := pipeline.OpenIndex(config.IndexPath())
	if flagNoIndex {
		pipeline.CloseIndex(idx)
		idx = nil
	}
	defer pipeline.CloseIndex(idx)

	result, err := pipeline.Load(root, idx, progressFn)
	if err != nil {
		return nil, err
	}

	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  %d sessions (%d from index, %d scanned)    \n",
			result.TotalFiles, result.IndexHits, result.Scanned)
	}

	return result, nil
}
