package cmd

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/sessum/internal/logging"
	"github.com/theirongolddev/sessum/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse sessions interactively",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(_ *cobra.Command, _ []string) error {
	cfg := loadedConfig()
	root := sessionsRoot(cfg)

	// Log lines would corrupt the alternate screen
	logging.Silence("summary", io.Discard)
	logging.Silence("openrouter", io.Discard)

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(cfg, newService(cfg, root), root)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
