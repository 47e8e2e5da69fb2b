package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/sessum/internal/cli"
)

var flagListLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions, newest first",
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVarP(&flagListLimit, "limit", "l", 0, "Maximum rows to show (default from config)")
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	cfg := loadedConfig()
	root := sessionsRoot(cfg)

	result, err := loadSessions(root)
	if err != nil {
		return err
	}
	if len(result.Sessions) == 0 {
		fmt.Printf("\n  No sessions found in %s\n", root)
		return nil
	}

	limit := flagListLimit
	if limit <= 0 {
		limit = cfg.General.ListLimit
	}
	sessions := result.Sessions
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SESSIONS  %s", root)))
	fmt.Println()

	rows := make([][]string, 0, len(sessions))
	for i, s := range sessions {
		cwd := s.Cwd
		if cwd == "" {
			cwd = cli.Muted("-")
		} else {
			cwd = cli.Truncate(cwd, 40)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			cli.Truncate(s.Rel, 48),
			cli.FormatAge(s.ModTime),
			cli.FormatSize(s.Size),
			cli.FormatNumber(int64(s.MessageCount)),
			cwd,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"#", "Session", "Age", "Size", "Msgs", "Cwd"},
		Rows:    rows,
	}))

	if len(sessions) < len(result.Sessions) {
		fmt.Println(cli.Muted(fmt.Sprintf("  Showing %d of %d sessions (-l to change)", len(sessions), len(result.Sessions))))
	}

	return nil
}
