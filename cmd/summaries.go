package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/sessum/internal/cli"
	"github.com/theirongolddev/sessum/internal/config"
	"github.com/theirongolddev/sessum/internal/session"
	"github.com/theirongolddev/sessum/internal/summary"
)

var summariesCmd = &cobra.Command{
	Use:   "summaries <session>",
	Short: "List cached summaries for a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummaries,
}

func init() {
	rootCmd.AddCommand(summariesCmd)
}

func runSummaries(_ *cobra.Command, args []string) error {
	cfg := loadedConfig()
	root := sessionsRoot(cfg)

	source, err := session.Resolve(args[0], root)
	if err != nil {
		return err
	}

	resolver := summary.NewPathResolver(config.SummariesDir(cfg), root)
	variants, err := resolver.CachedVariants(source)
	if err != nil {
		return err
	}
	if len(variants) == 0 {
		fmt.Println("\n  No cached summaries.")
		fmt.Println(cli.Muted("  Cache dir: " + resolver.SummaryDir(source)))
		return nil
	}

	fmt.Println()
	rows := make([][]string, 0, len(variants))
	for _, v := range variants {
		rows = append(rows, []string{v.Slug, v.Path})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Variant", "Path"},
		Rows:    rows,
	}))
	return nil
}
