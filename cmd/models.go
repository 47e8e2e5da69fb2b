package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/sessum/internal/cli"
)

var (
	flagModelsRefresh bool
	flagModelsFilter  string
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available models and their pricing",
	RunE:  runModels,
}

func init() {
	modelsCmd.Flags().BoolVar(&flagModelsRefresh, "refresh", false, "Bypass the cached catalog")
	modelsCmd.Flags().StringVar(&flagModelsFilter, "filter", "", "Only show model ids containing this substring")
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	cfg := loadedConfig()

	client := newClient(cfg)
	if client == nil {
		return fmt.Errorf("no API key configured (set OPENROUTER_API_KEY or run 'sessum config')")
	}

	catalog, err := client.ModelCatalog(cmd.Context(), flagModelsRefresh)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		if flagModelsFilter != "" && !containsFold(id, flagModelsFilter) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if len(ids) == 0 {
		fmt.Println("\n  No matching models.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MODELS  %d available", len(ids))))
	fmt.Println()

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []string{
			id,
			pricePerMillion(catalog[id], "prompt"),
			pricePerMillion(catalog[id], "completion"),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Model", "In $/M", "Out $/M"},
		Rows:    rows,
	}))

	return nil
}

// pricePerMillion renders a per-token price as dollars per million tokens.
// Catalog prices arrive as strings like "0.0000025".
func pricePerMillion(model map[string]any, component string) string {
	pricing, ok := model["pricing"].(map[string]any)
	if !ok {
		return "-"
	}
	raw, ok := pricing[component]
	if !ok {
		return "-"
	}

	var perToken float64
	switch v := raw.(type) {
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "-"
		}
		perToken = f
	case float64:
		perToken = v
	default:
		return "-"
	}

	return fmt.Sprintf("$%.2f", perToken*1e6)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
