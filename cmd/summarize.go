package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/sessum/internal/cli"
	"github.com/theirongolddev/sessum/internal/config"
	"github.com/theirongolddev/sessum/internal/openrouter"
	"github.com/theirongolddev/sessum/internal/session"
	"github.com/theirongolddev/sessum/internal/summary"
)

var (
	flagSumModel     string
	flagSumPrompt    string
	flagSumEffort    string
	flagSumRefresh   bool
	flagSumNoCache   bool
	flagSumStripMeta bool
	flagSumMaxTokens int
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <session>",
	Short: "Summarize a session transcript",
	Long: "Generate (or fetch from cache) a summary of a session transcript.\n" +
		"The session may be given as a listing index, a path, or a file name.",
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&flagSumModel, "model", "m", "", "Model id (default from config)")
	summarizeCmd.Flags().StringVarP(&flagSumPrompt, "prompt", "p", "", "Prompt variant (default from config)")
	summarizeCmd.Flags().StringVar(&flagSumEffort, "effort", "", "Reasoning effort: low, medium, high")
	summarizeCmd.Flags().BoolVar(&flagSumRefresh, "refresh", false, "Regenerate even if a cached summary exists")
	summarizeCmd.Flags().BoolVar(&flagSumNoCache, "no-cache", false, "Bypass the cache entirely (no read, still writes)")
	summarizeCmd.Flags().BoolVar(&flagSumStripMeta, "strip-metadata", false, "Print only the summary body, no front matter")
	summarizeCmd.Flags().IntVar(&flagSumMaxTokens, "max-tokens", 0, "Completion token cap (0 = provider default)")
	rootCmd.AddCommand(summarizeCmd)
}

// newClient builds the OpenRouter client from config, or nil when no API
// key is available. A nil client still serves cached summaries.
func newClient(cfg config.Config) *openrouter.Client {
	key := config.APIKey(cfg)
	if key == "" {
		return nil
	}

	opts := []openrouter.Option{
		openrouter.WithCatalogPath(config.ModelCatalogPath()),
	}
	if cfg.OpenRouter.BaseURL != "" {
		opts = append(opts, openrouter.WithBaseURL(cfg.OpenRouter.BaseURL))
	}
	if cfg.OpenRouter.Referer != "" {
		opts = append(opts, openrouter.WithReferer(cfg.OpenRouter.Referer))
	}
	if cfg.OpenRouter.Title != "" {
		opts = append(opts, openrouter.WithTitle(cfg.OpenRouter.Title))
	}
	if cfg.OpenRouter.MaxRetries > 0 {
		opts = append(opts, openrouter.WithMaxRetries(cfg.OpenRouter.MaxRetries))
	}
	if cfg.OpenRouter.TimeoutSecs > 0 {
		opts = append(opts, openrouter.WithTimeout(time.Duration(cfg.OpenRouter.TimeoutSecs)*time.Second))
	}

	client, err := openrouter.New(key, opts...)
	if err != nil {
		return nil
	}
	return client
}

// newService wires the summary service from config.
func newService(cfg config.Config, root string) *summary.Service {
	prompts := summary.NewPromptLoader(cfg.Prompts.Dirs...)
	var client summary.Completer
	if c := newClient(cfg); c != nil {
		client = c
	}
	return summary.NewService(config.SummariesDir(cfg), root, client, prompts)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg := loadedConfig()
	root := sessionsRoot(cfg)

	source, err := session.Resolve(args[0], root)
	if err != nil {
		return err
	}

	model := flagSumModel
	if model == "" {
		model = cfg.OpenRouter.Model
	}
	variant := flagSumPrompt
	if variant == "" {
		variant = cfg.Prompts.DefaultVariant
	}
	effort := flagSumEffort
	if effort == "" {
		effort = cfg.OpenRouter.ReasoningEffort
	}

	svc := newService(cfg, root)
	rec, err := svc.Generate(cmd.Context(), summary.Request{
		SessionPath:     source,
		PromptVariant:   variant,
		Model:           model,
		ReasoningEffort: effort,
		Refresh:         flagSumRefresh,
		StripMetadata:   flagSumStripMeta,
	}, summary.GenerateOptions{
		NoCache:     flagSumNoCache,
		Temperature: cfg.OpenRouter.Temperature,
		MaxTokens:   flagSumMaxTokens,
	})
	if err != nil {
		return err
	}

	if flagSumStripMeta {
		fmt.Print(rec.Body)
	} else {
		stored, readErr := os.ReadFile(rec.CachePath)
		if readErr != nil {
			fmt.Print(rec.Body)
		} else {
			fmt.Print(string(stored))
		}
	}

	if flagQuiet {
		return nil
	}
	if rec.Cached {
		fmt.Fprintf(os.Stderr, "\n%s\n", cli.Muted("  cached: "+rec.CachePath))
	} else {
		line := "  saved: " + rec.CachePath
		if cost, ok := rec.Metadata["cost_estimate_usd"].(map[string]float64); ok {
			if total, ok := cost["total"]; ok {
				line += "  cost: " + cli.FormatCost(total)
			}
		}
		fmt.Fprintf(os.Stderr, "\n%s\n", cli.Muted(line))
	}
	return nil
}
