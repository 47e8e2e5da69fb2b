package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/sessum/internal/session"
)

var (
	flagExtractOutput string
	flagExtractDir    string
	flagExtractStdout bool
	flagExtractForce  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <session>",
	Short: "Extract a session's message log",
	Long: "Extract the message entries from a session transcript into a JSONL file.\n" +
		"The session may be given as a listing index, a path, or a file name.",
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&flagExtractOutput, "output", "o", "", "Destination file")
	extractCmd.Flags().StringVar(&flagExtractDir, "output-dir", "", "Destination directory (file named after the session)")
	extractCmd.Flags().BoolVar(&flagExtractStdout, "stdout", false, "Write messages to stdout instead of a file")
	extractCmd.Flags().BoolVarP(&flagExtractForce, "force", "f", false, "Overwrite the destination if it exists")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(_ *cobra.Command, args []string) error {
	cfg := loadedConfig()
	root := sessionsRoot(cfg)

	source, err := session.Resolve(args[0], root)
	if err != nil {
		return err
	}

	if flagExtractStdout {
		enc := json.NewEncoder(os.Stdout)
		return session.EachMessage(source, func(msg map[string]any) error {
			return enc.Encode(msg)
		})
	}

	dest := flagExtractOutput
	if dest == "" {
		base := filepath.Base(source)
		name := strings.TrimSuffix(base, filepath.Ext(base)) + ".messages.jsonl"
		if flagExtractDir != "" {
			dest = filepath.Join(flagExtractDir, name)
		} else {
			dest = name
		}
	}

	if !flagExtractForce {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", dest)
		}
	}

	count, err := session.WriteMessagesLog(source, dest)
	if err != nil {
		return err
	}

	if !flagQuiet {
		fmt.Printf("  Wrote %d messages to %s\n", count, dest)
	}
	return nil
}
