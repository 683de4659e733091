package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"recall/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	log     zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Retrieval memory for LLM applications",
	Long: `Recall stores documents and conversation history, indexes them for
lexical (BM25) and dense (embedding) retrieval, and serves fused
search results plus summaries.

Example usage:
  recall add ./docs                 # Ingest a directory of documents
  recall chat -s dev "fix the bug"  # Log a conversation turn
  recall query -q "authentication"  # Search stored memory
  recall summary -s dev             # Summarize a session`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level, err := zerolog.ParseLevel(cfg.Logging.Level)
		if err != nil {
			level = zerolog.InfoLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./recall.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}
