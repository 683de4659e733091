package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"recall/config"
)

var (
	queryText string
	queryTopK int
	queryMode string
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search stored memory",
	Long: `Search stored documents with the configured retrieval modes and
score fusion.

Examples:
  recall query -q "authentication handler"
  recall query -q "database pooling" --top-k 10 --json
  recall query -q "error budget" --mode lexical`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().StringVar(&queryMode, "mode", "", "retrieval mode override (lexical, vector or hybrid)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	switch queryMode {
	case "":
	case config.ModeLexical, config.ModeVector:
		cfg.Retrieve.Modes = []string{queryMode}
	case "hybrid":
		cfg.Retrieve.Modes = []string{config.ModeLexical, config.ModeVector}
	default:
		return fmt.Errorf("unknown mode %q", queryMode)
	}

	topK := cfg.Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	m, err := openMemory()
	if err != nil {
		return err
	}
	defer m.Close()

	results, err := m.Search(cmd.Context(), queryText, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Printf("--- [%d] %s (score: %.3f) ---\n", i+1, r.ChunkID, r.Score)
		text := r.Text
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}
	return nil
}
