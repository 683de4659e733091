package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"recall/internal/usecase"
)

var (
	summarySession string
	summaryDoc     string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize a session or document",
	Long: `Condense a session transcript or a stored document into a short
summary. Exactly one of --session or --doc must be given.

Examples:
  recall summary -s dev
  recall summary --doc release-notes`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVarP(&summarySession, "session", "s", "", "session id to summarize")
	summaryCmd.Flags().StringVar(&summaryDoc, "doc", "", "document id to summarize")
}

func runSummary(cmd *cobra.Command, args []string) error {
	m, err := openMemory()
	if err != nil {
		return err
	}
	defer m.Close()

	summary, err := m.CreateSummary(cmd.Context(), usecase.SummaryRequest{
		SessionID: summarySession,
		DocID:     summaryDoc,
	})
	if err != nil {
		return err
	}
	fmt.Println(summary)
	return nil
}
