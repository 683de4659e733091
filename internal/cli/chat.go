package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	chatSession string
	chatRole    string
	chatShow    bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Log or list conversation turns",
	Long: `Append a conversation turn to a session, or list a session's
transcript.

Examples:
  recall chat -s dev "how do I rotate the keys"
  recall chat -s dev -r assistant "use the rotate subcommand"
  recall chat -s dev --show`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "session id (required)")
	chatCmd.Flags().StringVarP(&chatRole, "role", "r", "user", "speaker role")
	chatCmd.Flags().BoolVar(&chatShow, "show", false, "print the session transcript instead of appending")
	chatCmd.MarkFlagRequired("session")
}

func runChat(cmd *cobra.Command, args []string) error {
	m, err := openMemory()
	if err != nil {
		return err
	}
	defer m.Close()

	if chatShow {
		messages, err := m.GetConversation(chatSession)
		if err != nil {
			return err
		}
		if len(messages) == 0 {
			fmt.Println("No messages in session.")
			return nil
		}
		for _, msg := range messages {
			fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Format(time.RFC3339), msg.Role, msg.RawContent)
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("message required unless --show is set")
	}
	if err := m.AddConversation(chatSession, chatRole, args[0], nil, time.Time{}); err != nil {
		return err
	}
	fmt.Printf("Logged %s turn in session %q\n", chatRole, chatSession)
	return nil
}
