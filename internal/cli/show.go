package cli

import (
	"errors"
	"fmt"

	"github.com/raphaelgruber/termchat/internal/manager"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a conversation's messages",
	Long: `Print a conversation's transcript. Without a name the active
conversation is shown.

Examples:
  termchat show
  termchat show work-notes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	mgr, err := getManager(false)
	if err != nil {
		return err
	}
	conv, err := mgr.Show(name)
	if errors.Is(err, manager.ErrNoActive) {
		fmt.Println("No active conversation. Use 'termchat show <name>' or select one first.")
		return nil
	}
	if err != nil {
		return err
	}

	title := conv.Name
	if title == "" {
		title = "(temporary)"
	}
	fmt.Printf("Conversation: %s\n", defaultTheme.nameStyle().Render(title))
	if len(conv.Messages) == 0 {
		fmt.Println("No messages yet.")
		return nil
	}
	renderMessages(conv.Messages)
	return nil
}
