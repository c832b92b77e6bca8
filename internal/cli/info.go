package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show current parameters",
	Long: `Show the current session parameters: platform, active
conversation, max tokens, and conversation counts.

Examples:
  termchat info`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	mgr, err := getManager(false)
	if err != nil {
		return err
	}
	info, err := mgr.Info()
	if err != nil {
		return err
	}

	active := info.Active
	switch {
	case info.Temporary:
		active = "(temporary)"
	case active == "":
		active = "(none)"
	}
	fmt.Printf("Active conversation: %s\n", defaultTheme.nameStyle().Render(active))
	fmt.Printf("Platform: %s\n", info.Platform)
	fmt.Printf("Max tokens: %d\n", info.MaxTokens)
	fmt.Printf("Total conversations: %d\n", info.Conversations)
	if info.Active != "" || info.Temporary {
		fmt.Printf("Messages in active conversation: %d\n", info.ActiveMessages)
	}
	return nil
}
