package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all conversations",
	Long: `List all conversations, most recently updated first. The active
conversation is marked with an asterisk.

Examples:
  termchat list`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	mgr, err := getManager(false)
	if err != nil {
		return err
	}
	summaries, err := mgr.List()
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No conversations found.")
		return nil
	}

	active, _ := mgr.Active()
	fmt.Printf("Conversations (%d):\n\n", len(summaries))
	for _, s := range summaries {
		name := defaultTheme.nameStyle().Render(s.Name)
		mark := ""
		if s.Name == active {
			mark = defaultTheme.activeStyle().Render(" *")
		}
		meta := defaultTheme.hintStyle().Render(
			fmt.Sprintf("(%s, %d messages, updated %s)",
				s.Platform, s.MessageCount, s.UpdatedAt.Local().Format("2006-01-02 15:04")))
		fmt.Printf("- %s%s %s\n", name, mark, meta)
	}
	return nil
}
