package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select <name>",
	Short: "Select a conversation by name",
	Long: `Make a conversation the active one. The previously active
conversation is remembered, so deleting the new selection later falls
back to it.

Examples:
  termchat select work-notes`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

func runSelect(cmd *cobra.Command, args []string) error {
	mgr, err := getManager(false)
	if err != nil {
		return err
	}
	if _, err := mgr.Select(args[0]); err != nil {
		return err
	}
	fmt.Printf("Active conversation set to %q\n", args[0])
	return nil
}
