package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <new-name> <source>",
	Short: "Clone an existing conversation",
	Long: `Create an independent copy of a conversation. Messages and
platform/token settings are copied; later changes to either conversation
do not affect the other. The active selection is unchanged.

Examples:
  termchat clone experiment work-notes`,
	Args: cobra.ExactArgs(2),
	RunE: runClone,
}

func runClone(cmd *cobra.Command, args []string) error {
	newName, source := args[0], args[1]
	mgr, err := getManager(false)
	if err != nil {
		return err
	}
	if _, err := mgr.Clone(newName, source); err != nil {
		return err
	}
	fmt.Printf("Created conversation %q from %q\n", newName, source)
	return nil
}
