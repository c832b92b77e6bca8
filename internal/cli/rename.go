package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <old> [new]",
	Short: "Rename a conversation",
	Long: `Rename a conversation without altering its messages. If the new
name is omitted, a short title is generated from the conversation's last
message by the model.

If the conversation is active it stays active under its new name, and
references to it in the previously-active history follow the rename.

Examples:
  termchat rename scratch work-notes
  termchat rename conv_3`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRename,
}

func runRename(cmd *cobra.Command, args []string) error {
	oldName := args[0]

	if len(args) == 2 {
		mgr, err := getManager(false)
		if err != nil {
			return err
		}
		if err := mgr.Rename(oldName, args[1]); err != nil {
			return err
		}
		fmt.Printf("Renamed %q to %q\n", oldName, args[1])
		return nil
	}

	// Auto-alias needs the model for the title.
	mgr, err := getManager(true)
	if err != nil {
		return err
	}
	newName, err := mgr.RenameAuto(context.Background(), oldName)
	if err != nil {
		return err
	}
	fmt.Printf("Renamed %q to generated alias %q\n", oldName, newName)
	return nil
}
