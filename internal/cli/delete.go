package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a conversation",
	Long: `Delete a conversation's record entirely.

If it was the active conversation, the most recently active remaining
conversation becomes active. Requires confirmation unless --force is
used.

Examples:
  termchat delete scratch
  termchat delete old-notes --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	mgr, err := getManager(false)
	if err != nil {
		return err
	}

	if !deleteForce {
		fmt.Printf("About to delete conversation %q\n", name)
		fmt.Print("Continue? [y/N]: ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	wasActive, _ := mgr.Active()
	if err := mgr.Delete(name); err != nil {
		return err
	}

	switch active, _ := mgr.Active(); {
	case wasActive != name:
		fmt.Printf("Deleted conversation %q\n", name)
	case active != "":
		fmt.Printf("Deleted %q. Switched to previous conversation %q.\n", name, active)
	default:
		fmt.Printf("Deleted %q. No active conversation remains.\n", name)
	}
	return nil
}
