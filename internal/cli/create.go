package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new conversation and make it active",
	Long: `Create a new conversation and make it active.

With a name the conversation is persisted immediately. Without one a
temporary conversation starts; it is saved under a generated name after
its first completed exchange.

On a terminal the interactive chat loop opens right away.

Examples:
  termchat create work-notes
  termchat create`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	mgr, err := getManager(interactive)
	if err != nil {
		return err
	}

	if _, err := mgr.Create(name); err != nil {
		return err
	}
	if name == "" {
		fmt.Println("Starting new temporary conversation. It is saved under a generated name after the first exchange.")
	} else {
		fmt.Printf("Created conversation %q\n", name)
	}

	if interactive {
		return chatLoop(mgr)
	}
	return nil
}
