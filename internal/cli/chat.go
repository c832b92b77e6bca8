package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/raphaelgruber/termchat/internal/manager"
	"github.com/raphaelgruber/termchat/internal/models"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const divider = "--------------------------------------------------"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat interactively with the active conversation",
	Long: `Open the interactive chat loop with the active conversation.

Replies stream as they arrive. Type 'exit' or 'quit' to leave; Ctrl+C
during a reply cancels that exchange only, discarding the partial reply.

Examples:
  termchat chat
  termchat select work-notes && termchat chat`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("interactive chat requires a terminal")
	}
	mgr, err := getManager(true)
	if err != nil {
		return err
	}
	if active, temp := mgr.Active(); active == "" && !temp {
		fmt.Println("No active conversation. Use 'termchat create' or 'termchat select' to begin.")
		return nil
	}
	return chatLoop(mgr)
}

// chatLoop drives the interactive prompt until the user leaves.
func chatLoop(mgr *manager.Manager) error {
	info, err := mgr.Info()
	if err != nil {
		return err
	}
	active := info.Active
	if info.Temporary {
		active = "new/temporary"
	}
	fmt.Printf("Platform: %s | Active: %s | Max tokens: %d\n", info.Platform, active, info.MaxTokens)
	fmt.Println(defaultTheme.hintStyle().Render("Type 'exit' or Ctrl+C to quit."))
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	if info.ActiveMessages > 0 {
		fmt.Printf("Show previous messages (%d)? [Y/n]: ", info.ActiveMessages)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response == "" || response == "y" || response == "yes" {
			conv, err := mgr.Show("")
			if err != nil {
				return err
			}
			renderMessages(conv.Messages)
		}
	}

	for {
		fmt.Print(defaultTheme.roleStyle().Render("You: "))
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}

		fmt.Println(divider)
		fmt.Print(defaultTheme.roleStyle().Render("Assistant: "))
		if err := streamExchange(mgr, input); err != nil {
			// A failed exchange does not end the session; the user
			// message is already committed and the prompt returns.
			fmt.Println(defaultTheme.errorStyle().Render(fmt.Sprintf("Error: %v", err)))
		}
		fmt.Println(divider)
	}
}

// streamExchange sends one message, printing reply chunks as they
// arrive. Ctrl+C cancels the stream; the partial reply is discarded (the
// user message stays persisted) and the loop continues.
func streamExchange(mgr *manager.Manager, text string) error {
	_, wasTemp := mgr.Active()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conv, err := mgr.Send(ctx, text, func(chunk string) {
		fmt.Print(chunk)
	})
	fmt.Println()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println(defaultTheme.hintStyle().Render("[interrupted - partial reply discarded]"))
			return nil
		}
		return err
	}
	if wasTemp {
		fmt.Println(defaultTheme.activeStyle().Render(fmt.Sprintf("Conversation saved as %q", conv.Name)))
	}
	return nil
}

// renderMessages prints a conversation transcript.
func renderMessages(messages []models.Message) {
	fmt.Println(strings.Repeat("=", len(divider)))
	for i, msg := range messages {
		role := strings.ToUpper(msg.Role[:1]) + msg.Role[1:]
		fmt.Printf("%s %s\n", defaultTheme.roleStyle().Render(role+":"), msg.Content)
		if i < len(messages)-1 {
			fmt.Println(divider)
		}
	}
	fmt.Println(strings.Repeat("=", len(divider)))
}
