package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or set default platform and max tokens",
	Long: `Show the durable defaults used for new conversations. The global
--platform and --max-tokens flags update them before any command runs,
so combining them with config updates the configuration and exits.

Examples:
  termchat config
  termchat config --platform openai
  termchat config --max-tokens 2048`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	// The persistent pre-run already validated and saved any flag
	// changes; this command only reports the result.
	changed := cmd.Flags().Changed("platform") || cmd.Flags().Changed("max-tokens")

	fmt.Printf("Platform: %s\n", trk.Platform())
	fmt.Printf("Max tokens: %d\n", trk.MaxTokens())
	if changed {
		fmt.Println(defaultTheme.hintStyle().Render("Configuration updated."))
	}
	return nil
}
