// Package cli provides the command-line interface for termchat.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/termchat/internal/alias"
	"github.com/raphaelgruber/termchat/internal/config"
	"github.com/raphaelgruber/termchat/internal/llm"
	"github.com/raphaelgruber/termchat/internal/manager"
	"github.com/raphaelgruber/termchat/internal/models"
	"github.com/raphaelgruber/termchat/internal/store"
	"github.com/raphaelgruber/termchat/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	flagPlatform  string
	flagMaxTokens int

	// Global config and collaborators, wired in PersistentPreRunE.
	cfg       config.Config
	logger    *slog.Logger
	logClose  func() error
	convStore *store.Store
	trk       *tracker.Tracker
	profiles  map[models.Platform]config.Profile

	// Lazy-initialized chat session
	session *llm.Session
)

// rootCmd represents the base command. Invoked with a message it sends it
// to the active conversation; invoked bare it opens the interactive chat.
var rootCmd = &cobra.Command{
	Use:   "termchat [message]",
	Short: "Terminal client for persistent, named LLM conversations",
	Long: `Termchat is a terminal client for hosted chat models with persistent,
named conversations. Replies stream to the terminal; conversations are
stored locally, one record per name, and can be selected, renamed,
cloned, and deleted. Deleting or renaming the active conversation falls
back to the previously active one.

Invoked with a message it sends it to the active conversation (creating
an auto-named one if none is active); invoked bare it opens the
interactive chat loop.`,
	Version: Version,
	Args:    cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// A .env next to the invocation or in the data dir supplies API
		// keys, without overriding the real environment.
		home, _ := os.UserHomeDir()
		if err := config.LoadDotEnv(".env", filepath.Join(home, ".termchat", ".env")); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}

		cfg = config.Load()
		logger, logClose = config.SetupLogger(cfg.LogFile, cfg.LogLevel)

		profilesFile := cfg.ProfilesFile
		if profilesFile == "" {
			profilesFile = filepath.Join(cfg.DataDir, "profiles.yaml")
		}
		var err error
		profiles, err = config.Profiles(profilesFile)
		if err != nil {
			return fmt.Errorf("load platform profiles: %w", err)
		}

		convStore, err = store.New(filepath.Join(cfg.DataDir, "conversations"), logger)
		if err != nil {
			return fmt.Errorf("open conversation store: %w", err)
		}
		trk, err = tracker.Load(filepath.Join(cfg.DataDir, "state.json"), cfg.DefaultPlatform, cfg.DefaultMaxTokens)
		if err != nil {
			return fmt.Errorf("load session state: %w", err)
		}

		// The global flags update the durable defaults before the
		// action runs, matching the original tool.
		if cmd.Flags().Changed("platform") {
			platform := models.Platform(flagPlatform)
			if _, ok := profiles[platform]; !ok {
				return fmt.Errorf("unknown platform %q, available: %s",
					flagPlatform, strings.Join(config.PlatformNames(profiles), ", "))
			}
			trk.SetPlatform(platform)
		}
		if cmd.Flags().Changed("max-tokens") {
			if err := models.ValidateMaxTokens(flagMaxTokens); err != nil {
				return err
			}
			trk.SetMaxTokens(flagMaxTokens)
		}
		if cmd.Flags().Changed("platform") || cmd.Flags().Changed("max-tokens") {
			if err := trk.Save(); err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logClose != nil {
			_ = logClose()
		}
	},
	RunE: runRoot,
}

// getManager wires a manager. Commands that talk to the model pass
// requireLLM=true; the chat session is then built for the default
// platform, failing fast on missing API keys.
func getManager(requireLLM bool) (*manager.Manager, error) {
	if requireLLM && session == nil {
		platform := trk.Platform()
		profile, ok := profiles[platform]
		if !ok {
			return nil, fmt.Errorf("no profile for platform %q", platform)
		}
		var err error
		session, err = llm.NewSession(context.Background(), platform, profile)
		if err != nil {
			return nil, fmt.Errorf("init chat session: %w", err)
		}
		logger.Debug("chat session initialized", "platform", platform, "model", session.Model())
	}

	var summarizer alias.Summarizer
	var chat manager.ChatSession
	if session != nil {
		summarizer = session
		chat = session
	}
	known := make([]models.Platform, 0, len(profiles))
	for platform := range profiles {
		known = append(known, platform)
	}
	return manager.New(convStore, trk, chat, alias.New(summarizer, logger), known, logger), nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		return runChat(cmd, args)
	}

	mgr, err := getManager(true)
	if err != nil {
		return err
	}

	// No active conversation: start a temporary one that the send
	// promotes under a generated name, like the original single-shot
	// path.
	if active, temp := mgr.Active(); active == "" && !temp {
		if _, err := mgr.Create(""); err != nil {
			return err
		}
	}
	return streamExchange(mgr, message)
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagPlatform, "platform", "p", "", "platform to use (sets the default)")
	rootCmd.PersistentFlags().IntVarP(&flagMaxTokens, "max-tokens", "t", 0, "max tokens for model output (sets the default)")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(infoCmd)
}
