// Package cmd provides the CLI commands for socchat.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/guilhermegouw/socchat/internal/config"
	"github.com/guilhermegouw/socchat/internal/debug"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "socchat",
		Short: "Conversational assistant for SOC analysts",
		Long: `socchat keeps multi-turn investigation chats with a local or hosted
language model. Each session has its own history and model, and replies
are trimmed to complete sentences within a token budget.

Run 'socchat chat' for the interactive chat, 'socchat serve' for the HTTP API
or 'socchat ask' for a one-off question.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupDebug,
		PersistentPostRun: func(*cobra.Command, []string) { debug.Disable() },
	}

	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging to $XDG_DATA_HOME/socchat/debug.log")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newModelsCmd())
	cmd.AddCommand(newProvidersCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func setupDebug(cmd *cobra.Command, _ []string) error {
	debugMode, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("getting debug flag: %w", err)
	}
	if debugMode {
		enableDebugLog()
	}
	return nil
}

func enableDebugLog() {
	if debug.IsEnabled() {
		return
	}
	logPath := filepath.Join(xdg.DataHome, "socchat", "debug.log")
	if err := debug.Enable(logPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to enable debug logging: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Debug: %s\n", logPath)
}

// loadConfig loads configuration and applies its logging options.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if cfg.Options.Debug {
		enableDebugLog()
	}
	if !debug.IsEnabled() {
		if err := debug.SetLevel(cfg.LogLevel()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}
