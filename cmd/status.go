package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/socchat/internal/config"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, provider and store status",
		Long: `Display the current socchat status including:
  - Configured provider and default model
  - API key resolution for each provider
  - Store location and session count`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // Nothing useful to do on close failure
	cfg := a.cfg

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "socchat Status")
	fmt.Fprintln(out, strings.Repeat("─", 40))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Chat:")
	fmt.Fprintf(out, "  Default model: %s (%s)\n", cfg.Chat.DefaultModel, cfg.DefaultProvider)
	fmt.Fprintf(out, "  Max tokens:    %d\n", cfg.Chat.DefaultMaxTokens)
	fmt.Fprintf(out, "  Window size:   %d\n", cfg.Chat.WindowSize)
	fmt.Fprintf(out, "  Timeout:       %s\n", cfg.GenerationTimeout())
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Providers:")
	if len(cfg.Providers) == 0 {
		fmt.Fprintln(out, "  No providers configured")
	}
	for id, provider := range cfg.Providers {
		printProviderStatus(out, cfg, id, provider)
	}
	fmt.Fprintln(out)

	summaries, err := a.chat.Sessions(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Store:")
	fmt.Fprintf(out, "  Driver:   %s\n", a.storage)
	if a.db != nil {
		fmt.Fprintf(out, "  Path:     %s\n", a.db.Path())
	}
	fmt.Fprintf(out, "  Sessions: %d\n", len(summaries))
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Config File: %s\n", config.GlobalConfigPath())
	return nil
}

func printProviderStatus(w io.Writer, cfg *config.Config, id string, provider *config.ProviderConfig) {
	name := provider.Name
	if name == "" {
		name = id
	}

	status := "API Key"
	if provider.APIKey == "" {
		status = "Not configured"
	} else if _, err := cfg.Resolve(provider.APIKey); err != nil {
		status = fmt.Sprintf("API Key unresolved (%s)", provider.APIKey)
	}

	if provider.Disable {
		status = "Disabled"
	}

	fmt.Fprintf(w, "  %s: %s\n", name, status)
}
