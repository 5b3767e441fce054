package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/catwalk/pkg/catwalk"
	"github.com/spf13/cobra"

	"github.com/guilhermegouw/socchat/internal/config"
)

// newProvidersCmd creates the providers command group.
func newProvidersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Manage model providers",
		Long: `Manage the model providers socchat can send exchanges to.

Providers are OpenAI-compatible or Anthropic endpoints. Built-in templates
cover a local Ollama or LM Studio server and common hosted APIs.

Examples:
  socchat providers list                List configured providers
  socchat providers templates           List built-in templates
  socchat providers add-template groq   Add a provider from a template
  socchat providers use groq            Make a provider the default`,
	}

	cmd.AddCommand(newProvidersListCmd())
	cmd.AddCommand(newProvidersTemplatesCmd())
	cmd.AddCommand(newProvidersAddTemplateCmd())
	cmd.AddCommand(newProvidersUseCmd())

	return cmd
}

// newProvidersListCmd lists configured providers.
func newProvidersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured providers",
		Args:  cobra.NoArgs,
		RunE:  runProvidersList,
	}
}

func runProvidersList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configured Providers:")
	fmt.Fprintln(out)

	for _, id := range slices.Sorted(maps.Keys(cfg.Providers)) {
		p := cfg.Providers[id]
		marker := " "
		if id == cfg.DefaultProvider {
			marker = "*"
		}
		status := ""
		if p.Disable {
			status = " [disabled]"
		}
		fmt.Fprintf(out, "%s %s (%s)%s\n", marker, p.Name, id, status)
		fmt.Fprintf(out, "    Type:     %s\n", p.Type)
		if p.BaseURL != "" {
			fmt.Fprintf(out, "    Base URL: %s\n", p.BaseURL)
		}
		fmt.Fprintf(out, "    Models:   %d\n", len(p.Models))
	}
	return nil
}

// newProvidersTemplatesCmd lists the built-in templates.
func newProvidersTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List built-in provider templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Available Templates:")
			fmt.Fprintln(out)
			for _, id := range config.ListTemplateIDs() {
				t, _ := config.GetTemplate(id)
				fmt.Fprintf(out, "  %-10s %s\n", id, t.Description)
			}
			return nil
		},
	}
}

// newProvidersAddTemplateCmd writes a template's provider into the global
// config file.
func newProvidersAddTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-template <template-id>",
		Short: "Add a provider from a built-in template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			t, ok := config.GetTemplate(id)
			if !ok {
				return fmt.Errorf("unknown template %q (available: %v)", id, config.ListTemplateIDs())
			}

			path := config.GlobalConfigPath()
			fields := map[string]any{
				"type":     string(t.Type),
				"base_url": t.BaseURL,
				"api_key":  t.APIKey,
			}
			for _, key := range slices.Sorted(maps.Keys(fields)) {
				if err := config.SetConfigField(path, "providers."+id+"."+key, fields[key]); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added provider %q to %s\n", id, path)
			if strings.HasPrefix(t.APIKey, "$") {
				fmt.Fprintf(cmd.OutOrStdout(), "API key is read from %s\n", t.APIKey)
			}
			return nil
		},
	}
}

// newProvidersUseCmd sets the default provider.
func newProvidersUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <provider-id>",
		Short: "Set the default provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if _, ok := cfg.Providers[args[0]]; !ok {
				if _, ok := config.GetTemplate(args[0]); !ok {
					return fmt.Errorf("provider %q is not configured", args[0])
				}
			}

			path := config.GlobalConfigPath()
			if err := config.SetConfigField(path, "default_provider", args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default provider set to %q\n", args[0])
			return nil
		},
	}
}

// newModelsCmd lists the models of every configured provider.
func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured models",
		Long: `List the models of every configured provider.

Models are referenced as "<model>" on the default provider or
"<provider>/<model>" on any other.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, id := range slices.Sorted(maps.Keys(cfg.Providers)) {
				p := cfg.Providers[id]
				if p.Disable {
					continue
				}
				fmt.Fprintf(out, "%s (%s)\n", p.Name, id)
				for _, m := range p.Models {
					fmt.Fprintf(out, "  %s\n", modelLine(cfg, id, m))
				}
			}
			return nil
		},
	}
}

func modelLine(cfg *config.Config, providerID string, m catwalk.Model) string {
	ref := cfg.ModelRef(providerID, m.ID)
	marker := " "
	if p, id := cfg.ResolveModel(cfg.Chat.DefaultModel); p == providerID && id == m.ID {
		marker = "*"
	}
	return fmt.Sprintf("%s %-40s %-24s ctx %d", marker, ref, m.Name, m.ContextWindow)
}
