package cmd

import (
	"io"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/guilhermegouw/socchat/internal/debug"
	"github.com/guilhermegouw/socchat/internal/render"
	"github.com/guilhermegouw/socchat/internal/tui"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat",
		Long: `Open a full-screen chat. The session manager (ctrl+o) opens, renames and
deletes sessions; ctrl+t switches models and alt+up/alt+down change the
response budget.

Examples:
  socchat chat
  socchat chat --session 3f2b...
  socchat chat --model deepseek-r1:8b --max-tokens 800`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	cmd.Flags().StringP("session", "s", "", "Session to resume")
	cmd.Flags().StringP("model", "m", "", "Model to select first")
	cmd.Flags().Int("max-tokens", 0, "Initial response budget in tokens (default from config)")
	cmd.Flags().Bool("memory", false, "Keep sessions in memory instead of the database")

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	sessionID, _ := cmd.Flags().GetString("session") //nolint:errcheck // flag is registered above
	model, _ := cmd.Flags().GetString("model")       //nolint:errcheck // flag is registered above
	maxTokens, _ := cmd.Flags().GetInt("max-tokens") //nolint:errcheck // flag is registered above
	memory, _ := cmd.Flags().GetBool("memory")       //nolint:errcheck // flag is registered above

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if maxTokens == 0 {
		maxTokens = cfg.Chat.DefaultMaxTokens
	}

	a, err := newApp(cfg, memory)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // Nothing useful to do on close failure

	// Log lines on stderr would corrupt the screen.
	if !debug.IsEnabled() {
		debug.SetOutput(io.Discard)
	}

	return tui.Run(cmd.Context(), a.chat, tui.Options{
		Events:    a.hub.Session,
		Theme:     render.DetectTheme(),
		SessionID: sessionID,
		Model:     model,
		Models:    cfg.ModelRefs(),
		MaxTokens: maxTokens,
		Timeout:   cfg.GenerationTimeout(),
		Profile:   termenv.EnvColorProfile(),
	})
}
