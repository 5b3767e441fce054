package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/guilhermegouw/socchat/internal/chat"
	"github.com/guilhermegouw/socchat/internal/debug"
	"github.com/guilhermegouw/socchat/internal/render"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [flags] <message...>",
		Short: "Send one message and print the reply",
		Long: `Send one message to a session and print the finalized reply.

Without --session a new session is started; its id is printed after the
reply so the conversation can be continued.

Examples:
  socchat ask "Outbound SMB from a kiosk host, where do I start?"
  socchat ask --session 3f2b... "What about persistence?"
  socchat ask --model groq/llama-3.3-70b-versatile --copy "Draft an escalation note"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringP("session", "s", "", "Session to continue")
	cmd.Flags().StringP("model", "m", "", "Model to use and bind to the session")
	cmd.Flags().Int("max-tokens", 0, "Response budget in tokens (default from config)")
	cmd.Flags().Bool("copy", false, "Copy the reply to the clipboard")
	cmd.Flags().Bool("raw", false, "Print the reply without markdown rendering")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetString("session") //nolint:errcheck // flag is registered above
	model, _ := cmd.Flags().GetString("model")       //nolint:errcheck // flag is registered above
	maxTokens, _ := cmd.Flags().GetInt("max-tokens") //nolint:errcheck // flag is registered above
	copyReply, _ := cmd.Flags().GetBool("copy")      //nolint:errcheck // flag is registered above
	raw, _ := cmd.Flags().GetBool("raw")             //nolint:errcheck // flag is registered above

	if cmd.Flags().Changed("max-tokens") && maxTokens <= 0 {
		return chat.ErrInvalidMaxTokens
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // Nothing useful to do on close failure

	ctx := cmd.Context()
	if timeout := a.cfg.GenerationTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := a.chat.Exchange(ctx, chat.Request{
		SessionID: sessionID,
		Message:   strings.Join(args, " "),
		Model:     model,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return err
	}

	var renderer markdownRenderer
	if !raw {
		renderer = render.NewMarkdownRenderer(render.DetectTheme(), termenv.EnvColorProfile())
	}
	writeReply(cmd.OutOrStdout(), renderer, res.Response)

	if copyReply {
		if err := clipboard.WriteAll(res.Response); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: copying to clipboard: %v\n", err)
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\nsession %s  model %s  %.2fs\n",
		res.SessionID, res.Model, res.ResponseTime.Seconds())
	return nil
}

type markdownRenderer interface {
	Render(content string, width int) (string, error)
}

// writeReply prints reply through r, or verbatim when r is nil or fails.
func writeReply(w io.Writer, r markdownRenderer, reply string) {
	if r != nil {
		rendered, err := r.Render(reply, render.DefaultWidth)
		if err == nil && rendered != "" {
			fmt.Fprint(w, rendered)
			return
		}
		if err != nil {
			debug.Error("ask", err, "rendering reply")
		}
	}
	fmt.Fprintln(w, reply)
}
