package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/socchat/internal/render"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"s"},
		Short:   "Manage chat sessions",
		Long: `Manage chat sessions in the configured store.

Examples:
  socchat sessions list                 List sessions, most recent first
  socchat sessions show <id>            Print a session's conversation
  socchat sessions new --title "Phish"  Start an empty session
  socchat sessions rename <id> <title>  Rename a session
  socchat sessions clear <id>           Empty a session's history
  socchat sessions delete <id>          Delete a session
  socchat sessions clear-all --yes      Delete every session
  socchat sessions dump                 Print every message as JSON lines`,
	}

	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsShowCmd())
	cmd.AddCommand(newSessionsNewCmd())
	cmd.AddCommand(newSessionsRenameCmd())
	cmd.AddCommand(newSessionsDeleteCmd())
	cmd.AddCommand(newSessionsClearCmd())
	cmd.AddCommand(newSessionsClearAllCmd())
	cmd.AddCommand(newSessionsDumpCmd())

	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck // Nothing useful to do on close failure

			summaries, err := a.chat.Sessions(cmd.Context())
			if err != nil {
				return err
			}
			return render.SessionTable(cmd.OutOrStdout(), render.DetectTheme(), summaries)
		},
	}
}

func newSessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a session's conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck // Nothing useful to do on close failure

			hist, err := a.chat.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if hist.Session == nil && len(hist.Turns) == 0 {
				return fmt.Errorf("session %s not found", args[0])
			}

			out := cmd.OutOrStdout()
			if hist.Session != nil {
				fmt.Fprintf(out, "%s  (%s)\n", hist.Session.Title, hist.Session.Model)
			}
			fmt.Fprintf(out, "%d exchanges\n\n", hist.Exchanges)
			return render.Transcript(out, render.DetectTheme(), hist.Turns)
		},
	}
}

func newSessionsNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start an empty session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, _ := cmd.Flags().GetString("model") //nolint:errcheck // flag is registered below
			title, _ := cmd.Flags().GetString("title") //nolint:errcheck // flag is registered below

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck // Nothing useful to do on close failure

			sess, err := a.chat.NewSession(cmd.Context(), model, title)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", sess.ID, sess.Model, sess.Title)
			return nil
		},
	}

	cmd.Flags().StringP("model", "m", "", "Model for the session (default from config)")
	cmd.Flags().StringP("title", "t", "", "Session title")

	return cmd
}

func newSessionsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title...>",
		Short: "Rename a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck // Nothing useful to do on close failure

			title := strings.Join(args[1:], " ")
			if err := a.chat.Rename(cmd.Context(), args[0], title); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", args[0], strings.TrimSpace(title))
			return nil
		},
	}
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck // Nothing useful to do on close failure

			if err := a.chat.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newSessionsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <id>",
		Short: "Empty a session's history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck // Nothing useful to do on close failure

			if err := a.chat.Clear(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", args[0])
			return nil
		},
	}
}

func newSessionsClearAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-all",
		Short: "Delete every session and message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes { //nolint:errcheck // flag is registered below
				return fmt.Errorf("refusing to delete all sessions without --yes")
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck // Nothing useful to do on close failure

			if err := a.chat.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All sessions and chats cleared")
			return nil
		},
	}

	cmd.Flags().Bool("yes", false, "Confirm deletion of every session")

	return cmd
}

type dumpLine struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

func newSessionsDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every message as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck // Nothing useful to do on close failure

			records, err := a.chat.DumpAll(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range records {
				if err := enc.Encode(dumpLine{
					SessionID: r.SessionID,
					Role:      string(r.Role),
					Content:   r.Content,
					Timestamp: r.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
				}); err != nil {
					return fmt.Errorf("writing record: %w", err)
				}
			}
			return nil
		},
	}
}
