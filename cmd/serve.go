package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/socchat/internal/debug"
	"github.com/guilhermegouw/socchat/internal/events"
	"github.com/guilhermegouw/socchat/internal/httpapi"
	"github.com/guilhermegouw/socchat/internal/pubsub"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat HTTP API",
		Long: `Start the HTTP API used by the chat front end.

The server stops gracefully on SIGINT or SIGTERM, letting in-flight
exchanges finish before the store is closed.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().Bool("memory", false, "Keep sessions in memory instead of the database")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr") //nolint:errcheck // flag is registered above
	if addr == "" {
		addr = cfg.Server.Addr
	}
	memory, _ := cmd.Flags().GetBool("memory") //nolint:errcheck // flag is registered above

	a, err := newApp(cfg, memory)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			debug.Error("serve", err, "closing store")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go logEvents(ctx, a.hub.Session, a.hub.Exchange)

	h := httpapi.NewHandler(a.chat, a.hub, version, cfg.GenerationTimeout())
	e := httpapi.NewServer(h, debug.Logger())

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()

	logger := debug.Logger()
	logger.Info("socchat listening", "addr", addr, "storage", a.storage, "provider", cfg.DefaultProvider)
	fmt.Fprintf(cmd.ErrOrStderr(), "socchat %s listening on %s\n", version, addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// logEvents writes broker events to the log until ctx is done.
func logEvents(ctx context.Context, sessionSrc pubsub.Subscriber[events.SessionEvent], exchangeSrc pubsub.Subscriber[events.ExchangeEvent]) {
	logger := debug.Logger()
	sessions := sessionSrc.Subscribe(ctx)
	exchanges := exchangeSrc.Subscribe(ctx)

	for {
		select {
		case ev, ok := <-sessions:
			if !ok {
				return
			}
			logSessionEvent(ev)
		case ev, ok := <-exchanges:
			if !ok {
				return
			}
			p := ev.Payload
			if p.Type == events.ExchangeEventFailed {
				logger.Warn("exchange failed", "session", p.SessionID, "model", p.Model, "duration", p.Duration, "error", p.Error)
				continue
			}
			logger.Info("exchange "+string(p.Type), "session", p.SessionID, "model", p.Model, "duration", p.Duration)
		}
	}
}

func logSessionEvent(ev pubsub.Event[events.SessionEvent]) {
	p := ev.Payload
	if p.Type == events.SessionEventMessageAdded {
		debug.Logger().Debug("message added", "session", p.SessionID, "role", p.MessageRole)
		return
	}
	debug.Logger().Info("session "+string(p.Type), "session", p.SessionID, "title", p.Title, "model", p.Model)
}
