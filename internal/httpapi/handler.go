// Package httpapi exposes the chat service over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/guilhermegouw/socchat/internal/chat"
	"github.com/guilhermegouw/socchat/internal/pubsub"
)

// Handler handles HTTP requests.
type Handler struct {
	chat    *chat.Service
	hub     *pubsub.Hub
	version string
	timeout time.Duration
}

// NewHandler creates a new handler. A zero timeout leaves model calls bound
// only by the request context.
func NewHandler(svc *chat.Service, hub *pubsub.Hub, version string, timeout time.Duration) *Handler {
	return &Handler{
		chat:    svc,
		hub:     hub,
		version: version,
		timeout: timeout,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/chat", h.Chat)
	e.POST("/new-session", h.NewSession)
	e.GET("/conversation-history", h.ConversationHistory)
	e.GET("/session-history/:id", h.SessionHistory)
	e.POST("/rename-session/:id", h.RenameSession)
	e.DELETE("/delete-session/:id", h.DeleteSession)
	e.POST("/clear-session/:id", h.ClearSession)
	e.POST("/clear-all-sessions", h.ClearAllSessions)
	e.GET("/all-messages", h.AllMessages)

	e.GET("/health", h.Health)
}

// NewServer builds an echo server with recovery, CORS and request logging
// through logger, and registers h's routes.
func NewServer(h *Handler, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))

	h.RegisterRoutes(e)
	return e
}

// Health returns health status and event broker metrics.
func (h *Handler) Health(c echo.Context) error {
	resp := map[string]any{
		"status":  "healthy",
		"version": h.version,
	}
	if h.hub != nil {
		resp["brokers"] = h.hub.Metrics()
	}
	return c.JSON(http.StatusOK, resp)
}

// generationContext bounds a model call by the configured timeout.
func (h *Handler) generationContext(c echo.Context) (context.Context, context.CancelFunc) {
	ctx := c.Request().Context()
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}
