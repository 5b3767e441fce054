package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type sessionSummary struct {
	SessionID     string `json:"session_id"`
	Title         string `json:"title"`
	Model         string `json:"model"`
	CreatedAt     string `json:"created_at"`
	LastUpdated   string `json:"last_updated"`
	Preview       string `json:"preview"`
	ExchangeCount int    `json:"exchange_count"`
}

type historyTurn struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type sessionHistory struct {
	Model               *string       `json:"model"`
	Title               *string       `json:"title"`
	SessionID           string        `json:"session_id"`
	ConversationHistory []historyTurn `json:"conversation_history"`
	TotalExchanges      int           `json:"total_exchanges"`
}

type dumpedMessage struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// NewSession registers an empty session.
// POST /new-session
func (h *Handler) NewSession(c echo.Context) error {
	var req struct {
		Model string `json:"model"`
		Title string `json:"title"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sess, err := h.chat.NewSession(c.Request().Context(), req.Model, req.Title)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"sessionId": sess.ID,
		"model":     sess.Model,
		"title":     sess.Title,
		"message":   "New session created",
	})
}

// ConversationHistory lists sessions for the sidebar.
// GET /conversation-history
func (h *Handler) ConversationHistory(c echo.Context) error {
	summaries, err := h.chat.Sessions(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}

	sessions := make([]sessionSummary, 0, len(summaries))
	for _, s := range summaries {
		sessions = append(sessions, sessionSummary{
			SessionID:     s.ID,
			Title:         s.Title,
			Model:         s.Model,
			CreatedAt:     stamp(s.CreatedAt),
			LastUpdated:   stamp(s.UpdatedAt),
			Preview:       s.Preview,
			ExchangeCount: s.ExchangeCount,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"sessions":       sessions,
		"total_sessions": len(sessions),
	})
}

// SessionHistory returns one session's conversation.
// GET /session-history/:id
func (h *Handler) SessionHistory(c echo.Context) error {
	hist, err := h.chat.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}

	resp := sessionHistory{
		SessionID:           hist.SessionID,
		ConversationHistory: make([]historyTurn, 0, len(hist.Turns)),
		TotalExchanges:      hist.Exchanges,
	}
	if hist.Session != nil {
		resp.Model = &hist.Session.Model
		resp.Title = &hist.Session.Title
	}
	for _, t := range hist.Turns {
		resp.ConversationHistory = append(resp.ConversationHistory, historyTurn{
			Role:      string(t.Role),
			Content:   t.Content,
			Timestamp: stamp(t.Timestamp),
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// RenameSession changes a session's title.
// POST /rename-session/:id
func (h *Handler) RenameSession(c echo.Context) error {
	id := c.Param("id")

	var req struct {
		Title string `json:"title"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.chat.Rename(c.Request().Context(), id, req.Title); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message":   "Session renamed",
		"sessionId": id,
		"title":     strings.TrimSpace(req.Title),
	})
}

// DeleteSession removes a session and its history.
// DELETE /delete-session/:id
func (h *Handler) DeleteSession(c echo.Context) error {
	id := c.Param("id")
	if err := h.chat.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":   "Session deleted",
		"sessionId": id,
	})
}

// ClearSession empties a session's history.
// POST /clear-session/:id
func (h *Handler) ClearSession(c echo.Context) error {
	id := c.Param("id")
	if err := h.chat.Clear(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":   "Session chat cleared",
		"sessionId": id,
	})
}

// ClearAllSessions removes every session.
// POST /clear-all-sessions
func (h *Handler) ClearAllSessions(c echo.Context) error {
	if err := h.chat.ClearAll(c.Request().Context()); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "All sessions and chats cleared",
	})
}

// AllMessages dumps every conversational turn.
// GET /all-messages
func (h *Handler) AllMessages(c echo.Context) error {
	records, err := h.chat.DumpAll(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}

	msgs := make([]dumpedMessage, 0, len(records))
	for _, r := range records {
		msgs = append(msgs, dumpedMessage{
			SessionID: r.SessionID,
			Role:      string(r.Role),
			Content:   r.Content,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"all_messages": msgs})
}

