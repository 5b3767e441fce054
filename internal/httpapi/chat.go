package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/guilhermegouw/socchat/internal/chat"
)

// clockLayout is the wall-clock stamp shown next to a reply.
const clockLayout = "15:04"

type chatRequest struct {
	MaxTokens       *int   `json:"maxTokens"`
	Message         string `json:"message"`
	SessionID       string `json:"sessionId"`
	Model           string `json:"model"`
	EnableStreaming bool   `json:"enableStreaming"`
}

type chatResponse struct {
	Response     string  `json:"response"`
	Timestamp    string  `json:"timestamp"`
	SessionID    string  `json:"sessionId"`
	Model        string  `json:"model"`
	ResponseTime float64 `json:"responseTime"`
}

// Chat runs one exchange.
// POST /chat
func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	maxTokens := 0
	if req.MaxTokens != nil {
		if *req.MaxTokens <= 0 {
			return badRequest(c, chat.ErrInvalidMaxTokens.Error())
		}
		maxTokens = *req.MaxTokens
	}

	ctx, cancel := h.generationContext(c)
	defer cancel()

	res, err := h.chat.Exchange(ctx, chat.Request{
		SessionID: req.SessionID,
		Message:   req.Message,
		Model:     req.Model,
		MaxTokens: maxTokens,
		Streaming: req.EnableStreaming,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, chatResponse{
		Response:     res.Response,
		ResponseTime: res.ResponseTime.Seconds(),
		Timestamp:    res.Timestamp.Format(clockLayout),
		SessionID:    res.SessionID,
		Model:        res.Model,
	})
}
