package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/schedula/plugin/assistant"
	"github.com/hrygo/schedula/internal/observability"
)

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse carries the rendered HTML fragment for the chat panel.
type ChatResponse struct {
	Response string `json:"response"`
}

// Chat processes one natural-language message and responds with an HTML
// fragment. Operation failures come back as error cards with status 200;
// only processing failures produce a 500.
// POST /api/v1/chat
func (s *APIV1Service) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "malformed request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "message is required"})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = assistant.DefaultSessionKey
	}

	reqCtx := observability.NewRequestContext(slog.Default(), sessionID)
	ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)

	if err := s.chatSemaphore.Acquire(ctx, 1); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"message": "server busy, try again shortly"})
	}
	defer s.chatSemaphore.Release(1)

	resp, err := s.Assistant.HandleMessage(ctx, sessionID, req.Message)
	if err != nil {
		reqCtx.Error("chat processing failed", err,
			slog.Int(observability.LogFieldMessageLen, len(req.Message)))
		html, renderErr := s.Assistant.RenderSystemError()
		if renderErr != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to process message")
		}
		return c.JSON(http.StatusInternalServerError, ChatResponse{Response: html})
	}

	attrs := []slog.Attr{
		slog.String(observability.LogFieldIntent, resp.Intent.String()),
		slog.Int(observability.LogFieldConfidence, resp.Confidence),
		slog.String(observability.LogFieldResultCode, string(resp.Code)),
		slog.Int(observability.LogFieldMessageLen, len(req.Message)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
	}
	// Failed operations still answer 200 with an error card, so the log level
	// is the only place the failure shows up.
	if resp.Code == assistant.CodeOK {
		reqCtx.Info("chat message processed", attrs...)
	} else {
		reqCtx.Warn("chat message processed with failure", attrs...)
	}

	return c.JSON(http.StatusOK, ChatResponse{Response: resp.HTML})
}
