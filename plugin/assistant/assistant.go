package assistant

import (
	"context"
	"log/slog"

	"github.com/hrygo/schedula/internal/clock"
	"github.com/hrygo/schedula/internal/observability"
	"github.com/hrygo/schedula/server/service/booking"
)

// Assistant is the chat pipeline: extract the intent, resolve conversation
// carry-over, execute the operation, render the HTML fragment.
type Assistant struct {
	executor *Executor
	sessions *SessionManager
	renderer *Renderer
	clock    clock.Clock
}

// New creates an assistant over the booking service. The session manager is
// shared so its sweep job can be started by the server.
func New(bookings booking.Service, sessions *SessionManager, clk clock.Clock) *Assistant {
	return &Assistant{
		executor: NewExecutor(bookings, clk),
		sessions: sessions,
		renderer: NewRenderer(clk),
		clock:    clk,
	}
}

// Response is the processed outcome of one chat message.
type Response struct {
	HTML       string
	Intent     Intent
	Confidence int
	Code       ResultCode
}

// HandleMessage processes one inbound message for a session. Operation
// failures are reported inside the rendered fragment; the returned error is
// reserved for rendering failures.
func (a *Assistant) HandleMessage(ctx context.Context, sessionKey, message string) (*Response, error) {
	ex := Extract(message, a.clock.Now())
	if ex.Confirmed {
		a.sessions.Merge(sessionKey, ex)
	}

	attrs := []slog.Attr{
		slog.String(observability.LogFieldIntent, ex.Intent.String()),
		slog.Int(observability.LogFieldConfidence, ex.Confidence),
		slog.Bool("confirmed", ex.Confirmed),
	}
	// Prefer the request-scoped logger so the correlation IDs carry through.
	if reqCtx, ok := observability.FromContext(ctx); ok {
		reqCtx.Info("chat message classified", attrs...)
	} else {
		base := []slog.Attr{slog.String(observability.LogFieldSessionID, sessionKey)}
		slog.LogAttrs(ctx, slog.LevelInfo, "chat message classified", append(base, attrs...)...)
	}

	resp := &Response{Intent: ex.Intent, Confidence: ex.Confidence}
	var html string
	var err error

	switch ex.Intent {
	case IntentBook:
		if !ex.Confirmed {
			a.sessions.Remember(sessionKey, ex)
		}
		result := a.executor.Create(ctx, ex)
		if result.Success {
			a.sessions.Forget(sessionKey)
		}
		resp.Code = result.Code
		html, err = a.renderer.RenderCreateResult(result)
	case IntentQuery:
		result := a.executor.Query(ctx, ex)
		resp.Code = result.Code
		html, err = a.renderer.RenderQueryResult(result)
	case IntentDelete:
		result := a.executor.Delete(ctx, ex)
		resp.Code = result.Code
		html, err = a.renderer.RenderDeleteResult(result)
	case IntentUpdate:
		result := a.executor.Update(ctx, ex)
		resp.Code = result.Code
		html, err = a.renderer.RenderUpdateResult(result)
	default:
		resp.Code = CodeOK
		html, err = a.renderer.RenderHelp()
	}
	if err != nil {
		return nil, err
	}

	resp.HTML = html
	return resp, nil
}

// RenderSystemError exposes the generic failure fragment for transport-level
// error paths.
func (a *Assistant) RenderSystemError() (string, error) {
	return a.renderer.RenderSystemError()
}
