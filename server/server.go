// Package server assembles the HTTP server: routes, middleware, and the
// background session sweep.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/schedula/internal/clock"
	"github.com/hrygo/schedula/internal/profile"
	"github.com/hrygo/schedula/plugin/assistant"
	apiv1 "github.com/hrygo/schedula/server/router/api/v1"
	"github.com/hrygo/schedula/server/service/booking"
	"github.com/hrygo/schedula/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	sessions   *assistant.SessionManager
}

// NewServer wires the booking service, the chat assistant, and the API
// routes. In demo mode the profile anchor pins the assistant's clock to a
// fixed instant so the seeded data stays temporally coherent.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	var clk clock.Clock = clock.System{}
	if anchor := profile.AnchorTime(); !anchor.IsZero() {
		clk = clock.NewFixed(anchor)
	}

	bookingService := booking.NewService(store)
	sessions := assistant.NewSessionManager(profile.SessionTTL, clk)
	asst := assistant.New(bookingService, sessions, clk)

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
		sessions:   sessions,
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	apiV1Service := apiv1.NewAPIV1Service(profile, store, bookingService, asst)
	apiV1Service.Register(e)

	return s, nil
}

// Start launches the HTTP listener and the session sweep. Non-blocking.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", "error", err)
		}
	}()

	s.sessions.Start(ctx)
	return nil
}

// Shutdown stops the listener, the session sweep, and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	s.sessions.Stop()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}

	slog.Info("schedula stopped properly")
}
