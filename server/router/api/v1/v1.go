// Package v1 exposes the HTTP API: the chat endpoint, booking search, and
// the training type catalog.
package v1

import (
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/schedula/internal/profile"
	"github.com/hrygo/schedula/plugin/assistant"
	schedmw "github.com/hrygo/schedula/server/middleware"
	"github.com/hrygo/schedula/server/service/booking"
	"github.com/hrygo/schedula/store"
)

type APIV1Service struct {
	Profile        *profile.Profile
	Store          *store.Store
	BookingService booking.Service
	Assistant      *assistant.Assistant

	rateLimiter *schedmw.RateLimiter
	// chatSemaphore caps concurrent chat processing so a burst of messages
	// cannot starve the single-writer sqlite connection.
	chatSemaphore *semaphore.Weighted
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, bookingService booking.Service, asst *assistant.Assistant) *APIV1Service {
	return &APIV1Service{
		Profile:        profile,
		Store:          store,
		BookingService: bookingService,
		Assistant:      asst,
		rateLimiter:    schedmw.NewRateLimiter(),
		chatSemaphore:  semaphore.NewWeighted(8),
	}
}

// Register mounts the API routes on the echo server.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	group := echoServer.Group("/api/v1")
	group.Use(s.rateLimiter.Middleware(func(c echo.Context) string {
		return c.RealIP()
	}))

	group.POST("/chat", s.Chat)
	group.GET("/bookings/search", s.SearchBookings)
	group.GET("/training-types", s.ListTrainingTypes)
}
