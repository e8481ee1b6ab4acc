package booking

import (
	"context"
	"time"

	"github.com/hrygo/schedula/store"
)

// Service defines the core business logic interface for booking management.
// The chat executors and the HTTP routes call this interface directly instead
// of duplicating validation and conflict handling.
type Service interface {
	// FindRange returns bookings whose start time falls inside the half-open
	// range [start, end), ordered ascending by start time.
	FindRange(ctx context.Context, start, end time.Time) ([]*store.Booking, error)

	// FindDay returns the bookings of a single calendar day.
	FindDay(ctx context.Context, date time.Time) ([]*store.Booking, error)

	// Create validates the time range and inserts the booking. The conflict
	// check and insert are atomic at the store; ErrConflict is returned when
	// the slot overlaps an existing booking.
	Create(ctx context.Context, create *CreateBookingRequest) (*store.Booking, error)

	// Update replaces the booking's fields, with the same atomic conflict
	// guard excluding the booking itself.
	Update(ctx context.Context, update *UpdateBookingRequest) (*store.Booking, error)

	// Delete removes a booking by id.
	Delete(ctx context.Context, id int32) error

	// Search returns bookings matching the AND-combined filters, ordered
	// ascending by start time.
	Search(ctx context.Context, search *SearchRequest) ([]*store.Booking, error)
}

// CreateBookingRequest represents the request to create a booking.
type CreateBookingRequest struct {
	Title       string
	Description string
	Category    string
	StartTime   time.Time
	EndTime     time.Time
	ClientName  string
}

// UpdateBookingRequest represents the request to update a booking.
// All fields are replaced, mirroring the chat update executor's behavior.
type UpdateBookingRequest struct {
	ID          int32
	Title       string
	Description string
	Category    string
	StartTime   time.Time
	EndTime     time.Time
	ClientName  string
}

// SearchRequest holds the optional, AND-combined booking search filters.
type SearchRequest struct {
	// Query matches title, description and client name case-insensitively.
	Query string
	// Date restricts results to a single calendar day.
	Date *time.Time
	// Category is an exact category match.
	Category string
	// Limit caps the result count when positive; Offset skips that many
	// leading rows.
	Limit  int
	Offset int
}
