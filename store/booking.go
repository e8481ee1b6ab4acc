package store

import (
	"context"
	"time"
)

// Booking is the object representing a scheduled session.
type Booking struct {
	ID          int32
	UID         string
	CreatedTs   int64
	UpdatedTs   int64
	Title       string
	Description string
	Category    string
	StartTs     int64
	EndTs       int64
	ClientName  string
}

// FindBooking is the find condition for booking.
type FindBooking struct {
	ID  *int32
	UID *string

	// Start-time window (unix seconds, half-open: StartFrom <= start_ts < StartBefore)
	StartFrom   *int64
	StartBefore *int64

	// Overlap window: bookings whose [start_ts, end_ts) intersects
	// [OverlapStart, OverlapEnd). Touching boundaries do not overlap.
	OverlapStart *int64
	OverlapEnd   *int64

	// Exact category match
	Category *string

	// ContainsText matches title, description and client_name
	// case-insensitively.
	ContainsText *string

	// ExcludeID excludes a booking by id (used for update conflict checks).
	ExcludeID *int32

	// Pagination
	Limit  *int
	Offset *int
}

// UpdateBooking is the update request for booking.
type UpdateBooking struct {
	ID          int32
	UpdatedTs   *int64
	Title       *string
	Description *string
	Category    *string
	StartTs     *int64
	EndTs       *int64
	ClientName  *string
}

// DeleteBooking is the delete request for booking.
type DeleteBooking struct {
	ID int32
}

// CreateBooking creates a new booking without an overlap guard.
func (s *Store) CreateBooking(ctx context.Context, create *Booking) (*Booking, error) {
	return s.driver.CreateBooking(ctx, create)
}

// CreateBookingIfFree creates a new booking only when no stored booking
// overlaps its time range. The overlap check and the insert run in a single
// transaction; ErrBookingConflict is returned when the slot is taken.
func (s *Store) CreateBookingIfFree(ctx context.Context, create *Booking) (*Booking, error) {
	return s.driver.CreateBookingIfFree(ctx, create)
}

// ListBookings lists bookings with filter, ordered ascending by start time.
func (s *Store) ListBookings(ctx context.Context, find *FindBooking) ([]*Booking, error) {
	return s.driver.ListBookings(ctx, find)
}

// UpdateBookingIfFree updates a booking only when the new time range does not
// overlap any other stored booking. Transactional like CreateBookingIfFree.
func (s *Store) UpdateBookingIfFree(ctx context.Context, update *UpdateBooking) (*Booking, error) {
	return s.driver.UpdateBookingIfFree(ctx, update)
}

// DeleteBooking deletes a booking. Fails when the id does not exist.
func (s *Store) DeleteBooking(ctx context.Context, delete *DeleteBooking) error {
	return s.driver.DeleteBooking(ctx, delete)
}

// ParseStartTime parses the booking start time to time.Time.
func (b *Booking) ParseStartTime() time.Time {
	return time.Unix(b.StartTs, 0)
}

// ParseEndTime parses the booking end time to time.Time.
func (b *Booking) ParseEndTime() time.Time {
	return time.Unix(b.EndTs, 0)
}

// Duration returns the booking duration.
func (b *Booking) Duration() time.Duration {
	return time.Unix(b.EndTs, 0).Sub(time.Unix(b.StartTs, 0))
}

// OverlapsRange reports whether the booking intersects the half-open range
// [startTs, endTs). Touching boundaries do not count as overlap.
func (b *Booking) OverlapsRange(startTs, endTs int64) bool {
	return b.StartTs < endTs && b.EndTs > startTs
}
