package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// ErrBookingConflict is returned by the guarded create/update methods when the
// requested time range overlaps an existing booking. The check and the
// mutation run inside one transaction, so callers never race a concurrent
// insert between check and act.
var ErrBookingConflict = errors.New("booking time range conflicts with an existing booking")

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Booking model related methods.
	CreateBooking(ctx context.Context, create *Booking) (*Booking, error)
	CreateBookingIfFree(ctx context.Context, create *Booking) (*Booking, error)
	ListBookings(ctx context.Context, find *FindBooking) ([]*Booking, error)
	UpdateBookingIfFree(ctx context.Context, update *UpdateBooking) (*Booking, error)
	DeleteBooking(ctx context.Context, delete *DeleteBooking) error
}
