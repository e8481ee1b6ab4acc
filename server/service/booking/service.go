// Package booking provides booking management business logic: time range
// validation, atomic conflict-guarded mutations, and day/range queries.
//
// The service layer abstracts business logic from the store layer and provides
// a clean interface for the chat executors and HTTP routes.
package booking

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/schedula/internal/clock"
	"github.com/hrygo/schedula/store"
)

// Booking-specific errors that can be checked with errors.Is.
var (
	// ErrConflict is returned when a booking overlaps an existing one.
	ErrConflict = store.ErrBookingConflict
	// ErrInvalidTimeRange is returned when end time is not after start time.
	ErrInvalidTimeRange = errors.New("end time must be after start time")
)

type service struct {
	store Store
}

// Store is the interface for store operations needed by the booking service.
type Store interface {
	CreateBookingIfFree(ctx context.Context, create *store.Booking) (*store.Booking, error)
	ListBookings(ctx context.Context, find *store.FindBooking) ([]*store.Booking, error)
	UpdateBookingIfFree(ctx context.Context, update *store.UpdateBooking) (*store.Booking, error)
	DeleteBooking(ctx context.Context, delete *store.DeleteBooking) error
}

// NewService creates a new booking service.
func NewService(store Store) Service {
	return &service{store: store}
}

func (s *service) FindRange(ctx context.Context, start, end time.Time) ([]*store.Booking, error) {
	startTs := start.Unix()
	endTs := end.Unix()
	find := &store.FindBooking{
		StartFrom:   &startTs,
		StartBefore: &endTs,
	}
	list, err := s.store.ListBookings(ctx, find)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list bookings")
	}
	return list, nil
}

func (s *service) FindDay(ctx context.Context, date time.Time) ([]*store.Booking, error) {
	dayStart := clock.StartOfDay(date)
	return s.FindRange(ctx, dayStart, dayStart.AddDate(0, 0, 1))
}

func (s *service) Create(ctx context.Context, create *CreateBookingRequest) (*store.Booking, error) {
	if !create.EndTime.After(create.StartTime) {
		return nil, ErrInvalidTimeRange
	}

	booking := &store.Booking{
		UID:         shortuuid.New(),
		Title:       create.Title,
		Description: create.Description,
		Category:    create.Category,
		StartTs:     create.StartTime.Unix(),
		EndTs:       create.EndTime.Unix(),
		ClientName:  create.ClientName,
	}

	created, err := s.store.CreateBookingIfFree(ctx, booking)
	if err != nil {
		if errors.Is(err, store.ErrBookingConflict) {
			return nil, ErrConflict
		}
		return nil, errors.Wrap(err, "failed to create booking")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, update *UpdateBookingRequest) (*store.Booking, error) {
	if !update.EndTime.After(update.StartTime) {
		return nil, ErrInvalidTimeRange
	}

	startTs := update.StartTime.Unix()
	endTs := update.EndTime.Unix()
	updatedTs := time.Now().Unix()
	req := &store.UpdateBooking{
		ID:          update.ID,
		UpdatedTs:   &updatedTs,
		Title:       &update.Title,
		Description: &update.Description,
		Category:    &update.Category,
		StartTs:     &startTs,
		EndTs:       &endTs,
		ClientName:  &update.ClientName,
	}

	updated, err := s.store.UpdateBookingIfFree(ctx, req)
	if err != nil {
		if errors.Is(err, store.ErrBookingConflict) {
			return nil, ErrConflict
		}
		return nil, errors.Wrap(err, "failed to update booking")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int32) error {
	if err := s.store.DeleteBooking(ctx, &store.DeleteBooking{ID: id}); err != nil {
		return errors.Wrap(err, "failed to delete booking")
	}
	return nil
}

func (s *service) Search(ctx context.Context, search *SearchRequest) ([]*store.Booking, error) {
	find := &store.FindBooking{}

	if search.Query != "" {
		find.ContainsText = &search.Query
	}
	if search.Date != nil {
		dayStart := clock.StartOfDay(*search.Date).Unix()
		dayEnd := clock.StartOfDay(*search.Date).AddDate(0, 0, 1).Unix()
		find.StartFrom = &dayStart
		find.StartBefore = &dayEnd
	}
	if search.Category != "" {
		find.Category = &search.Category
	}
	if search.Limit > 0 {
		find.Limit = &search.Limit
		if search.Offset > 0 {
			find.Offset = &search.Offset
		}
	}

	list, err := s.store.ListBookings(ctx, find)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search bookings")
	}
	return list, nil
}
