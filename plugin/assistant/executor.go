package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/schedula/internal/clock"
	"github.com/hrygo/schedula/server/service/booking"
	"github.com/hrygo/schedula/store"
)

// Executor runs extracted operations against the booking service. It owns no
// state beyond its dependencies and is safe for concurrent use.
type Executor struct {
	bookings booking.Service
	clock    clock.Clock
}

// NewExecutor creates an executor over the given booking service and clock.
func NewExecutor(bookings booking.Service, clk clock.Clock) *Executor {
	return &Executor{bookings: bookings, clock: clk}
}

// temporalPolicy decides whether an operation may target a calendar day,
// given the current day. Each operation names the policy it runs under.
type temporalPolicy func(target, today time.Time) error

// blockPastDates rejects days strictly before today. Targeting today itself
// is allowed. Create and update run under this policy.
var blockPastDates temporalPolicy = func(target, today time.Time) error {
	if target.Before(today) {
		return errors.New("target date is in the past")
	}
	return nil
}

// allowAnyDate accepts every day. Delete runs under this policy so stale
// records can be cleared after the fact.
var allowAnyDate temporalPolicy = func(_, _ time.Time) error {
	return nil
}

// CreateResult is the outcome of a create operation.
type CreateResult struct {
	Success bool
	Code    ResultCode
	Message string
	Booking *store.Booking
}

// DeleteResult is the outcome of a delete operation. Per-record failures are
// skipped, so DeletedCount can be lower than the number of matches.
type DeleteResult struct {
	Success      bool
	Code         ResultCode
	Message      string
	DeletedCount int
	Deleted      []*store.Booking
}

// UpdateResult is the outcome of an update operation. Note is set when more
// than one booking matched the target date and the earliest was chosen.
type UpdateResult struct {
	Success bool
	Code    ResultCode
	Message string
	Booking *store.Booking
	Note    string
}

// QueryResult is the outcome of a query operation.
type QueryResult struct {
	Success    bool
	Code       ResultCode
	Message    string
	Bookings   []*store.Booking
	RangeStart time.Time
	RangeEnd   time.Time
	SingleDay  bool
}

// Create applies smart defaults to the extraction and inserts the resulting
// booking. The conflict check and the insert are atomic at the store layer.
func (e *Executor) Create(ctx context.Context, ex *Extraction) *CreateResult {
	now := e.clock.Now()
	draft := ApplyDefaults(ex, now)

	if draft.StartTime.IsZero() || draft.EndTime.IsZero() {
		return &CreateResult{Code: CodeValidationFailed, Message: "Missing required booking information"}
	}
	if err := blockPastDates(clock.StartOfDay(draft.StartTime), clock.StartOfDay(now)); err != nil {
		return &CreateResult{
			Code:    CodeTemporalPolicyViolation,
			Message: "Cannot create sessions for past dates. Please choose a current or future date.",
		}
	}
	if !draft.EndTime.After(draft.StartTime) {
		return &CreateResult{Code: CodeValidationFailed, Message: "End time must be after start time"}
	}

	created, err := e.bookings.Create(ctx, &booking.CreateBookingRequest{
		Title:       draft.Title,
		Description: "Session scheduled via Schedula assistant",
		Category:    draft.Category,
		StartTime:   draft.StartTime,
		EndTime:     draft.EndTime,
		ClientName:  draft.ClientName,
	})
	if err != nil {
		return createErrorResult(err)
	}

	return &CreateResult{
		Success: true,
		Code:    CodeOK,
		Message: fmt.Sprintf("Booked %s for %s", created.Title, draft.StartTime.Format("Monday, January 2 at 3:04 PM")),
		Booking: created,
	}
}

func createErrorResult(err error) *CreateResult {
	switch {
	case errors.Is(err, booking.ErrConflict):
		return &CreateResult{Code: CodeConflict, Message: "Time slot conflicts with existing booking"}
	case errors.Is(err, booking.ErrInvalidTimeRange):
		return &CreateResult{Code: CodeValidationFailed, Message: "End time must be after start time"}
	default:
		return &CreateResult{Code: CodeSystemError, Message: fmt.Sprintf("System error: %v", err)}
	}
}

// Delete removes every booking on the extracted date. A date is required;
// past dates are deliberately allowed. Records that fail to delete are logged
// and skipped so one broken row does not abort the rest.
func (e *Executor) Delete(ctx context.Context, ex *Extraction) *DeleteResult {
	if ex.Date == nil {
		return &DeleteResult{Code: CodeValidationFailed, Message: "Please specify a date for deletion"}
	}
	if err := allowAnyDate(clock.StartOfDay(*ex.Date), clock.StartOfDay(e.clock.Now())); err != nil {
		return &DeleteResult{Code: CodeTemporalPolicyViolation, Message: err.Error()}
	}

	matches, err := e.bookings.FindDay(ctx, *ex.Date)
	if err != nil {
		return &DeleteResult{Code: CodeSystemError, Message: fmt.Sprintf("System error: %v", err)}
	}
	if len(matches) == 0 {
		return &DeleteResult{
			Success: true,
			Code:    CodeOK,
			Message: "No bookings found for the specified date",
		}
	}

	result := &DeleteResult{Success: true, Code: CodeOK}
	for _, b := range matches {
		if err := e.bookings.Delete(ctx, b.ID); err != nil {
			slog.Error("failed to delete booking", "id", b.ID, "error", err)
			continue
		}
		result.Deleted = append(result.Deleted, b)
		result.DeletedCount++
	}
	result.Message = fmt.Sprintf("Deleted %d booking(s) for %s", result.DeletedCount, ex.Date.Format("January 2, 2006"))
	return result
}

// Update moves the earliest booking on the extracted date to the extracted
// new time, on the same day. The duration is carried over from the original
// booking unless the message specified a new range. Past dates are rejected.
func (e *Executor) Update(ctx context.Context, ex *Extraction) *UpdateResult {
	if ex.Date == nil {
		return &UpdateResult{Code: CodeValidationFailed, Message: "Please specify the date of the booking to update"}
	}
	if err := blockPastDates(clock.StartOfDay(*ex.Date), clock.StartOfDay(e.clock.Now())); err != nil {
		return &UpdateResult{
			Code:    CodeTemporalPolicyViolation,
			Message: "Cannot update sessions for past dates. Please choose a current or future date.",
		}
	}
	matches, err := e.bookings.FindDay(ctx, *ex.Date)
	if err != nil {
		return &UpdateResult{Code: CodeSystemError, Message: fmt.Sprintf("System error: %v", err)}
	}
	if len(matches) == 0 {
		return &UpdateResult{Code: CodeNotFound, Message: "No bookings found to update on the specified date"}
	}

	// Matches come back ordered by start time, so the first is the earliest.
	target := matches[0]
	var note string
	if len(matches) > 1 {
		note = fmt.Sprintf("%d bookings found on that date; the earliest one was updated", len(matches))
	}

	// Only ask for a new time once the target is known to exist.
	if ex.Time == nil {
		return &UpdateResult{Code: CodeValidationFailed, Message: "Please specify a new time for the update"}
	}

	day := clock.StartOfDay(*ex.Date)
	newStart := time.Date(day.Year(), day.Month(), day.Day(), ex.Time.Hour, ex.Time.Minute, 0, 0, day.Location())
	duration := target.Duration()
	if ex.DurationHours > 0 {
		duration = time.Duration(ex.DurationHours) * time.Hour
	}
	newEnd := newStart.Add(duration)

	category := target.Category
	if ex.Category != "" {
		category = ex.Category
	}

	updated, err := e.bookings.Update(ctx, &booking.UpdateBookingRequest{
		ID:          target.ID,
		Title:       target.Title,
		Description: target.Description,
		Category:    category,
		StartTime:   newStart,
		EndTime:     newEnd,
		ClientName:  target.ClientName,
	})
	if err != nil {
		return updateErrorResult(err)
	}

	return &UpdateResult{
		Success: true,
		Code:    CodeOK,
		Message: fmt.Sprintf("Moved %s to %s", updated.Title, newStart.Format("Monday, January 2 at 3:04 PM")),
		Booking: updated,
		Note:    note,
	}
}

func updateErrorResult(err error) *UpdateResult {
	switch {
	case errors.Is(err, booking.ErrConflict):
		return &UpdateResult{Code: CodeConflict, Message: "Time slot conflicts with existing booking"}
	case errors.Is(err, booking.ErrInvalidTimeRange):
		return &UpdateResult{Code: CodeValidationFailed, Message: "End time must be after start time"}
	default:
		return &UpdateResult{Code: CodeSystemError, Message: fmt.Sprintf("System error: %v", err)}
	}
}

// Query lists the bookings of the extracted day, or of the current month when
// the message named no date.
func (e *Executor) Query(ctx context.Context, ex *Extraction) *QueryResult {
	var start, end time.Time
	singleDay := false

	if ex.Date != nil {
		start = clock.StartOfDay(*ex.Date)
		end = start.AddDate(0, 0, 1)
		singleDay = true
	} else {
		now := e.clock.Now()
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)
	}

	list, err := e.bookings.FindRange(ctx, start, end)
	if err != nil {
		return &QueryResult{Code: CodeSystemError, Message: fmt.Sprintf("System error: %v", err)}
	}

	return &QueryResult{
		Success:    true,
		Code:       CodeOK,
		Bookings:   list,
		RangeStart: start,
		RangeEnd:   end,
		SingleDay:  singleDay,
	}
}
