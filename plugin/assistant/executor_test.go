package assistant

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/schedula/internal/clock"
	"github.com/hrygo/schedula/server/service/booking"
	"github.com/hrygo/schedula/store"
)

// mockBookingService is an in-memory booking.Service with the same conflict
// and ordering behavior as the real one.
type mockBookingService struct {
	nextID       int32
	bookings     []*store.Booking
	deleteErrFor map[int32]error
}

var _ booking.Service = (*mockBookingService)(nil)

func (m *mockBookingService) FindRange(_ context.Context, start, end time.Time) ([]*store.Booking, error) {
	var out []*store.Booking
	for _, b := range m.bookings {
		if b.StartTs >= start.Unix() && b.StartTs < end.Unix() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTs < out[j].StartTs })
	return out, nil
}

func (m *mockBookingService) FindDay(ctx context.Context, date time.Time) ([]*store.Booking, error) {
	day := clock.StartOfDay(date)
	return m.FindRange(ctx, day, day.AddDate(0, 0, 1))
}

func (m *mockBookingService) Create(_ context.Context, create *booking.CreateBookingRequest) (*store.Booking, error) {
	if !create.EndTime.After(create.StartTime) {
		return nil, booking.ErrInvalidTimeRange
	}
	for _, b := range m.bookings {
		if b.OverlapsRange(create.StartTime.Unix(), create.EndTime.Unix()) {
			return nil, booking.ErrConflict
		}
	}
	m.nextID++
	b := &store.Booking{
		ID:          m.nextID,
		Title:       create.Title,
		Description: create.Description,
		Category:    create.Category,
		StartTs:     create.StartTime.Unix(),
		EndTs:       create.EndTime.Unix(),
		ClientName:  create.ClientName,
	}
	m.bookings = append(m.bookings, b)
	return b, nil
}

func (m *mockBookingService) Update(_ context.Context, update *booking.UpdateBookingRequest) (*store.Booking, error) {
	if !update.EndTime.After(update.StartTime) {
		return nil, booking.ErrInvalidTimeRange
	}
	for _, b := range m.bookings {
		if b.ID != update.ID && b.OverlapsRange(update.StartTime.Unix(), update.EndTime.Unix()) {
			return nil, booking.ErrConflict
		}
	}
	for _, b := range m.bookings {
		if b.ID == update.ID {
			b.Title = update.Title
			b.Description = update.Description
			b.Category = update.Category
			b.StartTs = update.StartTime.Unix()
			b.EndTs = update.EndTime.Unix()
			b.ClientName = update.ClientName
			return b, nil
		}
	}
	return nil, assert.AnError
}

func (m *mockBookingService) Delete(_ context.Context, id int32) error {
	if err, ok := m.deleteErrFor[id]; ok {
		return err
	}
	for i, b := range m.bookings {
		if b.ID == id {
			m.bookings = append(m.bookings[:i], m.bookings[i+1:]...)
			return nil
		}
	}
	return assert.AnError
}

func (m *mockBookingService) Search(ctx context.Context, _ *booking.SearchRequest) ([]*store.Booking, error) {
	return m.FindRange(ctx, time.Unix(0, 0), time.Unix(1<<40, 0))
}

func (m *mockBookingService) seed(t *testing.T, title string, start, end time.Time) *store.Booking {
	t.Helper()
	b, err := m.Create(context.Background(), &booking.CreateBookingRequest{
		Title:     title,
		Category:  "Training",
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)
	return b
}

func newTestExecutor() (*Executor, *mockBookingService) {
	svc := &mockBookingService{deleteErrFor: map[int32]error{}}
	return NewExecutor(svc, clock.NewFixed(testNow)), svc
}

func dateAt(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestCreateBlocksPastDates(t *testing.T) {
	e, svc := newTestExecutor()

	result := e.Create(context.Background(), &Extraction{Intent: IntentBook, Date: dateAt(2025, time.July, 4)})

	assert.False(t, result.Success)
	assert.Equal(t, CodeTemporalPolicyViolation, result.Code)
	assert.Empty(t, svc.bookings)
}

func TestCreateAllowsCurrentDay(t *testing.T) {
	e, _ := newTestExecutor()

	result := e.Create(context.Background(), &Extraction{
		Intent: IntentBook,
		Date:   dateAt(2025, time.July, 5),
		Time:   &ClockTime{Hour: 14},
	})

	assert.True(t, result.Success)
	assert.Equal(t, CodeOK, result.Code)
	require.NotNil(t, result.Booking)
	assert.Equal(t, time.Date(2025, time.July, 5, 14, 0, 0, 0, time.UTC).Unix(), result.Booking.StartTs)
}

func TestCreateDefaultsToTomorrowMorning(t *testing.T) {
	e, _ := newTestExecutor()

	result := e.Create(context.Background(), &Extraction{Intent: IntentBook})

	require.True(t, result.Success)
	assert.Equal(t, time.Date(2025, time.July, 6, 10, 0, 0, 0, time.UTC).Unix(), result.Booking.StartTs)
	assert.Equal(t, time.Date(2025, time.July, 6, 11, 0, 0, 0, time.UTC).Unix(), result.Booking.EndTs)
	assert.Equal(t, "Training Session", result.Booking.Title)
	assert.Equal(t, "Client", result.Booking.ClientName)
}

func TestCreateReportsConflict(t *testing.T) {
	e, svc := newTestExecutor()
	svc.seed(t, "Existing",
		time.Date(2025, time.July, 6, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.July, 6, 11, 0, 0, 0, time.UTC))

	result := e.Create(context.Background(), &Extraction{
		Intent: IntentBook,
		Date:   dateAt(2025, time.July, 6),
		Time:   &ClockTime{Hour: 10, Minute: 30},
	})

	assert.False(t, result.Success)
	assert.Equal(t, CodeConflict, result.Code)
	assert.Equal(t, "Time slot conflicts with existing booking", result.Message)
}

func TestDeleteRequiresDate(t *testing.T) {
	e, _ := newTestExecutor()

	result := e.Delete(context.Background(), &Extraction{Intent: IntentDelete})

	assert.False(t, result.Success)
	assert.Equal(t, CodeValidationFailed, result.Code)
}

func TestDeleteAllowsPastDates(t *testing.T) {
	e, svc := newTestExecutor()
	svc.bookings = append(svc.bookings, &store.Booking{
		ID:      1,
		Title:   "Old Session",
		StartTs: time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC).Unix(),
		EndTs:   time.Date(2025, time.June, 1, 11, 0, 0, 0, time.UTC).Unix(),
	})

	result := e.Delete(context.Background(), &Extraction{Intent: IntentDelete, Date: dateAt(2025, time.June, 1)})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.DeletedCount)
	assert.Empty(t, svc.bookings)
}

func TestDeleteNoMatchesIsSuccess(t *testing.T) {
	e, _ := newTestExecutor()

	result := e.Delete(context.Background(), &Extraction{Intent: IntentDelete, Date: dateAt(2025, time.July, 13)})

	assert.True(t, result.Success)
	assert.Equal(t, CodeOK, result.Code)
	assert.Equal(t, 0, result.DeletedCount)
}

func TestDeleteContinuesAfterRecordFailure(t *testing.T) {
	e, svc := newTestExecutor()
	day := time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC)
	a := svc.seed(t, "First", day.Add(9*time.Hour), day.Add(10*time.Hour))
	svc.seed(t, "Second", day.Add(11*time.Hour), day.Add(12*time.Hour))
	svc.deleteErrFor[a.ID] = assert.AnError

	result := e.Delete(context.Background(), &Extraction{Intent: IntentDelete, Date: &day})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.DeletedCount)
	require.Len(t, result.Deleted, 1)
	assert.Equal(t, "Second", result.Deleted[0].Title)
}

func TestUpdateBlocksPastDates(t *testing.T) {
	e, _ := newTestExecutor()

	result := e.Update(context.Background(), &Extraction{
		Intent: IntentUpdate,
		Date:   dateAt(2025, time.July, 4),
		Time:   &ClockTime{Hour: 15},
	})

	assert.False(t, result.Success)
	assert.Equal(t, CodeTemporalPolicyViolation, result.Code)
}

func TestUpdateRequiresNewTime(t *testing.T) {
	e, svc := newTestExecutor()
	day := time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC)
	svc.seed(t, "Morning", day.Add(9*time.Hour), day.Add(10*time.Hour))

	result := e.Update(context.Background(), &Extraction{Intent: IntentUpdate, Date: &day})

	assert.False(t, result.Success)
	assert.Equal(t, CodeValidationFailed, result.Code)
	assert.Contains(t, result.Message, "new time")
}

func TestUpdateResolvesTargetBeforeAskingForTime(t *testing.T) {
	e, _ := newTestExecutor()

	// With nothing booked that day, the missing target wins over the
	// missing time.
	result := e.Update(context.Background(), &Extraction{Intent: IntentUpdate, Date: dateAt(2025, time.July, 13)})

	assert.False(t, result.Success)
	assert.Equal(t, CodeNotFound, result.Code)
	assert.Contains(t, result.Message, "No bookings found to update")
}

func TestUpdateNotFound(t *testing.T) {
	e, _ := newTestExecutor()

	result := e.Update(context.Background(), &Extraction{
		Intent: IntentUpdate,
		Date:   dateAt(2025, time.July, 13),
		Time:   &ClockTime{Hour: 15},
	})

	assert.False(t, result.Success)
	assert.Equal(t, CodeNotFound, result.Code)
}

func TestUpdateMovesEarliestAndCarriesDuration(t *testing.T) {
	e, svc := newTestExecutor()
	day := time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC)
	svc.seed(t, "Morning", day.Add(9*time.Hour), day.Add(11*time.Hour))
	svc.seed(t, "Afternoon", day.Add(14*time.Hour), day.Add(15*time.Hour))

	result := e.Update(context.Background(), &Extraction{
		Intent: IntentUpdate,
		Date:   &day,
		Time:   &ClockTime{Hour: 16},
	})

	require.True(t, result.Success)
	assert.Equal(t, "Morning", result.Booking.Title)
	assert.Equal(t, day.Add(16*time.Hour).Unix(), result.Booking.StartTs)
	// The two-hour duration is preserved.
	assert.Equal(t, day.Add(18*time.Hour).Unix(), result.Booking.EndTs)
	assert.NotEmpty(t, result.Note)
}

func TestUpdateConflictReported(t *testing.T) {
	e, svc := newTestExecutor()
	day := time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC)
	svc.seed(t, "Morning", day.Add(9*time.Hour), day.Add(10*time.Hour))
	svc.seed(t, "Afternoon", day.Add(14*time.Hour), day.Add(15*time.Hour))

	// Moving the morning session onto the afternoon slot.
	result := e.Update(context.Background(), &Extraction{
		Intent: IntentUpdate,
		Date:   &day,
		Time:   &ClockTime{Hour: 14},
	})

	assert.False(t, result.Success)
	assert.Equal(t, CodeConflict, result.Code)
}

func TestQuerySingleDay(t *testing.T) {
	e, svc := newTestExecutor()
	day := time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC)
	svc.seed(t, "On Day", day.Add(9*time.Hour), day.Add(10*time.Hour))
	svc.seed(t, "Other Day", day.Add(33*time.Hour), day.Add(34*time.Hour))

	result := e.Query(context.Background(), &Extraction{Intent: IntentQuery, Date: &day})

	require.True(t, result.Success)
	assert.True(t, result.SingleDay)
	require.Len(t, result.Bookings, 1)
	assert.Equal(t, "On Day", result.Bookings[0].Title)
}

func TestQueryDefaultsToCurrentMonth(t *testing.T) {
	e, svc := newTestExecutor()
	svc.seed(t, "July Session",
		time.Date(2025, time.July, 20, 9, 0, 0, 0, time.UTC),
		time.Date(2025, time.July, 20, 10, 0, 0, 0, time.UTC))
	svc.seed(t, "August Session",
		time.Date(2025, time.August, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2025, time.August, 2, 10, 0, 0, 0, time.UTC))

	result := e.Query(context.Background(), &Extraction{Intent: IntentQuery})

	require.True(t, result.Success)
	assert.False(t, result.SingleDay)
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), result.RangeStart)
	require.Len(t, result.Bookings, 1)
	assert.Equal(t, "July Session", result.Bookings[0].Title)
}
