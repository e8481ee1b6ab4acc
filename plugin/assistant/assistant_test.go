package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/schedula/internal/clock"
)

func newTestAssistant() (*Assistant, *mockBookingService) {
	svc := &mockBookingService{deleteErrFor: map[int32]error{}}
	clk := clock.NewFixed(testNow)
	return New(svc, NewSessionManager(30*time.Minute, clk), clk), svc
}

func TestHandleMessageBooksSession(t *testing.T) {
	a, svc := newTestAssistant()

	resp, err := a.HandleMessage(context.Background(), "alice", "Book training tomorrow at 2 PM to 3 PM")

	require.NoError(t, err)
	assert.Equal(t, IntentBook, resp.Intent)
	assert.Equal(t, CodeOK, resp.Code)
	assert.Contains(t, resp.HTML, "Booking Confirmed!")
	require.Len(t, svc.bookings, 1)
	assert.Equal(t, time.Date(2025, time.July, 6, 14, 0, 0, 0, time.UTC).Unix(), svc.bookings[0].StartTs)
	assert.Equal(t, "Training Training", svc.bookings[0].Title)
	assert.Equal(t, "Training", svc.bookings[0].Category)
}

func TestHandleMessageConfirmationUsesRememberedFields(t *testing.T) {
	a, svc := newTestAssistant()

	date := time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC)
	a.sessions.Remember("alice", &Extraction{
		Intent:   IntentBook,
		Date:     &date,
		Time:     &ClockTime{Hour: 14},
		Category: "Python",
	})

	resp, err := a.HandleMessage(context.Background(), "alice", "yes, book it")

	require.NoError(t, err)
	assert.Equal(t, CodeOK, resp.Code)
	require.Len(t, svc.bookings, 1)
	assert.Equal(t, time.Date(2025, time.July, 13, 14, 0, 0, 0, time.UTC).Unix(), svc.bookings[0].StartTs)
	assert.Equal(t, "Python", svc.bookings[0].Category)
}

func TestHandleMessageConfirmationsDoNotCrossSessions(t *testing.T) {
	a, svc := newTestAssistant()

	date := time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC)
	a.sessions.Remember("alice", &Extraction{Intent: IntentBook, Date: &date, Time: &ClockTime{Hour: 14}})

	_, err := a.HandleMessage(context.Background(), "bob", "yes, book it")
	require.NoError(t, err)

	// Bob's confirmation falls back to defaults, not Alice's pending slot.
	require.Len(t, svc.bookings, 1)
	assert.Equal(t, time.Date(2025, time.July, 6, 10, 0, 0, 0, time.UTC).Unix(), svc.bookings[0].StartTs)
}

func TestHandleMessageQueryRendersSchedule(t *testing.T) {
	a, svc := newTestAssistant()
	svc.seed(t, "July Session",
		time.Date(2025, time.July, 20, 9, 0, 0, 0, time.UTC),
		time.Date(2025, time.July, 20, 10, 0, 0, 0, time.UTC))

	resp, err := a.HandleMessage(context.Background(), "alice", "show my bookings")

	require.NoError(t, err)
	assert.Equal(t, IntentQuery, resp.Intent)
	assert.Contains(t, resp.HTML, "Your Schedule")
	assert.Contains(t, resp.HTML, "July Session")
}

func TestHandleMessageQueryDoesNotCreateBookings(t *testing.T) {
	a, svc := newTestAssistant()

	resp, err := a.HandleMessage(context.Background(), "alice", "do i have sessions tomorrow")

	require.NoError(t, err)
	assert.Equal(t, IntentQuery, resp.Intent)
	assert.Empty(t, svc.bookings)
}

func TestHandleMessageDeleteByDate(t *testing.T) {
	a, svc := newTestAssistant()
	day := time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC)
	svc.seed(t, "Doomed", day.Add(9*time.Hour), day.Add(10*time.Hour))

	resp, err := a.HandleMessage(context.Background(), "alice", "delete all sessions 13-Jul")

	require.NoError(t, err)
	assert.Equal(t, IntentDelete, resp.Intent)
	assert.Contains(t, resp.HTML, "Bookings Deleted")
	assert.Empty(t, svc.bookings)
}

func TestHandleMessageUpdateMovesSession(t *testing.T) {
	a, svc := newTestAssistant()
	day := time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC)
	svc.seed(t, "Morning", day.Add(14*time.Hour), day.Add(15*time.Hour))

	resp, err := a.HandleMessage(context.Background(), "alice", "change my session on july 13 from 2 pm to 3 pm")

	require.NoError(t, err)
	assert.Equal(t, IntentUpdate, resp.Intent)
	assert.Contains(t, resp.HTML, "Booking Updated!")
	assert.Equal(t, day.Add(15*time.Hour).Unix(), svc.bookings[0].StartTs)
}

func TestHandleMessageGeneralShowsHelp(t *testing.T) {
	a, _ := newTestAssistant()

	resp, err := a.HandleMessage(context.Background(), "alice", "hello")

	require.NoError(t, err)
	assert.Equal(t, IntentGeneral, resp.Intent)
	assert.Contains(t, resp.HTML, "Schedula Assistant")
}

func TestHandleMessageSurfacesOperationFailure(t *testing.T) {
	a, svc := newTestAssistant()
	day := time.Date(2025, time.July, 6, 0, 0, 0, 0, time.UTC)
	svc.seed(t, "Existing", day.Add(14*time.Hour), day.Add(15*time.Hour))

	resp, err := a.HandleMessage(context.Background(), "alice", "book training tomorrow at 2 pm")

	require.NoError(t, err)
	assert.Equal(t, CodeConflict, resp.Code)
	assert.Contains(t, resp.HTML, "Booking Failed")
	assert.Contains(t, resp.HTML, "Time slot conflicts with existing booking")
}
