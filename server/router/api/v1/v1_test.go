package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/schedula/internal/clock"
	"github.com/hrygo/schedula/internal/profile"
	"github.com/hrygo/schedula/plugin/assistant"
	"github.com/hrygo/schedula/server/service/booking"
	"github.com/hrygo/schedula/store"
)

var testAnchor = time.Date(2025, time.July, 5, 12, 0, 0, 0, time.UTC)

// fakeBookingService is an in-memory booking.Service for handler tests.
type fakeBookingService struct {
	nextID   int32
	bookings []*store.Booking
}

var _ booking.Service = (*fakeBookingService)(nil)

func (f *fakeBookingService) FindRange(_ context.Context, start, end time.Time) ([]*store.Booking, error) {
	var out []*store.Booking
	for _, b := range f.bookings {
		if b.StartTs >= start.Unix() && b.StartTs < end.Unix() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTs < out[j].StartTs })
	return out, nil
}

func (f *fakeBookingService) FindDay(ctx context.Context, date time.Time) ([]*store.Booking, error) {
	day := clock.StartOfDay(date)
	return f.FindRange(ctx, day, day.AddDate(0, 0, 1))
}

func (f *fakeBookingService) Create(_ context.Context, create *booking.CreateBookingRequest) (*store.Booking, error) {
	if !create.EndTime.After(create.StartTime) {
		return nil, booking.ErrInvalidTimeRange
	}
	for _, b := range f.bookings {
		if b.OverlapsRange(create.StartTime.Unix(), create.EndTime.Unix()) {
			return nil, booking.ErrConflict
		}
	}
	f.nextID++
	b := &store.Booking{
		ID:          f.nextID,
		Title:       create.Title,
		Description: create.Description,
		Category:    create.Category,
		StartTs:     create.StartTime.Unix(),
		EndTs:       create.EndTime.Unix(),
		ClientName:  create.ClientName,
	}
	f.bookings = append(f.bookings, b)
	return b, nil
}

func (f *fakeBookingService) Update(_ context.Context, update *booking.UpdateBookingRequest) (*store.Booking, error) {
	for _, b := range f.bookings {
		if b.ID == update.ID {
			b.Title = update.Title
			b.Category = update.Category
			b.StartTs = update.StartTime.Unix()
			b.EndTs = update.EndTime.Unix()
			return b, nil
		}
	}
	return nil, booking.ErrConflict
}

func (f *fakeBookingService) Delete(_ context.Context, id int32) error {
	for i, b := range f.bookings {
		if b.ID == id {
			f.bookings = append(f.bookings[:i], f.bookings[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeBookingService) Search(_ context.Context, search *booking.SearchRequest) ([]*store.Booking, error) {
	var out []*store.Booking
	for _, b := range f.bookings {
		if search.Query != "" {
			q := strings.ToLower(search.Query)
			if !strings.Contains(strings.ToLower(b.Title), q) &&
				!strings.Contains(strings.ToLower(b.Description), q) &&
				!strings.Contains(strings.ToLower(b.ClientName), q) {
				continue
			}
		}
		if search.Date != nil {
			day := clock.StartOfDay(*search.Date)
			if b.StartTs < day.Unix() || b.StartTs >= day.AddDate(0, 0, 1).Unix() {
				continue
			}
		}
		if search.Category != "" && b.Category != search.Category {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTs < out[j].StartTs })
	if search.Limit > 0 {
		if search.Offset > 0 {
			if search.Offset >= len(out) {
				out = nil
			} else {
				out = out[search.Offset:]
			}
		}
		if len(out) > search.Limit {
			out = out[:search.Limit]
		}
	}
	return out, nil
}

func newTestService(svc booking.Service) *APIV1Service {
	clk := clock.NewFixed(testAnchor)
	asst := assistant.New(svc, assistant.NewSessionManager(30*time.Minute, clk), clk)
	return NewAPIV1Service(&profile.Profile{Mode: "demo"}, nil, svc, asst)
}

func doRequest(s *APIV1Service, method, target, body string) *httptest.ResponseRecorder {
	e := echo.New()
	s.Register(e)
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChatBooksSession(t *testing.T) {
	svc := &fakeBookingService{}
	s := newTestService(svc)

	rec := doRequest(s, http.MethodPost, "/api/v1/chat",
		`{"message": "Book training tomorrow at 2 PM to 3 PM", "session_id": "alice"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Response, "Booking Confirmed!")
	require.Len(t, svc.bookings, 1)
	assert.Equal(t, time.Date(2025, time.July, 6, 14, 0, 0, 0, time.UTC).Unix(), svc.bookings[0].StartTs)
}

func TestChatRequiresMessage(t *testing.T) {
	s := newTestService(&fakeBookingService{})

	rec := doRequest(s, http.MethodPost, "/api/v1/chat", `{"session_id": "alice"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatOperationFailureIsStillOK(t *testing.T) {
	svc := &fakeBookingService{}
	s := newTestService(svc)

	// Past date: the executor rejects it, but the transport answers 200
	// with an error card.
	rec := doRequest(s, http.MethodPost, "/api/v1/chat",
		`{"message": "book a session on july 1 at 2 pm"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Response, "Booking Failed")
	assert.Contains(t, resp.Response, "past dates")
}

func seedBooking(svc *fakeBookingService, title, category, client string, start time.Time) {
	svc.nextID++
	svc.bookings = append(svc.bookings, &store.Booking{
		ID:         svc.nextID,
		Title:      title,
		Category:   category,
		ClientName: client,
		StartTs:    start.Unix(),
		EndTs:      start.Add(time.Hour).Unix(),
	})
}

func TestSearchBookingsFilters(t *testing.T) {
	svc := &fakeBookingService{}
	seedBooking(svc, "Python Basics", "Python", "Acme", time.Date(2025, time.July, 13, 9, 0, 0, 0, time.UTC))
	seedBooking(svc, "Azure Fundamentals", "Azure", "Globex", time.Date(2025, time.July, 13, 11, 0, 0, 0, time.UTC))
	seedBooking(svc, "Python Advanced", "Python", "Acme", time.Date(2025, time.July, 14, 9, 0, 0, 0, time.UTC))
	s := newTestService(svc)

	rec := doRequest(s, http.MethodGet, "/api/v1/bookings/search?q=python&date=2025-07-13", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out []BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Python Basics", out[0].Title)
	// IDs are serialized as strings.
	assert.Equal(t, "1", out[0].ID)
}

func TestSearchBookingsPaginates(t *testing.T) {
	svc := &fakeBookingService{}
	seedBooking(svc, "Python Basics", "Python", "Acme", time.Date(2025, time.July, 13, 9, 0, 0, 0, time.UTC))
	seedBooking(svc, "Azure Fundamentals", "Azure", "Globex", time.Date(2025, time.July, 13, 11, 0, 0, 0, time.UTC))
	seedBooking(svc, "Python Advanced", "Python", "Acme", time.Date(2025, time.July, 14, 9, 0, 0, 0, time.UTC))
	s := newTestService(svc)

	rec := doRequest(s, http.MethodGet, "/api/v1/bookings/search?limit=1&offset=1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out []BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Azure Fundamentals", out[0].Title)
}

func TestSearchBookingsRejectsBadLimit(t *testing.T) {
	s := newTestService(&fakeBookingService{})

	rec := doRequest(s, http.MethodGet, "/api/v1/bookings/search?limit=zero", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchBookingsRejectsBadDate(t *testing.T) {
	s := newTestService(&fakeBookingService{})

	rec := doRequest(s, http.MethodGet, "/api/v1/bookings/search?date=13-07-2025", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchBookingsEmptyResultIsArray(t *testing.T) {
	s := newTestService(&fakeBookingService{})

	rec := doRequest(s, http.MethodGet, "/api/v1/bookings/search", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListTrainingTypes(t *testing.T) {
	s := newTestService(&fakeBookingService{})

	rec := doRequest(s, http.MethodGet, "/api/v1/training-types", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out []TrainingType
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out, 8)
}

func TestListTrainingTypesCategoryFilterIsCaseInsensitive(t *testing.T) {
	s := newTestService(&fakeBookingService{})

	rec := doRequest(s, http.MethodGet, "/api/v1/training-types?category=azure", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out []TrainingType
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 3)
	for _, tt := range out {
		assert.Equal(t, "Azure", tt.Category)
	}
}
