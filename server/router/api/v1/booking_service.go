package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/schedula/server/service/booking"
	"github.com/hrygo/schedula/store"
)

// BookingResponse is the JSON shape of a booking. IDs are serialized as
// strings so large values survive JavaScript number parsing.
type BookingResponse struct {
	ID          string `json:"id"`
	UID         string `json:"uid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	ClientName  string `json:"clientName"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toBookingResponse(b *store.Booking) BookingResponse {
	return BookingResponse{
		ID:          strconv.FormatInt(int64(b.ID), 10),
		UID:         b.UID,
		Title:       b.Title,
		Description: b.Description,
		Category:    b.Category,
		StartTime:   b.ParseStartTime().UTC().Format(time.RFC3339),
		EndTime:     b.ParseEndTime().UTC().Format(time.RFC3339),
		ClientName:  b.ClientName,
		CreatedAt:   time.Unix(b.CreatedTs, 0).UTC().Format(time.RFC3339),
		UpdatedAt:   time.Unix(b.UpdatedTs, 0).UTC().Format(time.RFC3339),
	}
}

// SearchBookings returns bookings matching the optional q, date, and category
// filters, AND-combined, ordered by start time. Optional limit/offset
// paginate the result.
// GET /api/v1/bookings/search
func (s *APIV1Service) SearchBookings(c echo.Context) error {
	search := &booking.SearchRequest{
		Query:    c.QueryParam("q"),
		Category: c.QueryParam("category"),
	}

	if raw := c.QueryParam("date"); raw != "" {
		date, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid date, expected YYYY-MM-DD"})
		}
		search.Date = &date
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid limit, expected a positive integer"})
		}
		search.Limit = limit
		if raw := c.QueryParam("offset"); raw != "" {
			offset, err := strconv.Atoi(raw)
			if err != nil || offset < 0 {
				return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid offset, expected a non-negative integer"})
			}
			search.Offset = offset
		}
	}

	list, err := s.BookingService.Search(c.Request().Context(), search)
	if err != nil {
		slog.Error("failed to search bookings", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to search bookings"})
	}

	out := make([]BookingResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBookingResponse(b))
	}
	return c.JSON(http.StatusOK, out)
}
