package store

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// SeedDemoBookings populates an empty store with a few sample bookings around
// the given anchor time, so the demo profile starts with a schedule worth
// browsing. It is a no-op when any booking already exists. Seeds bypass the
// overlap guard because the fixtures are known not to collide.
func (s *Store) SeedDemoBookings(ctx context.Context, anchor time.Time) error {
	existing, err := s.ListBookings(ctx, &FindBooking{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	fixtures := []struct {
		title    string
		category string
		client   string
		start    time.Time
		hours    int
	}{
		{"Azure Training", "Azure", "Contoso Ltd", day.Add(14 * time.Hour), 2},
		{"Python Training", "Python", "Fabrikam Inc", day.AddDate(0, 0, 1).Add(10 * time.Hour), 1},
		{"Team Meeting", "Meeting", "Internal", day.AddDate(0, 0, 3).Add(9 * time.Hour), 1},
	}

	for _, f := range fixtures {
		booking := &Booking{
			UID:         shortuuid.New(),
			Title:       f.title,
			Description: "Demo seed booking",
			Category:    f.category,
			ClientName:  f.client,
			StartTs:     f.start.Unix(),
			EndTs:       f.start.Add(time.Duration(f.hours) * time.Hour).Unix(),
		}
		if _, err := s.CreateBooking(ctx, booking); err != nil {
			return err
		}
	}
	return nil
}
