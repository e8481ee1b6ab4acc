package assistant

import (
	"fmt"
	"time"
)

// Smart defaults applied to booking drafts when the extraction left a field
// empty.
const (
	DefaultStartHour     = 10
	DefaultDurationHours = 1
	DefaultCategory      = "Training"
	DefaultClientName    = "Client"
	DefaultTitle         = "Training Session"
)

// ApplyDefaults completes an extraction into a booking draft. Missing fields
// fall back to: tomorrow, 10:00, one hour, Training, Client. The title is
// derived from the category when one was extracted.
func ApplyDefaults(ex *Extraction, now time.Time) Draft {
	date := startOfDay(now.AddDate(0, 0, 1))
	if ex.Date != nil {
		date = *ex.Date
	}

	start := ClockTime{Hour: DefaultStartHour}
	if ex.Time != nil {
		start = *ex.Time
	}

	duration := DefaultDurationHours
	if ex.DurationHours > 0 {
		duration = ex.DurationHours
	}

	startTime := time.Date(date.Year(), date.Month(), date.Day(), start.Hour, start.Minute, 0, 0, date.Location())
	var endTime time.Time
	if ex.EndTime != nil {
		endTime = time.Date(date.Year(), date.Month(), date.Day(), ex.EndTime.Hour, ex.EndTime.Minute, 0, 0, date.Location())
	} else {
		endTime = startTime.Add(time.Duration(duration) * time.Hour)
	}

	category := DefaultCategory
	title := DefaultTitle
	if ex.Category != "" {
		category = ex.Category
		title = fmt.Sprintf("%s Training", ex.Category)
	}

	return Draft{
		StartTime:  startTime,
		EndTime:    endTime,
		Category:   category,
		ClientName: DefaultClientName,
		Title:      title,
	}
}
