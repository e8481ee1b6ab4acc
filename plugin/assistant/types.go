// Package assistant implements the natural-language booking pipeline: a
// rule-based extractor turning free text into a structured intent, a default
// resolver completing booking drafts, and executors running the resulting
// operations against the booking service.
package assistant

import (
	"time"
)

// Intent is the classified operation category for an inbound message.
type Intent int

const (
	// IntentGeneral is for messages with no recognized operation keyword.
	IntentGeneral Intent = iota
	// IntentBook is for booking creation (including confirmations).
	IntentBook
	// IntentQuery is for schedule queries.
	IntentQuery
	// IntentDelete is for booking removal.
	IntentDelete
	// IntentUpdate is for booking modifications.
	IntentUpdate
)

// String returns the string representation of Intent.
func (i Intent) String() string {
	switch i {
	case IntentBook:
		return "book"
	case IntentQuery:
		return "query"
	case IntentDelete:
		return "delete"
	case IntentUpdate:
		return "update"
	default:
		return "general"
	}
}

// ClockTime is a time of day without a date.
type ClockTime struct {
	Hour   int
	Minute int
}

// Extraction is the structured reading of a single inbound message.
type Extraction struct {
	Intent Intent

	// Confirmed marks an intent derived from a confirmation keyword
	// ("yes", "book it") rather than a booking keyword. Confirmation turns
	// inherit fields collected on the previous turn of the same session.
	Confirmed bool

	// Date is the calendar day parsed from the message, at midnight in the
	// reference location. Nil when no date was recognized.
	Date *time.Time

	// Time is the start time of day. For update intent it is the NEW start
	// time; the "from" half of "from X to Y" is context only.
	Time *ClockTime

	// EndTime is the explicit end time of day, only set for full ranges
	// outside update intent.
	EndTime *ClockTime

	// DurationHours is derived from an explicit range, 0 when unspecified.
	DurationHours int

	// Category is a label matched from the fixed keyword set, empty when
	// none matched.
	Category string

	// Confidence is an additive score over all matched signals. It is
	// informational: surfaced in logs and results, never a gate.
	Confidence int
}

// Draft is the fully-defaulted booking produced before the create executor
// runs.
type Draft struct {
	StartTime  time.Time
	EndTime    time.Time
	Category   string
	ClientName string
	Title      string
}
