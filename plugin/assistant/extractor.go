package assistant

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Intent keyword sets. Matching is case-insensitive substring containment,
// evaluated in priority order: confirmation, delete, update, query, book.
var (
	bookKeywords         = []string{"book", "schedule", "create", "add", "set up", "arrange", "plan", "reserve"}
	queryKeywords        = []string{"show", "what", "when", "which", "sessions", "bookings", "check", "see", "display", "tell me", "find", "have", "do i have", "list", "view"}
	deleteKeywords       = []string{"delete", "remove", "cancel", "clear", "cancel appointment", "cancel meeting", "clear calendar", "remove booking"}
	updateKeywords       = []string{"update", "change", "modify", "edit", "reschedule", "move", "shift", "adjust", "change time", "move to"}
	confirmationKeywords = []string{"yes", "yeah", "yep", "confirm", "correct", "right", "book it", "go ahead", "proceed"}
)

// Confidence contributions per matched signal.
const (
	confidenceConfirmation = 80
	confidenceDelete       = 70
	confidenceUpdate       = 60
	confidenceQuery        = 60
	confidenceBook         = 50
	confidenceDate         = 25
	confidenceUpdateRange  = 40
	confidenceUpdateSimple = 30
	confidenceTimeRange    = 30
	confidenceTimeSingle   = 20
	confidenceCategory     = 10
)

// monthAlternation lists full names before abbreviations so the regexp engine
// prefers the longer token at the same position.
const monthAlternation = `january|february|march|april|june|july|august|september|october|november|december|may|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec`

var monthsByToken = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// Date grammar. Each pattern captures a day group and, where applicable, a
// month group (by name or number). Patterns are tried in order and the first
// match wins.
var datePatterns = []*regexp.Regexp{
	// "july 13th", "dec 25"
	regexp.MustCompile(`\b(?P<month>` + monthAlternation + `)\s+(?P<day>\d{1,2})(?:st|nd|rd|th)?\b`),
	// "13-jul", "13/july"
	regexp.MustCompile(`\b(?P<day>\d{1,2})[-/](?P<month>` + monthAlternation + `)\b`),
	// "13 jul"
	regexp.MustCompile(`\b(?P<day>\d{1,2})\s+(?P<month>` + monthAlternation + `)\b`),
	// "13jul"
	regexp.MustCompile(`\b(?P<day>\d{1,2})(?P<month>` + monthAlternation + `)\b`),
	// "7/13"
	regexp.MustCompile(`\b(?P<monthnum>\d{1,2})/(?P<day>\d{1,2})\b`),
}

var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)

// Time-of-day grammar.
var (
	// "from 2 pm to 3 pm": the second time is the new start, only consulted
	// for update intent.
	updateRangePattern = regexp.MustCompile(`from\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)\s+to\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)`)
	// "to 3 pm", "at 3 pm": update fallback when no "from ... to" pair.
	updateSimplePattern = regexp.MustCompile(`(?:to|at)\s+(\d{1,2})\s*(am|pm)`)
	// "2 pm to 4 pm", "9 am until 5 pm", "2 pm - 3 pm"
	timeRangePattern = regexp.MustCompile(`(\d{1,2})\s*(am|pm)\s*(?:to|until|-)\s*(\d{1,2})\s*(am|pm)`)
	// "2 pm"
	timeSinglePattern = regexp.MustCompile(`(\d{1,2})\s*(am|pm)`)
)

// categoryKeywords is ordered: the first keyword contained in the message
// decides the category.
var categoryKeywords = []struct {
	keyword string
	label   string
}{
	{"training", "Training"},
	{"meeting", "Meeting"},
	{"azure", "Azure"},
	{"python", "Python"},
}

// Extract classifies a message and pulls out date, time, and category
// signals. The reference instant decides what "today" and "tomorrow" mean and
// supplies the year for dates written without one.
func Extract(message string, now time.Time) *Extraction {
	lower := strings.ToLower(message)
	ex := &Extraction{Intent: IntentGeneral}

	switch {
	case containsAny(lower, confirmationKeywords):
		ex.Intent = IntentBook
		ex.Confirmed = true
		ex.Confidence += confidenceConfirmation
	case containsAny(lower, deleteKeywords):
		ex.Intent = IntentDelete
		ex.Confidence += confidenceDelete
	case containsAny(lower, updateKeywords):
		ex.Intent = IntentUpdate
		ex.Confidence += confidenceUpdate
	case containsAny(lower, queryKeywords):
		ex.Intent = IntentQuery
		ex.Confidence += confidenceQuery
	case containsAny(lower, bookKeywords):
		ex.Intent = IntentBook
		ex.Confidence += confidenceBook
	}

	extractDate(lower, now, ex)
	extractTime(lower, ex)

	for _, c := range categoryKeywords {
		if strings.Contains(lower, c.keyword) {
			ex.Category = c.label
			ex.Confidence += confidenceCategory
			break
		}
	}

	return ex
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func extractDate(lower string, now time.Time, ex *Extraction) {
	if strings.Contains(lower, "today") {
		d := startOfDay(now)
		ex.Date = &d
		ex.Confidence += confidenceDate
		return
	}
	if strings.Contains(lower, "tomorrow") {
		d := startOfDay(now.AddDate(0, 0, 1))
		ex.Date = &d
		ex.Confidence += confidenceDate
		return
	}

	year := now.Year()
	if m := yearPattern.FindStringSubmatch(lower); m != nil {
		year, _ = strconv.Atoi(m[1])
	}

	for _, pattern := range datePatterns {
		m := pattern.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		var day int
		var month time.Month
		for i, name := range pattern.SubexpNames() {
			switch name {
			case "day":
				day, _ = strconv.Atoi(m[i])
			case "month":
				month = monthsByToken[m[i]]
			case "monthnum":
				n, _ := strconv.Atoi(m[i])
				month = time.Month(n)
			}
		}
		if day < 1 || day > 31 || month < time.January || month > time.December {
			continue
		}
		d := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
		ex.Date = &d
		ex.Confidence += confidenceDate
		return
	}
}

func extractTime(lower string, ex *Extraction) {
	if ex.Intent == IntentUpdate {
		if m := updateRangePattern.FindStringSubmatch(lower); m != nil {
			hour, _ := strconv.Atoi(m[4])
			minute := 0
			if m[5] != "" {
				minute, _ = strconv.Atoi(m[5])
			}
			ex.Time = &ClockTime{Hour: to24Hour(hour, m[6]), Minute: minute}
			ex.Confidence += confidenceUpdateRange
			return
		}
		if m := updateSimplePattern.FindStringSubmatch(lower); m != nil {
			hour, _ := strconv.Atoi(m[1])
			ex.Time = &ClockTime{Hour: to24Hour(hour, m[2])}
			ex.Confidence += confidenceUpdateSimple
			return
		}
		return
	}

	if m := timeRangePattern.FindStringSubmatch(lower); m != nil {
		startHour, _ := strconv.Atoi(m[1])
		endHour, _ := strconv.Atoi(m[3])
		start := to24Hour(startHour, m[2])
		end := to24Hour(endHour, m[4])
		ex.Time = &ClockTime{Hour: start}
		ex.EndTime = &ClockTime{Hour: end}
		ex.DurationHours = end - start
		ex.Confidence += confidenceTimeRange
		return
	}
	if m := timeSinglePattern.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		ex.Time = &ClockTime{Hour: to24Hour(hour, m[2])}
		ex.DurationHours = 1
		ex.Confidence += confidenceTimeSingle
	}
}

// to24Hour converts a 12-hour clock reading: 12am is 0, 12pm is 12.
func to24Hour(hour int, meridiem string) int {
	if meridiem == "pm" && hour != 12 {
		return hour + 12
	}
	if meridiem == "am" && hour == 12 {
		return 0
	}
	return hour
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
