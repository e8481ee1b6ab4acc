package assistant

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/schedula/internal/clock"
	"github.com/hrygo/schedula/store"
)

// Renderer turns operation results into self-contained HTML fragments for the
// chat panel. All dynamic text goes through html/template escaping; only
// renderer-owned color values are marked as trusted CSS.
type Renderer struct {
	clock clock.Clock
	tmpl  *template.Template
}

// NewRenderer creates a renderer. The clock decides past/today/future row
// coloring in schedule tables.
func NewRenderer(clk clock.Clock) *Renderer {
	return &Renderer{
		clock: clk,
		tmpl:  template.Must(template.New("assistant").Parse(fragmentTemplates)),
	}
}

type categoryColor struct {
	bg   string
	text string
}

var categoryColors = map[string]categoryColor{
	"training":     {"#10b981", "white"},
	"workshop":     {"#3b82f6", "white"},
	"meeting":      {"#8b5cf6", "white"},
	"consultation": {"#f59e0b", "white"},
	"review":       {"#6366f1", "white"},
	"azure":        {"#0078d4", "white"},
	"python":       {"#3776ab", "white"},
}

var defaultCategoryColor = categoryColor{"#6b7280", "white"}

type detailCardData struct {
	Gradient     template.CSS
	Icon         string
	Heading      string
	Session      string
	DateLabel    string
	TimeRowLabel string
	TimeLabel    string
	Category     string
	Client       string
	Note         string
}

type errorCardData struct {
	Icon    string
	Heading string
	Message string
}

type deletedItem struct {
	Title string
	Date  string
}

type deleteCardData struct {
	Count int
	Items []deletedItem
}

type bookingRow struct {
	Title         string
	RowStyle      template.CSS
	DateStyle     template.CSS
	Date          string
	Time          string
	Duration      string
	Client        string
	Category      string
	CategoryStyle template.CSS
}

type scheduleData struct {
	RangeLabel string
	Empty      bool
	Rows       []bookingRow
}

func (r *Renderer) render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := r.tmpl.ExecuteTemplate(&sb, name, data); err != nil {
		return "", errors.Wrapf(err, "failed to render %s", name)
	}
	return sb.String(), nil
}

// RenderCreateResult renders the booking confirmation card, or a failure card
// with the result's message.
func (r *Renderer) RenderCreateResult(result *CreateResult) (string, error) {
	if !result.Success || result.Booking == nil {
		msg := result.Message
		if msg == "" {
			msg = "Unable to create booking. Please try again."
		}
		return r.render("errorCard", errorCardData{Icon: "❌", Heading: "Booking Failed", Message: msg})
	}

	b := result.Booking
	start, end := b.ParseStartTime(), b.ParseEndTime()
	return r.render("detailCard", detailCardData{
		Gradient:     "linear-gradient(135deg, #10b981 0%, #059669 100%)",
		Icon:         "✅",
		Heading:      "Booking Confirmed!",
		Session:      b.Title,
		DateLabel:    start.Format("Monday, January 2, 2006"),
		TimeRowLabel: "Time",
		TimeLabel:    fmt.Sprintf("%s - %s", start.Format("3:04 PM"), end.Format("3:04 PM")),
		Category:     b.Category,
		Client:       b.ClientName,
	})
}

// RenderUpdateResult renders the updated booking card, or a failure card. The
// disambiguation note is shown inside the card when several bookings matched.
func (r *Renderer) RenderUpdateResult(result *UpdateResult) (string, error) {
	if !result.Success || result.Booking == nil {
		msg := result.Message
		if msg == "" {
			msg = "Unable to update booking. Please try again."
		}
		return r.render("errorCard", errorCardData{Icon: "❌", Heading: "Update Failed", Message: msg})
	}

	b := result.Booking
	start, end := b.ParseStartTime(), b.ParseEndTime()
	return r.render("detailCard", detailCardData{
		Gradient:     "linear-gradient(135deg, #8b5cf6 0%, #7c3aed 100%)",
		Icon:         "✏️",
		Heading:      "Booking Updated!",
		Session:      b.Title,
		DateLabel:    start.Format("Monday, January 2, 2006"),
		TimeRowLabel: "New Time",
		TimeLabel:    fmt.Sprintf("%s - %s", start.Format("3:04 PM"), end.Format("3:04 PM")),
		Category:     b.Category,
		Client:       b.ClientName,
		Note:         result.Note,
	})
}

// RenderDeleteResult renders the deleted-bookings card, the informational
// no-bookings card, or a failure card.
func (r *Renderer) RenderDeleteResult(result *DeleteResult) (string, error) {
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "Unable to delete bookings. Please try again."
		}
		return r.render("errorCard", errorCardData{Icon: "❌", Heading: "Delete Failed", Message: msg})
	}
	if result.DeletedCount == 0 {
		return r.render("infoCard", errorCardData{
			Icon:    "ℹ️",
			Heading: "No Bookings Found",
			Message: "No bookings found to delete for the specified date.",
		})
	}

	data := deleteCardData{Count: result.DeletedCount}
	for _, b := range result.Deleted {
		data.Items = append(data.Items, deletedItem{
			Title: b.Title,
			Date:  b.ParseStartTime().Format("1/2/2006"),
		})
	}
	return r.render("deleteCard", data)
}

// RenderQueryResult renders the schedule header plus the bookings table. Rows
// are colored by whether the session is past, today, or future relative to
// the renderer's clock.
func (r *Renderer) RenderQueryResult(result *QueryResult) (string, error) {
	if !result.Success {
		return r.RenderSystemError()
	}

	label := result.RangeStart.Format("January 2006")
	if result.SingleDay {
		label = result.RangeStart.Format("Monday, January 2, 2006")
	}

	now := r.clock.Now()
	today := clock.StartOfDay(now)
	data := scheduleData{RangeLabel: label, Empty: len(result.Bookings) == 0}
	for i, b := range result.Bookings {
		data.Rows = append(data.Rows, r.bookingRow(b, i, now, today))
	}
	return r.render("schedule", data)
}

func (r *Renderer) bookingRow(b *store.Booking, index int, now, today time.Time) bookingRow {
	start := b.ParseStartTime()

	rowBg := "white"
	if index%2 == 0 {
		rowBg = "#f8fafc"
	}

	dateStyle := "color: #4a5568;"
	switch {
	case clock.StartOfDay(start).Equal(today):
		dateStyle = "color: #059669; font-weight: 600;"
	case start.Before(now):
		dateStyle = "color: #6b7280;"
	case start.After(now):
		dateStyle = "color: #3b82f6;"
	}

	category := b.Category
	if category == "" {
		category = "General"
	}
	color, ok := categoryColors[strings.ToLower(b.Category)]
	if !ok {
		color = defaultCategoryColor
	}

	client := b.ClientName
	if client == "" {
		client = "N/A"
	}

	hours := float64(b.Duration()) / float64(time.Hour)
	hours = float64(int(hours*10+0.5)) / 10

	return bookingRow{
		Title:         b.Title,
		RowStyle:      template.CSS(fmt.Sprintf("background: %s; border-bottom: 1px solid #e2e8f0;", rowBg)),
		DateStyle:     template.CSS(dateStyle),
		Date:          start.Format("Mon, Jan 2"),
		Time:          start.Format("3:04 PM"),
		Duration:      strconv.FormatFloat(hours, 'f', -1, 64) + "h",
		Client:        client,
		Category:      category,
		CategoryStyle: template.CSS(fmt.Sprintf("background: %s; color: %s;", color.bg, color.text)),
	}
}

// RenderHelp renders the capability overview shown for general intent.
func (r *Renderer) RenderHelp() (string, error) {
	return r.render("helpCard", nil)
}

// RenderSystemError renders the generic failure fragment sent with a 500.
func (r *Renderer) RenderSystemError() (string, error) {
	return r.render("errorCard", errorCardData{
		Icon:    "⚠️",
		Heading: "System Error",
		Message: "I encountered an error processing your request. Please try again.",
	})
}

const fragmentTemplates = `
{{define "detailCard"}}
<div style="background: {{.Gradient}}; color: white; padding: 20px; border-radius: 12px; margin: 16px 0;">
  <div style="display: flex; align-items: center; margin-bottom: 12px;">
    <span style="font-size: 24px; margin-right: 12px;">{{.Icon}}</span>
    <h3 style="margin: 0; font-size: 18px; font-weight: 700;">{{.Heading}}</h3>
  </div>
  <div style="background: rgba(255,255,255,0.1); padding: 16px; border-radius: 8px;">
    <p style="margin: 0 0 8px 0;"><strong>📚 Session:</strong> {{.Session}}</p>
    <p style="margin: 0 0 8px 0;"><strong>📅 Date:</strong> {{.DateLabel}}</p>
    <p style="margin: 0 0 8px 0;"><strong>⏰ {{.TimeRowLabel}}:</strong> {{.TimeLabel}}</p>
    <p style="margin: 0 0 8px 0;"><strong>🏷️ Category:</strong> {{.Category}}</p>
    <p style="margin: 0;"><strong>👤 Client:</strong> {{.Client}}</p>
  </div>
  {{if .Note}}<p style="margin: 12px 0 0 0; font-size: 13px;">{{.Note}}</p>{{end}}
</div>
{{end}}

{{define "errorCard"}}
<div style="background: linear-gradient(135deg, #ef4444 0%, #dc2626 100%); color: white; padding: 20px; border-radius: 12px; margin: 16px 0;">
  <div style="display: flex; align-items: center; margin-bottom: 12px;">
    <span style="font-size: 24px; margin-right: 12px;">{{.Icon}}</span>
    <h3 style="margin: 0; font-size: 18px; font-weight: 700;">{{.Heading}}</h3>
  </div>
  <p style="margin: 0;">{{.Message}}</p>
</div>
{{end}}

{{define "infoCard"}}
<div style="background: linear-gradient(135deg, #6b7280 0%, #4b5563 100%); color: white; padding: 20px; border-radius: 12px; margin: 16px 0;">
  <div style="display: flex; align-items: center; margin-bottom: 12px;">
    <span style="font-size: 24px; margin-right: 12px;">{{.Icon}}</span>
    <h3 style="margin: 0; font-size: 18px; font-weight: 700;">{{.Heading}}</h3>
  </div>
  <p style="margin: 0;">{{.Message}}</p>
</div>
{{end}}

{{define "deleteCard"}}
<div style="background: linear-gradient(135deg, #f59e0b 0%, #d97706 100%); color: white; padding: 20px; border-radius: 12px; margin: 16px 0;">
  <div style="display: flex; align-items: center; margin-bottom: 12px;">
    <span style="font-size: 24px; margin-right: 12px;">🗑️</span>
    <h3 style="margin: 0; font-size: 18px; font-weight: 700;">Bookings Deleted</h3>
  </div>
  <p style="margin: 0 0 12px 0;">Successfully deleted {{.Count}} booking(s):</p>
  <ul style="margin: 0; padding-left: 20px;">
    {{range .Items}}<li style="margin: 4px 0;">📚 {{.Title}} - {{.Date}}</li>{{end}}
  </ul>
</div>
{{end}}

{{define "schedule"}}
<div style="margin: 16px 0;">
  <div style="background: linear-gradient(135deg, #3b82f6 0%, #1d4ed8 100%); color: white; padding: 16px; border-radius: 12px 12px 0 0;">
    <div style="display: flex; align-items: center;">
      <span style="font-size: 20px; margin-right: 12px;">📊</span>
      <h3 style="margin: 0; font-size: 16px; font-weight: 700;">Your Schedule{{if .RangeLabel}} - {{.RangeLabel}}{{end}}</h3>
    </div>
  </div>
  {{if .Empty}}
  <div style="text-align: center; padding: 20px; color: #666; font-style: italic;">No bookings found{{if .RangeLabel}} for {{.RangeLabel}}{{end}}.</div>
  {{else}}
  <div style="margin: 20px 0;">
    <table style="width: 100%; border-collapse: collapse; background: white; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.15);">
      <thead>
        <tr style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white;">
          <th style="padding: 16px; text-align: left; font-weight: 700; font-size: 14px;">📚 Session Name</th>
          <th style="padding: 16px; text-align: left; font-weight: 700; font-size: 14px;">📅 Date</th>
          <th style="padding: 16px; text-align: left; font-weight: 700; font-size: 14px;">⏰ Time</th>
          <th style="padding: 16px; text-align: left; font-weight: 700; font-size: 14px;">⏱️ Duration</th>
          <th style="padding: 16px; text-align: left; font-weight: 700; font-size: 14px;">👤 Client</th>
          <th style="padding: 16px; text-align: left; font-weight: 700; font-size: 14px;">🏷️ Category</th>
        </tr>
      </thead>
      <tbody>
        {{range .Rows}}
        <tr style="{{.RowStyle}}">
          <td style="padding: 14px; font-weight: 600; color: #2d3748;">{{.Title}}</td>
          <td style="padding: 14px; {{.DateStyle}}">{{.Date}}</td>
          <td style="padding: 14px; color: #4a5568; font-family: monospace;">{{.Time}}</td>
          <td style="padding: 14px; color: #4a5568;">{{.Duration}}</td>
          <td style="padding: 14px; color: #4a5568;">{{.Client}}</td>
          <td style="padding: 14px;"><span style="{{.CategoryStyle}} padding: 4px 12px; border-radius: 20px; font-size: 12px; font-weight: 600;">{{.Category}}</span></td>
        </tr>
        {{end}}
      </tbody>
    </table>
  </div>
  {{end}}
</div>
{{end}}

{{define "helpCard"}}
<div style="background: linear-gradient(135deg, #6366f1 0%, #4f46e5 100%); color: white; padding: 20px; border-radius: 12px; margin: 16px 0;">
  <div style="display: flex; align-items: center; margin-bottom: 12px;">
    <span style="font-size: 24px; margin-right: 12px;">🤖</span>
    <h3 style="margin: 0; font-size: 18px; font-weight: 700;">Schedula Assistant</h3>
  </div>
  <p style="margin: 0 0 12px 0;">I can help you manage your calendar! Here's what I can do:</p>
  <ul style="margin: 0; padding-left: 20px;">
    <li style="margin: 4px 0;">📅 <strong>Book sessions:</strong> "Book a training session tomorrow at 2 PM"</li>
    <li style="margin: 4px 0;">🔍 <strong>View schedule:</strong> "Show me my bookings for today"</li>
    <li style="margin: 4px 0;">✏️ <strong>Update bookings:</strong> "Change tomorrow's session to 3 PM"</li>
    <li style="margin: 4px 0;">🗑️ <strong>Delete bookings:</strong> "Cancel my session on July 10"</li>
  </ul>
</div>
{{end}}
`
