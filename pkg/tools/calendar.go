package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comigor/tailortalk/internal/calendar"
	"github.com/comigor/tailortalk/internal/logger"
)

// Calendar is the subset of calendar.Client the tools need.
type Calendar interface {
	ListEvents(ctx context.Context, date string) ([]calendar.Event, error)
	InsertEvent(ctx context.Context, summary, date, startTime, endTime string) (calendar.Event, error)
	DeleteEvent(ctx context.Context, summary, date, at string) (calendar.Event, error)
	RescheduleEvent(ctx context.Context, summary, oldDate, newDate, newStart, newEnd string) (calendar.Event, error)
	At(date, clock string) (time.Time, error)
	FormatStart(e calendar.Event) string
}

// NewCalendarRegistry returns a registry with the four calendar tools.
func NewCalendarRegistry(cal Calendar) *Registry {
	return NewRegistry(
		&CheckAvailabilityTool{cal: cal},
		&BookEventTool{cal: cal},
		&DeleteEventTool{cal: cal},
		&RescheduleEventTool{cal: cal},
	)
}

// CheckAvailabilityTool lists the events of a day.
type CheckAvailabilityTool struct {
	cal Calendar
}

func (t *CheckAvailabilityTool) Name() Name     { return CheckAvailability }
func (t *CheckAvailabilityTool) Format() string { return "Date" }
func (t *CheckAvailabilityTool) Description() string {
	return "Check events on a date (YYYY-MM-DD)"
}

// Run lists the events on the date in args.
func (t *CheckAvailabilityTool) Run(ctx context.Context, args string) (string, error) {
	date := strings.TrimSpace(args)
	logger.L.Debug("tool called", "tool", CheckAvailability, "args", args)

	events, err := t.cal.ListEvents(ctx, date)
	if err != nil {
		return fmt.Sprintf("❌ Could not check availability: %v", err), nil
	}
	if len(events) == 0 {
		return fmt.Sprintf("No events on %s.", date), nil
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, fmt.Sprintf("- %s at %s", e.Summary, t.cal.FormatStart(e)))
	}
	return strings.Join(lines, "\n"), nil
}

// BookEventTool creates an event unless it would overlap an existing one.
type BookEventTool struct {
	cal Calendar
}

func (t *BookEventTool) Name() Name     { return BookEvent }
func (t *BookEventTool) Format() string { return "Summary,Date,StartTime,EndTime" }
func (t *BookEventTool) Description() string {
	return "Book event with info: Summary,Date,StartTime,EndTime"
}

// Run books the event described by args. Every failure, including malformed
// input, becomes a "Booking failed" message.
func (t *BookEventTool) Run(ctx context.Context, args string) (string, error) {
	logger.L.Debug("tool called", "tool", BookEvent, "args", args)
	msg, err := t.book(ctx, args)
	if err != nil {
		logger.L.Warn("booking failed", "args", args, "error", err)
		return fmt.Sprintf("❌ Booking failed: %v", err), nil
	}
	return msg, nil
}

func (t *BookEventTool) book(ctx context.Context, args string) (string, error) {
	fields := SplitArgs(args)
	if len(fields) != 4 {
		return "", fmt.Errorf("expected %s, got %d fields", t.Format(), len(fields))
	}
	summary, date, start, end := fields[0], fields[1], fields[2], fields[3]

	startAt, err := t.cal.At(date, start)
	if err != nil {
		return "", err
	}
	endAt, err := t.cal.At(date, end)
	if err != nil {
		return "", err
	}
	if !startAt.Before(endAt) {
		return "", fmt.Errorf("end time %s must be after start time %s", end, start)
	}

	events, err := t.cal.ListEvents(ctx, date)
	if err != nil {
		return "", err
	}
	for _, e := range events {
		// All-day entries (holidays, reminders) do not block the day.
		if e.AllDay {
			continue
		}
		if e.Overlaps(startAt, endAt) {
			return fmt.Sprintf("⚠️ Cannot book '%s' from %s to %s on %s because it overlaps with '%s'.",
				summary, start, end, date, e.Summary), nil
		}
	}

	if _, err := t.cal.InsertEvent(ctx, summary, date, start, end); err != nil {
		return "", err
	}
	return fmt.Sprintf("📅 Booked: '%s' from %s to %s on %s.", summary, start, end, date), nil
}

// DeleteEventTool removes an event matched by summary substring.
type DeleteEventTool struct {
	cal Calendar
}

func (t *DeleteEventTool) Name() Name     { return DeleteEvent }
func (t *DeleteEventTool) Format() string { return "Summary,Date[,Time]" }
func (t *DeleteEventTool) Description() string {
	return "Delete event with info: Summary,Date,Time"
}

// Run deletes the event described by args.
func (t *DeleteEventTool) Run(ctx context.Context, args string) (string, error) {
	logger.L.Debug("tool called", "tool", DeleteEvent, "args", args)
	fields := SplitArgs(args)

	var summary, date, at string
	switch len(fields) {
	case 3:
		summary, date, at = fields[0], fields[1], fields[2]
	case 2:
		summary, date = fields[0], fields[1]
	default:
		return "❌ Invalid delete format. Use: Summary,Date[,Time]", nil
	}

	_, err := t.cal.DeleteEvent(ctx, summary, date, at)
	switch {
	case errors.Is(err, calendar.ErrNotFound):
		if at == "" {
			at = "[any]"
		}
		return fmt.Sprintf("❌ No matching event '%s' found on %s with time %s.", summary, date, at), nil
	case err != nil:
		return fmt.Sprintf("❌ Delete failed: %v", err), nil
	}
	return fmt.Sprintf("✅ Event '%s' deleted on %s.", summary, date), nil
}

// RescheduleEventTool moves an event matched by exact summary.
type RescheduleEventTool struct {
	cal Calendar
}

func (t *RescheduleEventTool) Name() Name     { return RescheduleEvent }
func (t *RescheduleEventTool) Format() string { return "Summary,OldDate,NewDate,StartTime,EndTime" }
func (t *RescheduleEventTool) Description() string {
	return "Reschedule an event with info: Summary,OldDate,NewDate,StartTime,EndTime"
}

// Run reschedules the event described by args.
func (t *RescheduleEventTool) Run(ctx context.Context, args string) (string, error) {
	logger.L.Debug("tool called", "tool", RescheduleEvent, "args", args)
	fields := SplitArgs(args)
	if len(fields) != 5 {
		return "❌ Invalid reschedule format. Use: " + t.Format(), nil
	}
	summary, oldDate, newDate, start, end := fields[0], fields[1], fields[2], fields[3], fields[4]

	_, err := t.cal.RescheduleEvent(ctx, summary, oldDate, newDate, start, end)
	switch {
	case errors.Is(err, calendar.ErrNotFound):
		return fmt.Sprintf("No matching event titled '%s' found on %s.", summary, oldDate), nil
	case err != nil:
		return fmt.Sprintf("❌ Reschedule failed: %v", err), nil
	}
	return fmt.Sprintf("Rescheduled '%s' to %s from %s to %s", summary, newDate, start, end), nil
}
