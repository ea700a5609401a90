package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comigor/tailortalk/internal/logger"
)

// DateLayout is the YYYY-MM-DD format tools exchange dates in.
const DateLayout = "2006-01-02"

// DefaultTimeZone is used when no zone is configured.
const DefaultTimeZone = "Asia/Kolkata"

var clockLayouts = []string{"15:04", "15:04:05"}

// Client executes day-scoped calendar operations against one calendar.
type Client struct {
	provider   Provider
	calendarID string
	tz         string
	loc        *time.Location
}

// NewClient binds a provider to a calendar id and a fixed time zone.
func NewClient(provider Provider, calendarID, timeZone string) (*Client, error) {
	if provider == nil {
		return nil, errors.New("calendar provider cannot be nil")
	}
	if timeZone == "" {
		timeZone = DefaultTimeZone
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", timeZone, err)
	}
	return &Client{provider: provider, calendarID: calendarID, tz: timeZone, loc: loc}, nil
}

// ParseDate parses a YYYY-MM-DD date at midnight in the client's zone.
func (c *Client) ParseDate(date string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return d, nil
}

// At combines a date with an HH:MM time of day in the client's zone.
func (c *Client) At(date, clock string) (time.Time, error) {
	d, err := c.ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	clock = strings.TrimSpace(clock)
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, clock)
		if err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, c.loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, expected HH:MM", clock)
}

// FormatStart renders an event start the way the calendar backend does.
func (c *Client) FormatStart(e Event) string {
	return e.Start.In(c.loc).Format(time.RFC3339)
}

// ListEvents returns the events starting within the calendar day of date,
// in provider order. A day without events yields an empty slice.
func (c *Client) ListEvents(ctx context.Context, date string) ([]Event, error) {
	day, err := c.ParseDate(date)
	if err != nil {
		return nil, err
	}
	timeMin := day
	timeMax := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, c.loc)

	items, err := c.provider.List(ctx, c.calendarID, timeMin, timeMax)
	if err != nil {
		return nil, &ProviderError{Op: "list events", Err: err}
	}

	events := make([]Event, 0, len(items))
	for _, e := range items {
		if e.Start.Before(timeMin) || e.Start.After(timeMax) {
			continue
		}
		events = append(events, e)
	}
	logger.L.Debug("listed events", "date", date, "count", len(events))
	return events, nil
}

// InsertEvent books summary on date between the two times of day.
func (c *Client) InsertEvent(ctx context.Context, summary, date, startTime, endTime string) (Event, error) {
	start, end, err := c.window(date, startTime, endTime)
	if err != nil {
		return Event{}, err
	}
	created, err := c.provider.Insert(ctx, c.calendarID, Event{
		Summary:  summary,
		Start:    start,
		End:      end,
		TimeZone: c.tz,
	})
	if err != nil {
		return Event{}, &ProviderError{Op: "insert event", Err: err}
	}
	logger.L.Info("event created", "id", created.ID, "summary", summary, "date", date)
	return created, nil
}

// DeleteEvent removes the first event on date whose summary contains
// summary, ignoring case. When at is set the event's start timestamp must
// also contain it.
func (c *Client) DeleteEvent(ctx context.Context, summary, date, at string) (Event, error) {
	events, err := c.ListEvents(ctx, date)
	if err != nil {
		return Event{}, err
	}
	needle := strings.ToLower(summary)
	for _, e := range events {
		if !strings.Contains(strings.ToLower(e.Summary), needle) {
			continue
		}
		if at != "" && !strings.Contains(c.FormatStart(e), at) {
			continue
		}
		if err := c.provider.Delete(ctx, c.calendarID, e.ID); err != nil {
			return Event{}, &ProviderError{Op: "delete event", Err: err}
		}
		logger.L.Info("event deleted", "id", e.ID, "summary", e.Summary, "date", date)
		return e, nil
	}
	return Event{}, ErrNotFound
}

// RescheduleEvent moves the first event on oldDate whose summary equals
// summary, ignoring case, to newDate between the given times.
func (c *Client) RescheduleEvent(ctx context.Context, summary, oldDate, newDate, newStart, newEnd string) (Event, error) {
	start, end, err := c.window(newDate, newStart, newEnd)
	if err != nil {
		return Event{}, err
	}
	events, err := c.ListEvents(ctx, oldDate)
	if err != nil {
		return Event{}, err
	}
	for _, e := range events {
		if !strings.EqualFold(e.Summary, summary) {
			continue
		}
		e.Start, e.End, e.TimeZone = start, end, c.tz
		updated, err := c.provider.Update(ctx, c.calendarID, e.ID, e)
		if err != nil {
			return Event{}, &ProviderError{Op: "update event", Err: err}
		}
		logger.L.Info("event rescheduled", "id", e.ID, "summary", e.Summary, "from", oldDate, "to", newDate)
		return updated, nil
	}
	return Event{}, ErrNotFound
}

func (c *Client) window(date, startTime, endTime string) (time.Time, time.Time, error) {
	start, err := c.At(date, startTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := c.At(date, endTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("end time %s must be after start time %s", endTime, startTime)
	}
	return start, end, nil
}
