package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Event is a calendar entry as seen by the assistant.
type Event struct {
	ID       string
	Summary  string
	Start    time.Time
	End      time.Time
	TimeZone string
	// AllDay events carry a date but no time of day.
	AllDay bool
}

// Overlaps reports whether the half-open intervals [e.Start, e.End) and
// [start, end) intersect.
func (e Event) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && start.Before(e.End)
}

// Provider is the calendar backend the Client talks to.
type Provider interface {
	List(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error)
	Insert(ctx context.Context, calendarID string, event Event) (Event, error)
	Delete(ctx context.Context, calendarID, eventID string) error
	Update(ctx context.Context, calendarID, eventID string, event Event) (Event, error)
}

// ErrNotFound is returned when no event matches a delete or reschedule request.
var ErrNotFound = errors.New("no matching event")

// ProviderError wraps a backend rejection.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
