package calendar

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleProvider talks to the Google Calendar v3 API.
type GoogleProvider struct {
	svc *gcal.Service
	loc *time.Location // zone for all-day events that carry no time zone
}

// NewGoogleProvider authenticates with a service account key file.
func NewGoogleProvider(ctx context.Context, credentialsPath string, loc *time.Location) (*GoogleProvider, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("google calendar credentials path is not set")
	}
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return NewGoogleProviderWithService(svc, loc), nil
}

// NewGoogleProviderWithService wraps an already configured service.
func NewGoogleProviderWithService(svc *gcal.Service, loc *time.Location) *GoogleProvider {
	if loc == nil {
		loc = time.UTC
	}
	return &GoogleProvider{svc: svc, loc: loc}
}

// List returns the single (expanded) events between timeMin and timeMax.
func (p *GoogleProvider) List(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error) {
	events, err := p.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	out := make([]Event, 0, len(events.Items))
	for _, item := range events.Items {
		out = append(out, p.toEvent(item))
	}
	return out, nil
}

// Insert creates the event and returns it with its provider id.
func (p *GoogleProvider) Insert(ctx context.Context, calendarID string, event Event) (Event, error) {
	created, err := p.svc.Events.Insert(calendarID, &gcal.Event{
		Summary: event.Summary,
		Start:   toEventDateTime(event.Start, event.TimeZone),
		End:     toEventDateTime(event.End, event.TimeZone),
	}).Context(ctx).Do()
	if err != nil {
		return Event{}, err
	}
	return p.toEvent(created), nil
}

// Delete removes an event by id.
func (p *GoogleProvider) Delete(ctx context.Context, calendarID, eventID string) error {
	return p.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
}

// Update overwrites the time window of an existing event. Every other
// field of the stored event is sent back untouched.
func (p *GoogleProvider) Update(ctx context.Context, calendarID, eventID string, event Event) (Event, error) {
	existing, err := p.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return Event{}, fmt.Errorf("failed to get existing event: %w", err)
	}
	if event.Summary != "" {
		existing.Summary = event.Summary
	}
	existing.Start = toEventDateTime(event.Start, event.TimeZone)
	existing.End = toEventDateTime(event.End, event.TimeZone)

	updated, err := p.svc.Events.Update(calendarID, eventID, existing).Context(ctx).Do()
	if err != nil {
		return Event{}, err
	}
	return p.toEvent(updated), nil
}

func toEventDateTime(t time.Time, tz string) *gcal.EventDateTime {
	return &gcal.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: tz,
	}
}

func (p *GoogleProvider) toEvent(item *gcal.Event) Event {
	if item == nil {
		return Event{}
	}
	e := Event{ID: item.Id, Summary: item.Summary}
	if item.Start != nil {
		e.Start = p.parseDateTime(item.Start)
		e.TimeZone = item.Start.TimeZone
		e.AllDay = item.Start.DateTime == ""
	}
	if item.End != nil {
		e.End = p.parseDateTime(item.End)
	}
	return e
}

func (p *GoogleProvider) parseDateTime(dt *gcal.EventDateTime) time.Time {
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err == nil {
			return t
		}
	}
	loc := p.loc
	if dt.TimeZone != "" {
		if l, err := time.LoadLocation(dt.TimeZone); err == nil {
			loc = l
		}
	}
	if dt.Date != "" {
		t, err := time.ParseInLocation(DateLayout, dt.Date, loc)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}
