package calendar

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

const propTimeZone = ical.ComponentProperty("X-TAILORTALK-TZID")

// ICSProvider keeps events in a local iCalendar file. It serves offline
// development and demos; the calendar id is ignored.
type ICSProvider struct {
	path string
	mu   sync.Mutex
}

// NewICSProvider returns a provider backed by path. The file is created on
// the first write.
func NewICSProvider(path string) *ICSProvider {
	return &ICSProvider{path: path}
}

// List returns the events overlapping [timeMin, timeMax] ordered by start.
func (p *ICSProvider) List(_ context.Context, _ string, timeMin, timeMax time.Time) ([]Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	events, err := p.load()
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.End.After(timeMin) && e.Start.Before(timeMax) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// Insert stores the event under a fresh UID.
func (p *ICSProvider) Insert(_ context.Context, _ string, event Event) (Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	events, err := p.load()
	if err != nil {
		return Event{}, err
	}
	event.ID = uuid.NewString()
	if err := p.save(append(events, event)); err != nil {
		return Event{}, err
	}
	return event, nil
}

// Delete removes the event with eventID.
func (p *ICSProvider) Delete(_ context.Context, _ string, eventID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	events, err := p.load()
	if err != nil {
		return err
	}
	for i, e := range events {
		if e.ID == eventID {
			return p.save(append(events[:i], events[i+1:]...))
		}
	}
	return fmt.Errorf("event %s not found", eventID)
}

// Update replaces the stored event with eventID.
func (p *ICSProvider) Update(_ context.Context, _ string, eventID string, event Event) (Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	events, err := p.load()
	if err != nil {
		return Event{}, err
	}
	for i, e := range events {
		if e.ID != eventID {
			continue
		}
		event.ID = eventID
		if event.Summary == "" {
			event.Summary = e.Summary
		}
		events[i] = event
		return event, p.save(events)
	}
	return Event{}, fmt.Errorf("event %s not found", eventID)
}

func (p *ICSProvider) load() ([]Event, error) {
	f, err := os.Open(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cal, err := ical.ParseCalendar(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.path, err)
	}

	events := make([]Event, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		e := Event{ID: ve.Id()}
		if prop := ve.GetProperty(ical.ComponentPropertySummary); prop != nil {
			e.Summary = prop.Value
		}
		if e.Start, err = ve.GetStartAt(); err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		if e.End, err = ve.GetEndAt(); err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		if prop := ve.GetProperty(propTimeZone); prop != nil {
			e.TimeZone = prop.Value
			if loc, err := time.LoadLocation(prop.Value); err == nil {
				e.Start, e.End = e.Start.In(loc), e.End.In(loc)
			}
		}
		events = append(events, e)
	}
	return events, nil
}

func (p *ICSProvider) save(events []Event) error {
	cal := ical.NewCalendar()
	cal.SetProductId("-//tailortalk//calendar//EN")
	cal.SetMethod(ical.MethodPublish)
	now := time.Now()
	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(now)
		ve.SetSummary(e.Summary)
		ve.SetStartAt(e.Start)
		ve.SetEndAt(e.End)
		if e.TimeZone != "" {
			ve.SetProperty(propTimeZone, e.TimeZone)
		}
	}

	if dir := filepath.Dir(p.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strings.TrimSpace(cal.Serialize())+"\r\n"), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p.path)
}
