package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comigor/tailortalk/internal/calendar"
)

type memProvider struct {
	events  []calendar.Event
	inserts []calendar.Event
	deletes []string
	updates []calendar.Event
	listErr error
}

func (m *memProvider) List(_ context.Context, _ string, timeMin, timeMax time.Time) ([]calendar.Event, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []calendar.Event
	for _, e := range m.events {
		if e.End.After(timeMin) && e.Start.Before(timeMax) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memProvider) Insert(_ context.Context, _ string, e calendar.Event) (calendar.Event, error) {
	e.ID = fmt.Sprintf("evt-%d", len(m.inserts)+1)
	m.inserts = append(m.inserts, e)
	m.events = append(m.events, e)
	return e, nil
}

func (m *memProvider) Delete(_ context.Context, _ string, id string) error {
	m.deletes = append(m.deletes, id)
	for i, e := range m.events {
		if e.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return nil
		}
	}
	return errors.New("gone")
}

func (m *memProvider) Update(_ context.Context, _ string, id string, e calendar.Event) (calendar.Event, error) {
	m.updates = append(m.updates, e)
	for i := range m.events {
		if m.events[i].ID == id {
			m.events[i] = e
			return e, nil
		}
	}
	return calendar.Event{}, errors.New("gone")
}

func newCalendar(t *testing.T, p *memProvider) *calendar.Client {
	t.Helper()
	c, err := calendar.NewClient(p, "primary", "Asia/Kolkata")
	require.NoError(t, err)
	return c
}

func seed(t *testing.T, c *calendar.Client, p *memProvider, id, summary, date, start, end string) {
	t.Helper()
	s, err := c.At(date, start)
	require.NoError(t, err)
	e, err := c.At(date, end)
	require.NoError(t, err)
	p.events = append(p.events, calendar.Event{ID: id, Summary: summary, Start: s, End: e, TimeZone: "Asia/Kolkata"})
}

func run(t *testing.T, tool Tool, args string) string {
	t.Helper()
	out, err := tool.Run(context.Background(), args)
	require.NoError(t, err)
	return out
}

func TestCheckAvailability(t *testing.T) {
	p := &memProvider{}
	c := newCalendar(t, p)
	tool := &CheckAvailabilityTool{cal: c}

	require.Equal(t, "No events on 2025-07-06.", run(t, tool, "2025-07-06"))

	seed(t, c, p, "a", "Team Sync", "2025-07-06", "11:00", "12:00")
	seed(t, c, p, "b", "Lunch", "2025-07-06", "13:00", "14:00")
	require.Equal(t,
		"- Team Sync at 2025-07-06T11:00:00+05:30\n- Lunch at 2025-07-06T13:00:00+05:30",
		run(t, tool, " 2025-07-06 "))
}

func TestCheckAvailability_Errors(t *testing.T) {
	p := &memProvider{listErr: errors.New("backend down")}
	tool := &CheckAvailabilityTool{cal: newCalendar(t, p)}

	out := run(t, tool, "2025-07-06")
	require.Contains(t, out, "❌ Could not check availability:")
	require.Contains(t, out, "backend down")

	out = run(t, tool, "tomorrow")
	require.Contains(t, out, "❌ Could not check availability:")
}

func TestBookEvent(t *testing.T) {
	p := &memProvider{}
	tool := &BookEventTool{cal: newCalendar(t, p)}

	out := run(t, tool, "Team Sync,2025-07-06,11:00,12:00")
	require.Equal(t, "📅 Booked: 'Team Sync' from 11:00 to 12:00 on 2025-07-06.", out)
	require.Len(t, p.inserts, 1)
	require.Equal(t, "Team Sync", p.inserts[0].Summary)
	require.Equal(t, "2025-07-06T11:00:00+05:30", p.inserts[0].Start.Format(time.RFC3339))
	require.Equal(t, "Asia/Kolkata", p.inserts[0].TimeZone)
}

func TestBookEvent_Conflict(t *testing.T) {
	p := &memProvider{}
	c := newCalendar(t, p)
	seed(t, c, p, "a", "Standup", "2025-07-06", "11:30", "12:30")
	tool := &BookEventTool{cal: c}

	out := run(t, tool, "Team Sync,2025-07-06,11:00,12:00")
	require.Equal(t,
		"⚠️ Cannot book 'Team Sync' from 11:00 to 12:00 on 2025-07-06 because it overlaps with 'Standup'.", out)
	require.Empty(t, p.inserts)
}

func TestBookEvent_AdjacentIsNotConflict(t *testing.T) {
	p := &memProvider{}
	c := newCalendar(t, p)
	seed(t, c, p, "a", "Standup", "2025-07-06", "10:00", "11:00")
	tool := &BookEventTool{cal: c}

	out := run(t, tool, "Team Sync,2025-07-06,11:00,12:00")
	require.Contains(t, out, "📅 Booked:")
	require.Len(t, p.inserts, 1)
}

func TestBookEvent_AllDayIsNotConflict(t *testing.T) {
	p := &memProvider{}
	c := newCalendar(t, p)
	day, err := c.At("2025-07-06", "00:00")
	require.NoError(t, err)
	p.events = append(p.events, calendar.Event{
		ID:      "holiday",
		Summary: "Company Holiday",
		Start:   day,
		End:     day.AddDate(0, 0, 1),
		AllDay:  true,
	})
	tool := &BookEventTool{cal: c}

	out := run(t, tool, "Team Sync,2025-07-06,11:00,12:00")
	require.Equal(t, "📅 Booked: 'Team Sync' from 11:00 to 12:00 on 2025-07-06.", out)
	require.Len(t, p.inserts, 1)

	// The all-day entry is still listed.
	out = run(t, &CheckAvailabilityTool{cal: c}, "2025-07-06")
	require.Contains(t, out, "- Company Holiday at 2025-07-06T00:00:00+05:30")
}

func TestBookEvent_Failures(t *testing.T) {
	tests := []struct {
		name string
		args string
		want string
	}{
		{"too few fields", "Team Sync,2025-07-06,11:00", "expected Summary,Date,StartTime,EndTime, got 3 fields"},
		{"too many fields", "Team Sync,2025-07-06,11:00,12:00,extra", "got 5 fields"},
		{"bad date", "Team Sync,06/07/2025,11:00,12:00", "invalid date"},
		{"bad time", "Team Sync,2025-07-06,eleven,12:00", "invalid time"},
		{"end before start", "Team Sync,2025-07-06,12:00,11:00", "must be after start time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &memProvider{}
			out := run(t, &BookEventTool{cal: newCalendar(t, p)}, tt.args)
			require.Contains(t, out, "❌ Booking failed: ")
			require.Contains(t, out, tt.want)
			require.Empty(t, p.inserts)
		})
	}
}

func TestDeleteEvent(t *testing.T) {
	p := &memProvider{}
	c := newCalendar(t, p)
	seed(t, c, p, "a", "Weekly Team Sync", "2025-07-06", "11:00", "12:00")
	tool := &DeleteEventTool{cal: c}

	out := run(t, tool, "team sync,2025-07-06")
	require.Equal(t, "✅ Event 'team sync' deleted on 2025-07-06.", out)
	require.Equal(t, []string{"a"}, p.deletes)
}

func TestDeleteEvent_WithTime(t *testing.T) {
	p := &memProvider{}
	c := newCalendar(t, p)
	seed(t, c, p, "a", "Sync", "2025-07-06", "09:00", "10:00")
	seed(t, c, p, "b", "Sync", "2025-07-06", "15:00", "16:00")
	tool := &DeleteEventTool{cal: c}

	require.Contains(t, run(t, tool, "Sync,2025-07-06,15:00"), "✅")
	require.Equal(t, []string{"b"}, p.deletes)
}

func TestDeleteEvent_NotFound(t *testing.T) {
	p := &memProvider{}
	c := newCalendar(t, p)
	seed(t, c, p, "a", "Sync", "2025-07-06", "09:00", "10:00")
	tool := &DeleteEventTool{cal: c}

	require.Equal(t, "❌ No matching event 'Dentist' found on 2025-07-06 with time [any].",
		run(t, tool, "Dentist,2025-07-06"))
	require.Equal(t, "❌ No matching event 'Sync' found on 2025-07-06 with time 18:00.",
		run(t, tool, "Sync,2025-07-06,18:00"))
	require.Empty(t, p.deletes)
}

func TestDeleteEvent_InvalidFormat(t *testing.T) {
	p := &memProvider{}
	tool := &DeleteEventTool{cal: newCalendar(t, p)}

	require.Equal(t, "❌ Invalid delete format. Use: Summary,Date[,Time]", run(t, tool, "Sync"))
	require.Equal(t, "❌ Invalid delete format. Use: Summary,Date[,Time]", run(t, tool, "a,b,c,d"))
}

func TestDeleteEvent_ProviderError(t *testing.T) {
	p := &memProvider{listErr: errors.New("quota")}
	out := run(t, &DeleteEventTool{cal: newCalendar(t, p)}, "Sync,2025-07-06")
	require.Contains(t, out, "❌ Delete failed: ")
	require.Contains(t, out, "quota")
}

func TestRescheduleEvent(t *testing.T) {
	p := &memProvider{}
	c := newCalendar(t, p)
	seed(t, c, p, "a", "Team Sync", "2025-07-06", "11:00", "12:00")
	tool := &RescheduleEventTool{cal: c}

	out := run(t, tool, "team sync,2025-07-06,2025-07-07,14:00,15:00")
	require.Equal(t, "Rescheduled 'team sync' to 2025-07-07 from 14:00 to 15:00", out)
	require.Len(t, p.updates, 1)
	require.Equal(t, "2025-07-07T14:00:00+05:30", p.updates[0].Start.Format(time.RFC3339))

	check := &CheckAvailabilityTool{cal: c}
	require.Equal(t, "No events on 2025-07-06.", run(t, check, "2025-07-06"))
	require.Equal(t, "- Team Sync at 2025-07-07T14:00:00+05:30", run(t, check, "2025-07-07"))
}

func TestRescheduleEvent_RequiresExactSummary(t *testing.T) {
	p := &memProvider{}
	c := newCalendar(t, p)
	seed(t, c, p, "a", "Weekly Team Sync", "2025-07-06", "11:00", "12:00")
	tool := &RescheduleEventTool{cal: c}

	require.Equal(t, "No matching event titled 'Team Sync' found on 2025-07-06.",
		run(t, tool, "Team Sync,2025-07-06,2025-07-07,14:00,15:00"))
	require.Empty(t, p.updates)
}

func TestRescheduleEvent_Failures(t *testing.T) {
	p := &memProvider{}
	tool := &RescheduleEventTool{cal: newCalendar(t, p)}

	require.Equal(t, "❌ Invalid reschedule format. Use: Summary,OldDate,NewDate,StartTime,EndTime",
		run(t, tool, "Team Sync,2025-07-06,14:00,15:00"))

	out := run(t, tool, "Team Sync,2025-07-06,2025-07-07,15:00,14:00")
	require.Contains(t, out, "❌ Reschedule failed: ")

	p.listErr = errors.New("backend down")
	out = run(t, tool, "Team Sync,2025-07-06,2025-07-07,14:00,15:00")
	require.Contains(t, out, "❌ Reschedule failed: ")
	require.Contains(t, out, "backend down")
}
