package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/existflow/focusboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func ev(id, date, start, end string) model.CalendarEvent {
	return model.CalendarEvent{ID: id, Title: "Event " + id, Date: date, StartTime: start, EndTime: end, Status: model.StatusOnline}
}

func TestMergeRemote(t *testing.T) {
	local := []model.CalendarEvent{ev("a", "2025-01-01", "09:00", "10:00"), ev("b", "2025-01-01", "11:00", "12:00")}
	changed := ev("a", "2025-02-02", "13:00", "14:00")
	remote := []model.CalendarEvent{changed, ev("c", "2025-01-03", "08:00", "09:00"), ev("c", "2025-01-04", "08:00", "09:00")}

	merged := MergeRemote(local, remote)

	require.Len(t, merged, 3)
	assert.Equal(t, "2025-01-01", merged[0].Date, "local copy wins")
	assert.Equal(t, "b", merged[1].ID)
	assert.Equal(t, "c", merged[2].ID)
	assert.Equal(t, "2025-01-03", merged[2].Date)

	assert.Equal(t, merged, MergeRemote(merged, remote), "merge is idempotent")
}

func TestConversionRoundTrip(t *testing.T) {
	for _, zone := range []string{"UTC", "America/New_York", "Asia/Kolkata", "Pacific/Auckland"} {
		t.Run(zone, func(t *testing.T) {
			loc := mustLoc(t, zone)
			in := model.CalendarEvent{ID: "x", Title: "Review", Date: "2025-03-30", StartTime: "09:05", EndTime: "23:30", Status: model.StatusVideo}

			pe, err := ToProviderEvent(in, loc)
			require.NoError(t, err)
			assert.Equal(t, zone, pe.Start.TimeZone)
			assert.Equal(t, "1", pe.ColorID)
			assert.Equal(t, "Status: video", pe.Description)

			pe.ID = in.ID
			out, err := FromProviderEvent(pe, loc)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestFromProviderEvent_ViewerZone(t *testing.T) {
	pe := ProviderEvent{
		ID:      "g1",
		Summary: "Late call",
		Start:   EventTime{DateTime: "2025-01-01T23:30:00Z"},
		End:     EventTime{DateTime: "2025-01-02T00:15:00Z"},
	}

	out, err := FromProviderEvent(pe, mustLoc(t, "Europe/Berlin"))
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", out.Date)
	assert.Equal(t, "00:30", out.StartTime)
	assert.Equal(t, "01:15", out.EndTime)
	assert.Equal(t, model.StatusOffline, out.Status)
}

func TestFromProviderEvent_AllDay(t *testing.T) {
	pe := ProviderEvent{ID: "d", Summary: "Holiday", Start: EventTime{Date: "2025-05-01"}, End: EventTime{Date: "2025-05-02"}}

	out, err := FromProviderEvent(pe, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-01", out.Date)
	assert.Equal(t, "00:00", out.StartTime)
	assert.Equal(t, "00:00", out.EndTime)
}

func TestDecodeStatus(t *testing.T) {
	assert.Equal(t, model.StatusOnline, DecodeStatus("Status: online", "8"))
	assert.Equal(t, model.StatusVideo, DecodeStatus("Status: video", ""))
	assert.Equal(t, model.StatusOffline, DecodeStatus("Status: offline", "2"))
	assert.Equal(t, model.StatusOnline, DecodeStatus("", "2"))
	assert.Equal(t, model.StatusVideo, DecodeStatus("lunch", "1"))
	assert.Equal(t, model.StatusOffline, DecodeStatus("", "5"))

	// The marker line wins over status words elsewhere in the text
	assert.Equal(t, model.StatusOffline, DecodeStatus("Status: offline\nmoved from online", ""))
	assert.Equal(t, model.StatusVideo, DecodeStatus("Agenda: online review\n  status: VIDEO", "2"))
	// An unknown marker value falls back to words, then color
	assert.Equal(t, model.StatusVideo, DecodeStatus("Status: maybe", "1"))
}

func TestParseProviderEvent(t *testing.T) {
	valid := `{"id":"1","summary":"s","start":{"dateTime":"2025-01-01T10:00:00Z"},"end":{"dateTime":"2025-01-01T11:00:00Z"}}`
	pe, err := ParseProviderEvent([]byte(valid))
	require.NoError(t, err)
	assert.Equal(t, "1", pe.ID)

	for name, raw := range map[string]string{
		"no id":      `{"summary":"s","start":{"dateTime":"2025-01-01T10:00:00Z"},"end":{"dateTime":"2025-01-01T11:00:00Z"}}`,
		"no start":   `{"id":"1","end":{"dateTime":"2025-01-01T11:00:00Z"}}`,
		"bad start":  `{"id":"1","start":{"dateTime":"tomorrow"},"end":{"dateTime":"2025-01-01T11:00:00Z"}}`,
		"not object": `[1,2]`,
	} {
		_, err := ParseProviderEvent([]byte(raw))
		assert.ErrorIs(t, err, ErrInvalidEvent, name)
	}
}

func TestParseProviderEvents_SkipsInvalid(t *testing.T) {
	raw := `{"items":[
		{"id":"1","start":{"dateTime":"2025-01-01T10:00:00Z"},"end":{"dateTime":"2025-01-01T11:00:00Z"}},
		{"summary":"missing id"},
		{"id":"3","start":{"date":"2025-01-02"},"end":{"date":"2025-01-03"}}
	]}`

	events, rejected, err := ParseProviderEvents([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, 1, rejected)
	require.Len(t, events, 2)
	assert.Equal(t, "3", events[1].ID)

	_, _, err = ParseProviderEvents([]byte("{"))
	assert.Error(t, err)
}

// fakeStore is a minimal EventStore.
type fakeStore struct {
	mu       sync.Mutex
	events   []model.CalendarEvent
	autoSync bool
}

func (f *fakeStore) Events() []model.CalendarEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.CalendarEvent{}, f.events...)
}

func (f *fakeStore) UpdateEvents(fn func([]model.CalendarEvent) []model.CalendarEvent) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	before := len(f.events)
	f.events = fn(append([]model.CalendarEvent{}, f.events...))
	return len(f.events) - before
}

func (f *fakeStore) ReplaceEventID(oldID, newID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.events {
		if f.events[i].ID == oldID {
			f.events[i].ID = newID
			return true
		}
	}
	return false
}

func (f *fakeStore) AutoSync() bool { return f.autoSync }

func remoteEvent(id string, start time.Time) ProviderEvent {
	return ProviderEvent{
		ID:          id,
		Summary:     "Remote " + id,
		Description: "Status: online",
		Start:       EventTime{DateTime: start.Format(time.RFC3339)},
		End:         EventTime{DateTime: start.Add(time.Hour).Format(time.RFC3339)},
	}
}

func TestReconciler_SyncMergesWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	provider := NewMemoryProvider(
		remoteEvent("r1", now.Add(2*time.Hour)),
		remoteEvent("r2", now.AddDate(0, 0, 20)),
		remoteEvent("late", now.AddDate(0, 2, 0)),
		remoteEvent("past", now.Add(-time.Hour)),
	)
	store := &fakeStore{events: []model.CalendarEvent{ev("local", "2025-01-01", "09:00", "10:00")}}
	r := NewReconciler(store, provider, time.UTC)

	res, err := r.Sync(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Fetched: 2, Added: 2}, res)

	res, err = r.Sync(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, res.Added)
	assert.Len(t, store.Events(), 3)
	assert.False(t, r.Status().LastSync.IsZero())
}

func TestReconciler_NotConnected(t *testing.T) {
	store := &fakeStore{}
	r := NewReconciler(store, nil, time.UTC)

	_, err := r.Sync(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrNotConnected)

	p := NewMemoryProvider()
	p.SetConnected(false)
	r.SetProvider(p)
	_, err = r.Sync(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestReconciler_InFlightGuard(t *testing.T) {
	provider := NewMemoryProvider()
	provider.Block = make(chan struct{})
	r := NewReconciler(&fakeStore{}, provider, time.UTC)

	done := make(chan error, 1)
	go func() {
		_, err := r.Sync(context.Background(), time.Now())
		done <- err
	}()

	assert.Eventually(t, func() bool { return r.Status().Running }, time.Second, 5*time.Millisecond)
	_, err := r.Sync(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrSyncInProgress)
	_, err = r.Push(context.Background(), ev("x", "2025-01-01", "09:00", "10:00"))
	assert.ErrorIs(t, err, ErrSyncInProgress)

	close(provider.Block)
	require.NoError(t, <-done)
	assert.False(t, r.Status().Running)
}

func TestReconciler_PushRewritesID(t *testing.T) {
	local := ev("local-1", "2025-01-01", "09:00", "10:00")
	store := &fakeStore{events: []model.CalendarEvent{local}, autoSync: true}
	provider := NewMemoryProvider()
	r := NewReconciler(store, provider, time.UTC)

	id, err := r.PushLocalEvent(context.Background(), local)
	require.NoError(t, err)
	assert.Equal(t, "mem-1", id)
	assert.Equal(t, "mem-1", store.Events()[0].ID)
	require.Len(t, provider.Events(), 1)
	assert.Equal(t, "2", provider.Events()[0].ColorID)
}

func TestReconciler_PushSkippedWithoutAutoSync(t *testing.T) {
	local := ev("local-1", "2025-01-01", "09:00", "10:00")
	store := &fakeStore{events: []model.CalendarEvent{local}}
	provider := NewMemoryProvider()
	r := NewReconciler(store, provider, time.UTC)

	id, err := r.PushLocalEvent(context.Background(), local)
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, provider.Events())
}

func TestReconciler_PushFailureKeepsLocalID(t *testing.T) {
	local := ev("local-1", "2025-01-01", "09:00", "10:00")
	store := &fakeStore{events: []model.CalendarEvent{local}, autoSync: true}
	provider := NewMemoryProvider()
	provider.Err = errors.New("quota exceeded")
	r := NewReconciler(store, provider, time.UTC)

	id, err := r.PushLocalEvent(context.Background(), local)
	assert.Error(t, err)
	assert.Empty(t, id)
	assert.Equal(t, "local-1", store.Events()[0].ID)
	assert.Contains(t, r.Status().LastError, "quota exceeded")
}

func TestGoogleProvider_ListAndCreate(t *testing.T) {
	var gotQuery []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)

		switch r.Method {
		case http.MethodGet:
			gotQuery = append(gotQuery, r.URL.RawQuery)
			if r.URL.Query().Get("pageToken") == "" {
				io.WriteString(w, `{"items":[{"id":"a","start":{"dateTime":"2025-01-01T10:00:00Z"},"end":{"dateTime":"2025-01-01T11:00:00Z"}},{"id":""}],"nextPageToken":"p2"}`)
				return
			}
			io.WriteString(w, `{"items":[{"id":"b","start":{"date":"2025-01-05"},"end":{"date":"2025-01-06"}}]}`)
		case http.MethodPost:
			var pe ProviderEvent
			require.NoError(t, json.NewDecoder(r.Body).Decode(&pe))
			pe.ID = "created-1"
			json.NewEncoder(w).Encode(pe)
		}
	}))
	defer srv.Close()

	g := NewGoogleProvider(Token{AccessToken: "tok"}, WithBaseURL(srv.URL))
	require.True(t, g.IsConnected())

	events, err := g.ListEvents(context.Background(), time.Now(), time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[1].ID)
	require.Len(t, gotQuery, 2)
	assert.Contains(t, gotQuery[0], "singleEvents=true")
	assert.Contains(t, gotQuery[0], "orderBy=startTime")

	pe, err := ToProviderEvent(ev("l", "2025-01-01", "09:00", "10:00"), time.UTC)
	require.NoError(t, err)
	created, err := g.CreateEvent(context.Background(), pe)
	require.NoError(t, err)
	assert.Equal(t, "created-1", created.ID)
}

func TestGoogleProvider_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewGoogleProvider(Token{AccessToken: "tok"}, WithBaseURL(srv.URL))
	_, err := g.ListEvents(context.Background(), time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrNotConnected)

	expired := NewGoogleProvider(Token{AccessToken: "tok", Expiry: time.Now().Add(-time.Minute)})
	assert.False(t, expired.IsConnected())
}

const feed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:weekly
DTSTAMP:20250101T000000Z
DTSTART:20250106T090000Z
DTEND:20250106T093000Z
RRULE:FREQ=WEEKLY;COUNT=10
EXDATE:20250113T090000Z
SUMMARY:Standup
DESCRIPTION:Status: video
END:VEVENT
BEGIN:VEVENT
UID:single
DTSTAMP:20250101T000000Z
DTSTART:20250110T140000Z
DTEND:20250110T150000Z
SUMMARY:Dentist
END:VEVENT
BEGIN:VEVENT
UID:outside
DTSTAMP:20250101T000000Z
DTSTART:20250601T140000Z
DTEND:20250601T150000Z
SUMMARY:Later
END:VEVENT
END:VCALENDAR
`

func TestParseICS_ExpandsRecurrence(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	body := strings.ReplaceAll(feed, "\n", "\r\n")

	events, err := ParseICS([]byte(body), start, start.AddDate(0, 1, 0))
	require.NoError(t, err)

	var ids []string
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{
		"weekly_20250106T090000Z",
		"single",
		"weekly_20250120T090000Z",
		"weekly_20250127T090000Z",
	}, ids)

	out, err := FromProviderEvent(events[0], time.UTC)
	require.NoError(t, err)
	assert.Equal(t, model.StatusVideo, out.Status)
	assert.Equal(t, "09:30", out.EndTime)
}

func TestICSProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, strings.ReplaceAll(feed, "\n", "\r\n"))
	}))
	defer srv.Close()

	p := NewICSProvider(srv.URL)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	events, err := p.ListEvents(context.Background(), start, start.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Len(t, events, 4)

	_, err = p.CreateEvent(context.Background(), ProviderEvent{})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestExportICS(t *testing.T) {
	var buf bytes.Buffer
	events := []model.CalendarEvent{
		ev("e1", "2025-01-01", "09:00", "10:00"),
		{ID: "bad", Title: "broken", Date: "someday", StartTime: "09:00", EndTime: "10:00"},
	}

	skipped, err := ExportICS(&buf, events, time.UTC, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)

	parsed, err := ParseICS(buf.Bytes(), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "e1", parsed[0].ID)
	assert.Equal(t, "Event e1", parsed[0].Summary)
}
