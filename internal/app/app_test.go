package app

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/existflow/focusboard/internal/calendar"
	"github.com/existflow/focusboard/internal/config"
	"github.com/existflow/focusboard/internal/model"
	"github.com/existflow/focusboard/internal/reminder"
	"github.com/existflow/focusboard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestApp(t *testing.T, adapter storage.Adapter, provider calendar.Provider) (*App, string) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	calPath := filepath.Join(t.TempDir(), "calendar.json")

	a, err := Open(context.Background(), cfg, Options{
		Adapter:      adapter,
		Provider:     provider,
		CalendarPath: calPath,
		SaveDelay:    time.Millisecond,
	})
	require.NoError(t, err)
	return a, calPath
}

func TestOpen_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()

	a, _ := openTestApp(t, mem, nil)
	_, ok := a.Store.AddTask("Persist me", nil, model.StringPtr("2030-05-01"), true)
	require.True(t, ok)
	a.Store.AddCategory("Errands", "")
	require.NoError(t, a.Close(ctx))

	b, _ := openTestApp(t, mem, nil)
	defer b.Close(ctx)

	tasks := b.Store.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Persist me", tasks[0].Text)
	assert.True(t, tasks[0].HasReminder)
	require.Len(t, b.Store.Categories(), 1)
	assert.Equal(t, model.DefaultCategoryColor, b.Store.Categories()[0].Color)
}

func TestAddEvent_PushesAndRewritesID(t *testing.T) {
	ctx := context.Background()
	provider := calendar.NewMemoryProvider()
	a, _ := openTestApp(t, storage.NewMemory(), provider)
	defer a.Close(ctx)

	// Auto-sync off: stays local
	local, err := a.AddEvent(ctx, model.CalendarEvent{Title: "Local", Date: "2030-01-01", StartTime: "10:00", EndTime: "11:00"})
	require.NoError(t, err)
	assert.NotEqual(t, "mem-1", local.ID)
	assert.Empty(t, provider.Events())

	a.Store.SetAutoSync(true)
	pushed, err := a.AddEvent(ctx, model.CalendarEvent{Title: "Pushed", Date: "2030-01-01", StartTime: "12:00", EndTime: "13:00"})
	require.NoError(t, err)
	assert.Equal(t, "mem-1", pushed.ID)
	require.Len(t, provider.Events(), 1)

	ids := map[string]bool{}
	for _, e := range a.Store.Events() {
		ids[e.ID] = true
	}
	assert.True(t, ids["mem-1"])
	assert.True(t, ids[local.ID])
}

func TestAddEvent_Invalid(t *testing.T) {
	ctx := context.Background()
	a, _ := openTestApp(t, storage.NewMemory(), nil)
	defer a.Close(ctx)

	_, err := a.AddEvent(ctx, model.CalendarEvent{Title: "No times", Date: "2030-01-01"})
	assert.ErrorIs(t, err, calendar.ErrInvalidEvent)
	assert.Empty(t, a.Store.Events())
}

func TestSync_RecordsLastSync(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(time.Hour).UTC()
	provider := calendar.NewMemoryProvider(calendar.ProviderEvent{
		ID:      "g1",
		Summary: "Planning",
		Start:   calendar.EventTime{DateTime: start.Format(time.RFC3339)},
		End:     calendar.EventTime{DateTime: start.Add(time.Hour).Format(time.RFC3339)},
	})
	a, _ := openTestApp(t, storage.NewMemory(), provider)
	defer a.Close(ctx)

	res, err := a.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)

	_, _, last := a.Calendar.GetStatus()
	assert.False(t, last.IsZero())

	// A second pull adds nothing
	res, err = a.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
	assert.Len(t, a.Store.Events(), 1)
}

func TestSync_NotConnected(t *testing.T) {
	ctx := context.Background()
	a, _ := openTestApp(t, storage.NewMemory(), nil)
	defer a.Close(ctx)

	_, err := a.Sync(ctx)
	assert.ErrorIs(t, err, calendar.ErrNotConnected)
}

func TestOpen_UsesConfiguredICSFeed(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.ICSURL = "https://example.com/cal.ics"

	a, err := Open(ctx, cfg, Options{
		Adapter:      storage.NewMemory(),
		CalendarPath: filepath.Join(t.TempDir(), "calendar.json"),
	})
	require.NoError(t, err)
	defer a.Close(ctx)

	require.NotNil(t, a.Reconciler.Provider())
	assert.Equal(t, "ics", a.Reconciler.Provider().Name())
}

func TestReminders_UseStoreClock(t *testing.T) {
	ctx := context.Background()
	a, _ := openTestApp(t, storage.NewMemory(), nil)
	defer a.Close(ctx)

	soon := a.Store.Now().Add(10 * time.Minute).Format(model.DateTimeLayout)
	a.Store.AddTask("Call bank", nil, &soon, true)

	var titles []string
	r := a.Reminders(reminder.FuncNotifier(func(title, body string) {
		titles = append(titles, title)
	}), time.Minute)

	assert.Equal(t, 1, r.Check())
	// Already delivered for this due date
	assert.Equal(t, 0, r.Check())
	assert.Equal(t, []string{"Task Due Soon"}, titles)
}

func TestStartBackground_InvalidSchedule(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.SyncCron = "not a schedule"

	a, err := Open(ctx, cfg, Options{
		Adapter:      storage.NewMemory(),
		CalendarPath: filepath.Join(t.TempDir(), "calendar.json"),
	})
	require.NoError(t, err)
	defer a.Close(ctx)

	err = a.StartBackground(reminder.LogNotifier{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sync schedule")
}

func TestOpen_CorruptCalendarFileDegrades(t *testing.T) {
	ctx := context.Background()
	calPath := filepath.Join(t.TempDir(), "calendar.json")
	require.NoError(t, os.WriteFile(calPath, []byte("{not json"), 0o600))

	a, err := Open(ctx, config.DefaultConfig(), Options{
		Adapter:      storage.NewMemory(),
		CalendarPath: calPath,
	})
	require.NoError(t, err)
	defer a.Close(ctx)

	assert.Empty(t, a.Calendar.Kind())
	_, ok := a.Store.AddTask("Still works", nil, nil, false)
	assert.True(t, ok)
	assert.Len(t, a.Store.Tasks(), 1)

	_, err = a.Sync(ctx)
	assert.ErrorIs(t, err, calendar.ErrNotConnected)
}

func TestLocalEventChange_QueuesPull(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(time.Hour).UTC()
	provider := calendar.NewMemoryProvider(calendar.ProviderEvent{
		ID:      "g1",
		Summary: "Review",
		Start:   calendar.EventTime{DateTime: start.Format(time.RFC3339)},
		End:     calendar.EventTime{DateTime: start.Add(time.Hour).Format(time.RFC3339)},
	})
	a, _ := openTestApp(t, storage.NewMemory(), provider)
	defer a.Close(ctx)
	a.AutoSync.SetDebounce(10 * time.Millisecond)

	// Auto-sync off: nothing queued
	a.Store.AddEvent(model.CalendarEvent{Title: "Local", Date: "2030-01-01", StartTime: "10:00", EndTime: "11:00"})
	assert.False(t, a.AutoSync.IsPending())

	a.Store.SetAutoSync(true)
	// Settings changes alone do not queue a pull
	assert.False(t, a.AutoSync.IsPending())

	var pulls atomic.Int32
	a.AutoSync.SetOnPull(func(calendar.SyncResult) { pulls.Add(1) })

	a.Store.AddEvent(model.CalendarEvent{Title: "Lunch", Date: "2030-01-01", StartTime: "12:00", EndTime: "13:00"})
	assert.Eventually(t, func() bool { return len(a.Store.Events()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return pulls.Load() == 1 }, time.Second, 5*time.Millisecond)

	// The pull's own writes do not queue another one
	time.Sleep(50 * time.Millisecond)
	assert.False(t, a.AutoSync.IsPending())
	assert.Equal(t, int32(1), pulls.Load())
}
