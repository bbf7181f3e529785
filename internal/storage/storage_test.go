package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/existflow/focusboard/internal/config"
	"github.com/existflow/focusboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() model.AppData {
	d := model.DefaultAppData()
	cat := "c1"
	due := "2025-01-10T09:00"
	d.Tasks = []model.Task{
		{ID: 1736000000000, Text: "Buy milk", CategoryID: &cat, DueDate: &due, HasReminder: true},
		{ID: 1736000000001, Text: "Call mom", Completed: true},
	}
	d.Categories = []model.Category{{ID: cat, Name: "Errands", Color: "#ff9900"}}
	d.Events = []model.CalendarEvent{{ID: "e1", Title: "Standup", Date: "2025-01-10", StartTime: "09:00", EndTime: "09:15", Status: model.StatusVideo}}
	d.AutoDeleteCompleted = true
	d.Theme = "light"
	return d
}

func roundTrip(t *testing.T, a Adapter) {
	t.Helper()
	ctx := context.Background()

	_, found, err := a.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	want := sampleData()
	require.NoError(t, a.Save(ctx, want))

	got, found, err := a.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)
}

func TestMemory_RoundTrip(t *testing.T) {
	roundTrip(t, NewMemory())
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", DataFileName)
	roundTrip(t, NewFileStore(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_MissingKeysGetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DataFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"tasks":[{"id":1,"text":"x","completed":false}]}`), 0600))

	got, found, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, got.Tasks, 1)
	assert.Equal(t, model.DefaultReminderSettings(), *got.ReminderSettings)
	assert.Equal(t, "cover", got.BackgroundFitMode)
	assert.False(t, got.GoogleCalendarSettings.AutoSync)
	assert.Empty(t, got.Categories)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), DataFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"tasks":`), 0600))

	_, _, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "focusboard.db"))
	require.NoError(t, err)
	defer s.Close()

	last, err := s.LastSaved(context.Background())
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	roundTrip(t, s)

	last, err = s.LastSaved(context.Background())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), last, time.Minute)

	values, err := s.DB().GetAll(context.Background())
	require.NoError(t, err)
	assert.Contains(t, values, "tasks")
	assert.Contains(t, values, "reminderSettings")
	assert.Equal(t, `"light"`, values["theme"])
}

func TestSQLiteStore_PartialKeys(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "focusboard.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.DB().PutAll(context.Background(), map[string]string{"autoDeleteCompleted": "true"}))

	got, found, err := s.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.AutoDeleteCompleted)
	assert.Equal(t, "dark", got.Theme)
	assert.NotNil(t, got.Tasks)
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("FOCUSBOARD_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("FOCUSBOARD_TEST_DATABASE_URL not set")
	}
	profile := "test-" + time.Now().Format("150405.000000")
	p, err := OpenPostgres(context.Background(), dsn, profile)
	require.NoError(t, err)
	defer p.Close()

	roundTrip(t, p)
}

type failing struct{ err error }

func (f failing) Save(context.Context, model.AppData) error { return f.err }
func (f failing) Load(context.Context) (model.AppData, bool, error) {
	return model.AppData{}, false, f.err
}

func TestFallback(t *testing.T) {
	ctx := context.Background()
	broken := failing{err: errors.New("disk full")}
	mem := NewMemory()
	f := NewFallback(broken, nil, mem)

	require.NoError(t, f.Save(ctx, sampleData()))
	assert.Equal(t, 1, mem.Saves())

	got, found, err := f.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, got.Tasks, 2)
}

func TestFallback_AllFail(t *testing.T) {
	ctx := context.Background()
	f := NewFallback(failing{err: errors.New("a")}, failing{err: errors.New("b")})

	err := f.Save(ctx, sampleData())
	assert.ErrorIs(t, err, ErrNoBackend)
	_, _, err = f.Load(ctx)
	assert.ErrorIs(t, err, ErrNoBackend)

	assert.ErrorIs(t, NewFallback().Save(ctx, model.AppData{}), ErrNoBackend)
}

func TestLoadOrDefault(t *testing.T) {
	data, err := LoadOrDefault(context.Background(), failing{err: errors.New("boom")})
	assert.Error(t, err)
	assert.Equal(t, model.DefaultAppData(), data)

	data, err = LoadOrDefault(context.Background(), NewMemory())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultAppData(), data)
}

type countingAdapter struct {
	saves atomic.Int32
	last  atomic.Value
}

func (c *countingAdapter) Save(_ context.Context, d model.AppData) error {
	c.saves.Add(1)
	c.last.Store(len(d.Tasks))
	return nil
}

func (c *countingAdapter) Load(context.Context) (model.AppData, bool, error) {
	return model.AppData{}, false, nil
}

func TestSaver_DebouncesBursts(t *testing.T) {
	a := &countingAdapter{}
	var n atomic.Int32
	snapshot := func() model.AppData {
		d := model.DefaultAppData()
		for i := int32(0); i < n.Load(); i++ {
			d.Tasks = append(d.Tasks, model.Task{ID: int64(i)})
		}
		return d
	}
	s := NewSaver(a, snapshot, 30*time.Millisecond)

	for i := 0; i < 10; i++ {
		n.Add(1)
		s.Trigger()
	}

	assert.Eventually(t, func() bool { return a.saves.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), a.saves.Load())
	assert.Equal(t, 10, a.last.Load())
}

func TestSaver_FlushAndClose(t *testing.T) {
	a := &countingAdapter{}
	s := NewSaver(a, model.DefaultAppData, time.Hour)

	require.NoError(t, s.Flush(context.Background()))
	assert.Zero(t, a.saves.Load(), "nothing pending")

	s.Trigger()
	require.NoError(t, s.Close(context.Background()))
	assert.Equal(t, int32(1), a.saves.Load())

	s.Trigger()
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, int32(1), a.saves.Load(), "closed saver ignores triggers")
}

type slowAdapter struct {
	inflight    atomic.Int32
	maxInflight atomic.Int32
	last        atomic.Int32
}

func (a *slowAdapter) Save(_ context.Context, d model.AppData) error {
	n := a.inflight.Add(1)
	defer a.inflight.Add(-1)
	for {
		peak := a.maxInflight.Load()
		if n <= peak || a.maxInflight.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	a.last.Store(int32(len(d.Tasks)))
	return nil
}

func (a *slowAdapter) Load(context.Context) (model.AppData, bool, error) {
	return model.AppData{}, false, nil
}

func TestSaver_ConcurrentFlushesWriteInOrder(t *testing.T) {
	a := &slowAdapter{}
	var n atomic.Int32
	snapshot := func() model.AppData {
		d := model.DefaultAppData()
		d.Tasks = make([]model.Task, n.Load())
		return d
	}
	s := NewSaver(a, snapshot, time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Add(1)
			s.Trigger()
			_ = s.Flush(context.Background())
		}()
	}
	wg.Wait()
	require.NoError(t, s.Close(context.Background()))

	assert.Equal(t, int32(1), a.maxInflight.Load(), "writes never overlap")
	assert.Equal(t, int32(20), a.last.Load(), "newest snapshot lands last")
}

func TestExportImport(t *testing.T) {
	var buf bytes.Buffer
	want := sampleData()
	require.NoError(t, Export(&buf, want))
	assert.Contains(t, buf.String(), "\n  \"tasks\"")

	got, err := Import(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Import(strings.NewReader("not json"))
	assert.Error(t, err)

	assert.Equal(t, "focusboard-backup-2025-01-02.json", BackupFileName(time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)))
}

func TestOpen_FromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Storage = config.BackendPostgres
	cfg.DatabaseURL = ""
	cfg.Fallback = config.BackendSQLite

	b, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer b.Close()
	_, ok := b.Adapter.(*SQLiteStore)
	assert.True(t, ok, "unavailable primary is skipped")

	cfg.Storage = config.BackendFile
	cfg.Fallback = config.BackendMemory
	b2, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	_, ok = b2.Adapter.(*Fallback)
	assert.True(t, ok)
}
