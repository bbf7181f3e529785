package sync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/existflow/focusboard/internal/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVault_RoundTrip(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	v := NewVault("correct horse", salt)

	token := calendar.Token{AccessToken: "ya29.abc", RefreshToken: "1//r", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	sealed, err := v.SealToken(token)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "ya29")

	got, err := v.OpenToken(sealed)
	require.NoError(t, err)
	assert.Equal(t, token, got)

	_, err = NewVault("wrong", salt).OpenToken(sealed)
	assert.ErrorIs(t, err, ErrBadPassphrase)
}

func TestClient_GoogleConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.json")
	c, err := NewClient(path)
	require.NoError(t, err)

	p, err := c.Provider("")
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, c.ConnectGoogle(calendar.Token{AccessToken: "tok"}, "", "pass"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded, err := NewClient(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, reloaded.Kind())
	assert.True(t, reloaded.NeedsPassphrase())

	p, err = reloaded.Provider("pass")
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())
	assert.True(t, p.IsConnected())

	_, err = reloaded.Provider("nope")
	assert.ErrorIs(t, err, ErrBadPassphrase)

	require.NoError(t, reloaded.Disconnect())
	assert.Equal(t, ProviderNone, reloaded.Kind())
}

func TestClient_ICSAndStatus(t *testing.T) {
	c, err := NewClient(filepath.Join(t.TempDir(), "calendar.json"))
	require.NoError(t, err)

	require.NoError(t, c.ConnectICS("https://example.com/feed.ics"))
	p, err := c.Provider("")
	require.NoError(t, err)
	assert.Equal(t, "ics", p.Name())

	now := time.Unix(1736000000, 0)
	require.NoError(t, c.MarkSynced(now))
	kind, url, last := c.GetStatus()
	assert.Equal(t, ProviderICS, kind)
	assert.Equal(t, "https://example.com/feed.ics", url)
	assert.True(t, last.Equal(now))

	assert.Error(t, c.ConnectICS(""))
	assert.Error(t, c.ConnectGoogle(calendar.Token{}, "", "x"))
}

type fakeSyncer struct {
	calls  atomic.Int32
	result calendar.SyncResult
	err    error
}

func (f *fakeSyncer) Sync(context.Context, time.Time) (calendar.SyncResult, error) {
	f.calls.Add(1)
	return f.result, f.err
}

func TestAutoSync_SyncNowCallbacks(t *testing.T) {
	syncer := &fakeSyncer{result: calendar.SyncResult{Fetched: 3, Added: 2}}
	a := NewAutoSync(syncer, "*/15 * * * *", nil)

	var pulled calendar.SyncResult
	var synced bool
	a.SetOnPull(func(r calendar.SyncResult) { pulled = r })
	a.SetOnSync(func(time.Time) { synced = true })

	_, err := a.SyncNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, pulled.Added)
	assert.True(t, synced)
}

func TestAutoSync_SkipsBenignErrors(t *testing.T) {
	syncer := &fakeSyncer{err: calendar.ErrSyncInProgress}
	a := NewAutoSync(syncer, "*/15 * * * *", nil)

	_, err := a.SyncNow(context.Background())
	assert.NoError(t, err)

	syncer.err = errors.New("network down")
	_, err = a.SyncNow(context.Background())
	assert.Error(t, err)
}

func TestAutoSync_TriggerIsDebounced(t *testing.T) {
	syncer := &fakeSyncer{}
	a := NewAutoSync(syncer, "*/15 * * * *", nil)
	a.SetDebounce(20 * time.Millisecond)
	defer a.Stop()

	for i := 0; i < 5; i++ {
		a.TriggerSync()
	}
	assert.True(t, a.IsPending())

	assert.Eventually(t, func() bool { return syncer.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, a.IsPending())
}

func TestAutoSync_DisabledDoesNothing(t *testing.T) {
	syncer := &fakeSyncer{}
	a := NewAutoSync(syncer, "*/15 * * * *", func() bool { return false })
	a.SetDebounce(time.Millisecond)

	a.TriggerSync()
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, syncer.calls.Load())
}

func TestAutoSync_StartRejectsBadSchedule(t *testing.T) {
	a := NewAutoSync(&fakeSyncer{}, "every tuesday", nil)
	assert.Error(t, a.Start())

	ok := NewAutoSync(&fakeSyncer{}, "@every 1h", nil)
	require.NoError(t, ok.Start())

	var wg gosync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); ok.Stop() }()
	go func() { defer wg.Done(); ok.Stop() }()
	wg.Wait()
}
