package cli

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/existflow/focusboard/internal/config"
	"github.com/existflow/focusboard/internal/model"
	"github.com/existflow/focusboard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTestConfig points the package config at a file store in a temp dir.
func useTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	c := config.DefaultConfig()
	c.Storage = config.BackendFile
	c.Fallback = ""
	c.DataDir = dir
	c.Timezone = "UTC"

	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
	return filepath.Join(dir, storage.DataFileName)
}

func TestFindTask(t *testing.T) {
	tasks := []model.Task{
		{ID: 1736000000123, Text: "first"},
		{ID: 1736000000223, Text: "second"},
		{ID: 1736000000456, Text: "third"},
	}

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr string
	}{
		{"exact id", "1736000000123", "first", ""},
		{"unique suffix", "456", "third", ""},
		{"suffix with spaces", " 0223 ", "second", ""},
		{"ambiguous suffix", "23", "", "ambiguous"},
		{"missing", "999", "", "not found"},
		{"not a number", "abc", "", "invalid task id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := findTask(tasks, tt.ref)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text)
		})
	}
}

func TestFindCategory(t *testing.T) {
	cats := []model.Category{{ID: "c1", Name: "Work"}, {ID: "c2", Name: "Home"}}

	c, ok := findCategory(cats, "c2")
	require.True(t, ok)
	assert.Equal(t, "Home", c.Name)

	c, ok = findCategory(cats, "work")
	require.True(t, ok)
	assert.Equal(t, "c1", c.ID)

	_, ok = findCategory(cats, "garden")
	assert.False(t, ok)
}

func TestNormalizeDue(t *testing.T) {
	useTestConfig(t)

	got, err := normalizeDue("")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = normalizeDue(" 2030-02-01T09:30 ")
	require.NoError(t, err)
	assert.Equal(t, "2030-02-01T09:30", got)

	got, err = normalizeDue("Today")
	require.NoError(t, err)
	assert.Len(t, got, len(model.DateLayout))

	_, err = normalizeDue("next friday")
	assert.Error(t, err)
}

func TestDone_AutoDeleteRemovesPersistedTask(t *testing.T) {
	dataPath := useTestConfig(t)
	ctx := context.Background()

	a, err := openApp(ctx, false)
	require.NoError(t, err)
	require.True(t, a.Store.AutoDeleteCompleted())
	keep, _ := a.Store.AddTask("Keep me", nil, nil, false)
	gone, _ := a.Store.AddTask("Finish me", nil, nil, false)
	closeApp(a)

	doneUndo = false
	require.NoError(t, runDone(doneCmd, []string{strconv.FormatInt(gone.ID, 10)}))

	data, err := storage.LoadOrDefault(ctx, storage.NewFileStore(dataPath))
	require.NoError(t, err)
	require.Len(t, data.Tasks, 1)
	assert.Equal(t, keep.ID, data.Tasks[0].ID)
}

func TestDone_UndoReopens(t *testing.T) {
	dataPath := useTestConfig(t)
	ctx := context.Background()

	a, err := openApp(ctx, false)
	require.NoError(t, err)
	a.Store.SetAutoDelete(false)
	task, _ := a.Store.AddTask("Reopen me", nil, nil, false)
	a.Store.ToggleTask(task.ID)
	closeApp(a)

	doneUndo = true
	t.Cleanup(func() { doneUndo = false })
	require.NoError(t, runDone(doneCmd, []string{strconv.FormatInt(task.ID, 10)}))

	data, err := storage.LoadOrDefault(ctx, storage.NewFileStore(dataPath))
	require.NoError(t, err)
	require.Len(t, data.Tasks, 1)
	assert.False(t, data.Tasks[0].Completed)
}

func TestList_DueFlag(t *testing.T) {
	useTestConfig(t)
	t.Cleanup(func() { listDue = "all" })

	require.NoError(t, listCmd.ParseFlags([]string{"--due", "bogus"}))
	err := runList(listCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown due filter")

	require.NoError(t, listCmd.ParseFlags([]string{"-d", "Overdue"}))
	assert.Equal(t, "Overdue", listDue)
	assert.NoError(t, runList(listCmd, nil))
}
