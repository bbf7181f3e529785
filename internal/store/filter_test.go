package store

import (
	"testing"
	"time"

	"github.com/existflow/focusboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskIDs(tasks []model.Task) []int64 {
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func dueTasks() []model.Task {
	return []model.Task{
		{ID: 1, Text: "yesterday", DueDate: model.StringPtr("2024-12-31")},
		{ID: 2, Text: "today", DueDate: model.StringPtr("2025-01-01")},
		{ID: 3, Text: "tomorrow", DueDate: model.StringPtr("2025-01-02")},
		{ID: 4, Text: "no date"},
		{ID: 5, Text: "week out", DueDate: model.StringPtr("2025-01-08")},
		{ID: 6, Text: "too far", DueDate: model.StringPtr("2025-01-09")},
		{ID: 7, Text: "earlier today", DueDate: model.StringPtr("2025-01-01T08:00")},
	}
}

func TestFilterTasks_DueFilters(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)

	tests := []struct {
		filter DueFilter
		want   []int64
	}{
		{DueAll, []int64{1, 2, 3, 4, 5, 6, 7}},
		{DueToday, []int64{2, 7}},
		{DueTomorrow, []int64{3}},
		{DueUpcoming, []int64{2, 3, 5, 7}},
		{DueOverdue, []int64{1}},
		{DueNoDate, []int64{4}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := FilterTasks(dueTasks(), Filter{Due: tt.filter}, now)
			assert.Equal(t, tt.want, taskIDs(got))
		})
	}
}

func TestFilterTasks_OverdueScenario(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 30, 0, 0, time.Local)
	tasks := []model.Task{
		{ID: 1, DueDate: model.StringPtr("2024-12-31")},
		{ID: 2, DueDate: model.StringPtr("2025-01-01")},
		{ID: 3},
	}

	got := FilterTasks(tasks, Filter{Due: DueOverdue}, now)
	assert.Equal(t, []int64{1}, taskIDs(got))
}

func TestFilterTasks_CategoryAndDueCombined(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)
	work := "work"
	tasks := []model.Task{
		{ID: 1, CategoryID: &work, DueDate: model.StringPtr("2025-01-01")},
		{ID: 2, DueDate: model.StringPtr("2025-01-01")},
		{ID: 3, CategoryID: &work},
	}

	got := FilterTasks(tasks, Filter{CategoryID: &work, Due: DueToday}, now)
	assert.Equal(t, []int64{1}, taskIDs(got))
}

func TestFilterTasks_DoesNotModifyInput(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)
	tasks := dueTasks()

	got := FilterTasks(tasks, Filter{Due: DueToday}, now)
	got[0].Text = "changed"

	assert.Equal(t, "today", tasks[1].Text)
	assert.Len(t, tasks, 7)
}

func TestStoreFilter_UsesClock(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)
	s := newTestStore(WithClock(fixedClock(now)))
	s.AddTask("old", nil, model.StringPtr("2024-12-30"), false)
	s.AddTask("new", nil, model.StringPtr("2025-01-01"), false)

	s.SetDueFilter(DueOverdue)
	visible := s.VisibleTasks()
	require.Len(t, visible, 1)
	assert.Equal(t, "old", visible[0].Text)
	assert.Len(t, s.Tasks(), 2)
}

func TestParseDueFilter(t *testing.T) {
	f, err := ParseDueFilter(" Overdue ")
	require.NoError(t, err)
	assert.Equal(t, DueOverdue, f)

	f, err = ParseDueFilter("")
	require.NoError(t, err)
	assert.Equal(t, DueAll, f)

	_, err = ParseDueFilter("someday")
	assert.Error(t, err)
}
