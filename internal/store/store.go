package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/existflow/focusboard/internal/logger"
	"github.com/existflow/focusboard/internal/model"
	"github.com/google/uuid"
)

// DefaultGraceDelay is how long a just-completed task stays visible before
// the auto-delete policy removes it.
const DefaultGraceDelay = time.Second

// Store holds the canonical in-memory collections and applies user
// actions. All methods are safe for concurrent use; subscribers are called
// after the lock is released.
type Store struct {
	mu   sync.Mutex
	data model.AppData

	categoryFilter *string
	dueFilter      DueFilter

	now        func() time.Time
	graceDelay time.Duration
	lastTaskID int64

	timers   map[uint64]*time.Timer
	timerSeq uint64
	subs     map[uint64]func(model.AppData)
	subSeq   uint64
	closed   bool
	newID    func() string
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides time.Now, used for ids and date filters.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithGraceDelay overrides the auto-delete grace delay.
func WithGraceDelay(d time.Duration) Option {
	return func(s *Store) { s.graceDelay = d }
}

// WithIDGenerator overrides the category/event id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New creates a store hydrated from data (normalized with defaults).
func New(data model.AppData, opts ...Option) *Store {
	s := &Store{
		dueFilter:  DueAll,
		now:        time.Now,
		graceDelay: DefaultGraceDelay,
		timers:     make(map[uint64]*time.Timer),
		subs:       make(map[uint64]func(model.AppData)),
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(data)
	return s
}

// Load replaces the whole aggregate, e.g. after a backup import. Grace
// timers armed against the old tasks are cancelled.
func (s *Store) Load(data model.AppData) {
	s.mu.Lock()
	s.stopTimers()
	s.load(data)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) load(data model.AppData) {
	data = data.Clone()
	data.Normalize()
	s.data = data
	for _, t := range data.Tasks {
		if t.ID > s.lastTaskID {
			s.lastTaskID = t.ID
		}
	}
	if s.categoryFilter != nil && s.categoryIndex(*s.categoryFilter) < 0 {
		s.categoryFilter = nil
	}
}

// Subscribe registers fn to receive a snapshot after every mutation.
func (s *Store) Subscribe(fn func(model.AppData)) (unsubscribe func()) {
	s.mu.Lock()
	s.subSeq++
	id := s.subSeq
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	if len(s.subs) == 0 {
		s.mu.Unlock()
		return
	}
	snap := s.data.Clone()
	fns := make([]func(model.AppData), 0, len(s.subs))
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Snapshot returns a deep copy of the aggregate.
func (s *Store) Snapshot() model.AppData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Tasks returns a copy of all tasks in insertion order.
func (s *Store) Tasks() []model.Task {
	return s.Snapshot().Tasks
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time { return s.now() }

// Close cancels pending grace timers. Further auto-deletes are dropped.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimers()
}

// stopTimers must be called with s.mu held.
func (s *Store) stopTimers() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// nextTaskID derives an id from the creation time in milliseconds and
// keeps it strictly increasing.
func (s *Store) nextTaskID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastTaskID {
		id = s.lastTaskID + 1
	}
	s.lastTaskID = id
	return id
}

// AddTask appends a new task. Blank text is a no-op.
func (s *Store) AddTask(text string, categoryID, dueDate *string, wantsReminder bool) (model.Task, bool) {
	if strings.TrimSpace(text) == "" {
		return model.Task{}, false
	}
	if dueDate != nil && strings.TrimSpace(*dueDate) == "" {
		dueDate = nil
	}

	s.mu.Lock()
	task := model.NewTask(s.nextTaskID(), text, categoryID, dueDate, wantsReminder)
	s.data.Tasks = append(s.data.Tasks, task)
	s.mu.Unlock()

	logger.Debug("Task added", logger.F("id", task.ID), logger.F("reminder", task.HasReminder))
	s.notify()
	return task.Clone(), true
}

// Task returns the task with the given id.
func (s *Store) Task(id int64) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.taskIndex(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.data.Tasks[i].Clone(), true
}

func (s *Store) taskIndex(id int64) int {
	for i := range s.data.Tasks {
		if s.data.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// ToggleTask flips completion. With auto-delete enabled, a task that just
// became completed is removed after the grace delay, provided it is still
// completed when the timer fires.
func (s *Store) ToggleTask(id int64) bool {
	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	t := &s.data.Tasks[i]
	t.Completed = !t.Completed
	if s.data.AutoDeleteCompleted && t.Completed && !s.closed {
		s.scheduleRemoval(id)
	}
	completed := t.Completed
	s.mu.Unlock()

	logger.Debug("Task toggled", logger.F("id", id), logger.F("completed", completed))
	s.notify()
	return true
}

// scheduleRemoval must be called with s.mu held.
func (s *Store) scheduleRemoval(taskID int64) {
	s.timerSeq++
	timerID := s.timerSeq
	s.timers[timerID] = time.AfterFunc(s.graceDelay, func() {
		s.removeIfCompleted(timerID, taskID)
	})
}

func (s *Store) removeIfCompleted(timerID uint64, taskID int64) {
	s.mu.Lock()
	if _, ok := s.timers[timerID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.timers, timerID)

	i := s.taskIndex(taskID)
	if i < 0 || !s.data.Tasks[i].Completed {
		s.mu.Unlock()
		return
	}
	s.data.Tasks = append(s.data.Tasks[:i], s.data.Tasks[i+1:]...)
	s.mu.Unlock()

	logger.Debug("Completed task auto-deleted", logger.F("id", taskID))
	s.notify()
}

// PendingRemovals reports how many grace timers are still armed.
func (s *Store) PendingRemovals() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(id int64) bool {
	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.data.Tasks = append(s.data.Tasks[:i], s.data.Tasks[i+1:]...)
	s.mu.Unlock()

	s.notify()
	return true
}

// TaskPatch describes an edit; nil fields are left unchanged.
type TaskPatch struct {
	Text        *string
	CategoryID  *string // empty string clears the category
	DueDate     *string // empty string clears the due date
	HasReminder *bool
}

// UpdateTask applies patch. Clearing the due date also clears the reminder.
func (s *Store) UpdateTask(id int64, patch TaskPatch) (model.Task, bool) {
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return model.Task{}, false
	}

	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Task{}, false
	}
	t := &s.data.Tasks[i]
	if patch.Text != nil {
		t.Text = *patch.Text
	}
	if patch.CategoryID != nil {
		t.CategoryID = model.StringPtr(*patch.CategoryID)
	}
	if patch.DueDate != nil {
		t.DueDate = model.StringPtr(*patch.DueDate)
	}
	if patch.HasReminder != nil {
		t.HasReminder = *patch.HasReminder
	}
	if t.DueDate == nil {
		t.HasReminder = false
	}
	out := t.Clone()
	s.mu.Unlock()

	s.notify()
	return out, true
}

// Categories returns a copy of all categories.
func (s *Store) Categories() []model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Category{}, s.data.Categories...)
}

func (s *Store) categoryIndex(id string) int {
	for i := range s.data.Categories {
		if s.data.Categories[i].ID == id {
			return i
		}
	}
	return -1
}

// AddCategory appends a category with a fresh id. Blank names are a no-op.
func (s *Store) AddCategory(name, color string) (model.Category, bool) {
	if strings.TrimSpace(name) == "" {
		return model.Category{}, false
	}
	if strings.TrimSpace(color) == "" {
		color = model.DefaultCategoryColor
	}

	s.mu.Lock()
	c := model.Category{ID: s.newID(), Name: name, Color: color}
	s.data.Categories = append(s.data.Categories, c)
	s.mu.Unlock()

	s.notify()
	return c, true
}

// DeleteCategory removes a category, detaches its tasks and clears the
// active category filter if it pointed at it.
func (s *Store) DeleteCategory(id string) bool {
	s.mu.Lock()
	i := s.categoryIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.data.Categories = append(s.data.Categories[:i], s.data.Categories[i+1:]...)
	for j := range s.data.Tasks {
		if s.data.Tasks[j].HasCategory(id) {
			s.data.Tasks[j].CategoryID = nil
		}
	}
	if s.categoryFilter != nil && *s.categoryFilter == id {
		s.categoryFilter = nil
	}
	s.mu.Unlock()

	s.notify()
	return true
}

// SetCategoryFilter sets the active category filter; nil clears it.
func (s *Store) SetCategoryFilter(id *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == nil {
		s.categoryFilter = nil
		return
	}
	v := *id
	s.categoryFilter = &v
}

// SetDueFilter sets the active due-date filter.
func (s *Store) SetDueFilter(f DueFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dueFilter = f
}

// ActiveFilter returns the current filter selection.
func (s *Store) ActiveFilter() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := Filter{Due: s.dueFilter}
	if s.categoryFilter != nil {
		v := *s.categoryFilter
		f.CategoryID = &v
	}
	return f
}

// FilterTasks returns a derived view; the canonical collection is untouched.
func (s *Store) FilterTasks(categoryID *string, due DueFilter) []model.Task {
	now := s.now()
	return FilterTasks(s.Tasks(), Filter{CategoryID: categoryID, Due: due}, now)
}

// VisibleTasks applies the active filter.
func (s *Store) VisibleTasks() []model.Task {
	f := s.ActiveFilter()
	return FilterTasks(s.Tasks(), f, s.now())
}

// Settings

// ReminderSettings returns the reminder configuration.
func (s *Store) ReminderSettings() model.ReminderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.data.ReminderSettings
}

// SetReminderSettings replaces the reminder configuration.
func (s *Store) SetReminderSettings(rs model.ReminderSettings) {
	if rs.ReminderTime <= 0 {
		rs.ReminderTime = model.DefaultReminderMinutes
	}
	s.mu.Lock()
	s.data.ReminderSettings = &rs
	s.mu.Unlock()
	s.notify()
}

// AutoDeleteCompleted reports whether completed tasks are removed.
func (s *Store) AutoDeleteCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.AutoDeleteCompleted
}

// SetAutoDelete toggles the auto-delete-on-complete policy.
func (s *Store) SetAutoDelete(enabled bool) {
	s.mu.Lock()
	s.data.AutoDeleteCompleted = enabled
	s.mu.Unlock()
	s.notify()
}

// AutoSync reports whether local events are pushed to the provider.
func (s *Store) AutoSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.GoogleCalendarSettings.AutoSync
}

// SetAutoSync toggles calendar auto-sync.
func (s *Store) SetAutoSync(enabled bool) {
	s.mu.Lock()
	s.data.GoogleCalendarSettings = &model.GoogleCalendarSettings{AutoSync: enabled}
	s.mu.Unlock()
	s.notify()
}

// SetTheme sets dark or light.
func (s *Store) SetTheme(theme string) {
	if theme != "dark" && theme != "light" {
		return
	}
	s.mu.Lock()
	s.data.Theme = theme
	s.mu.Unlock()
	s.notify()
}

// SetBackground stores the custom background reference and fit mode.
func (s *Store) SetBackground(image, fitMode string) {
	s.mu.Lock()
	s.data.CustomBackgroundImage = image
	if fitMode != "" {
		s.data.BackgroundFitMode = fitMode
	}
	s.mu.Unlock()
	s.notify()
}
