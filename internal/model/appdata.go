package model

// Defaults applied to missing fields of a persisted aggregate.
const (
	DefaultReminderMinutes = 30
	DefaultFitMode         = "cover"
	DefaultTheme           = "dark"
)

// ReminderSettings controls the reminder scanner
type ReminderSettings struct {
	Enabled      bool `json:"enabled"`
	ReminderTime int  `json:"reminderTime"` // minutes before due date
}

// GoogleCalendarSettings holds calendar sync preferences
type GoogleCalendarSettings struct {
	AutoSync bool `json:"autoSync"`
}

// AppData is the persisted aggregate.
type AppData struct {
	Tasks                  []Task                  `json:"tasks"`
	Categories             []Category              `json:"categories"`
	Events                 []CalendarEvent         `json:"events"`
	ReminderSettings       *ReminderSettings       `json:"reminderSettings"`
	CustomBackgroundImage  string                  `json:"customBackgroundImage"`
	BackgroundFitMode      string                  `json:"backgroundFitMode"`
	AutoDeleteCompleted    bool                    `json:"autoDeleteCompleted"`
	GoogleCalendarSettings *GoogleCalendarSettings `json:"googleCalendarSettings"`
	Theme                  string                  `json:"theme,omitempty"`
}

// DefaultReminderSettings returns {enabled: true, reminderTime: 30}
func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{Enabled: true, ReminderTime: DefaultReminderMinutes}
}

// DefaultAppData returns the aggregate used when nothing was persisted.
func DefaultAppData() AppData {
	d := AppData{}
	d.Normalize()
	return d
}

// Normalize fills in defaults for every missing field so that partially
// persisted aggregates still load.
func (d *AppData) Normalize() {
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	if d.Events == nil {
		d.Events = []CalendarEvent{}
	}
	if d.ReminderSettings == nil {
		rs := DefaultReminderSettings()
		d.ReminderSettings = &rs
	}
	if d.BackgroundFitMode == "" {
		d.BackgroundFitMode = DefaultFitMode
	}
	if d.GoogleCalendarSettings == nil {
		d.GoogleCalendarSettings = &GoogleCalendarSettings{}
	}
	if d.Theme == "" {
		d.Theme = DefaultTheme
	}
}

// Clone returns a deep copy of the aggregate.
func (d AppData) Clone() AppData {
	out := d
	out.Tasks = make([]Task, len(d.Tasks))
	for i, t := range d.Tasks {
		out.Tasks[i] = t.Clone()
	}
	out.Categories = append([]Category{}, d.Categories...)
	out.Events = append([]CalendarEvent{}, d.Events...)
	if d.ReminderSettings != nil {
		rs := *d.ReminderSettings
		out.ReminderSettings = &rs
	}
	if d.GoogleCalendarSettings != nil {
		gs := *d.GoogleCalendarSettings
		out.GoogleCalendarSettings = &gs
	}
	return out
}
