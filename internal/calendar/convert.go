package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/focusboard/internal/model"
)

const statusPrefix = "Status: "

var statusColors = map[model.EventStatus]string{
	model.StatusOnline:  "2",
	model.StatusVideo:   "1",
	model.StatusOffline: "8",
}

// ToProviderEvent converts a local event whose date and times are wall-clock
// values in loc into the provider format.
func ToProviderEvent(e model.CalendarEvent, loc *time.Location) (ProviderEvent, error) {
	if loc == nil {
		loc = time.Local
	}
	start, err := e.Start(loc)
	if err != nil {
		return ProviderEvent{}, err
	}
	end, err := e.End(loc)
	if err != nil {
		return ProviderEvent{}, err
	}
	status := e.Status
	if !status.Valid() {
		status = model.StatusOffline
	}

	return ProviderEvent{
		Summary:     e.Title,
		Description: statusPrefix + string(status),
		Start:       EventTime{DateTime: start.Format(time.RFC3339), TimeZone: loc.String()},
		End:         EventTime{DateTime: end.Format(time.RFC3339), TimeZone: loc.String()},
		ColorID:     statusColors[status],
	}, nil
}

// FromProviderEvent converts a provider event into a local event, reading
// its date and times in the viewer's zone loc.
func FromProviderEvent(pe ProviderEvent, loc *time.Location) (model.CalendarEvent, error) {
	if loc == nil {
		loc = time.Local
	}
	if err := pe.Validate(); err != nil {
		return model.CalendarEvent{}, err
	}
	start, err := pe.Start.instant(loc)
	if err != nil {
		return model.CalendarEvent{}, fmt.Errorf("%w: start: %v", ErrInvalidEvent, err)
	}
	end, err := pe.End.instant(loc)
	if err != nil {
		return model.CalendarEvent{}, fmt.Errorf("%w: end: %v", ErrInvalidEvent, err)
	}

	title := strings.TrimSpace(pe.Summary)
	if title == "" {
		title = "(No title)"
	}
	endClock := end.Format(model.ClockLayout)
	if pe.End.DateTime == "" {
		endClock = "00:00"
	}

	return model.CalendarEvent{
		ID:        pe.ID,
		Title:     title,
		Date:      start.Format(model.DateLayout),
		StartTime: start.Format(model.ClockLayout),
		EndTime:   endClock,
		Status:    DecodeStatus(pe.Description, pe.ColorID),
	}, nil
}

// DecodeStatus recovers the attendance status from a "Status: <s>" line in
// the description, then a bare status word, then the color id, defaulting
// to offline.
func DecodeStatus(description, colorID string) model.EventStatus {
	marker := strings.TrimSpace(statusPrefix)
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < len(marker) || !strings.EqualFold(line[:len(marker)], marker) {
			continue
		}
		s := model.EventStatus(strings.ToLower(strings.TrimSpace(line[len(marker):])))
		if s.Valid() {
			return s
		}
	}

	desc := strings.ToLower(description)
	for _, s := range []model.EventStatus{model.StatusOnline, model.StatusVideo, model.StatusOffline} {
		if strings.Contains(desc, string(s)) {
			return s
		}
	}
	for s, c := range statusColors {
		if c == colorID {
			return s
		}
	}
	return model.StatusOffline
}

func (t EventTime) instant(loc *time.Location) (time.Time, error) {
	if t.DateTime != "" {
		v, err := time.Parse(time.RFC3339, t.DateTime)
		if err != nil {
			return time.Time{}, err
		}
		return v.In(loc), nil
	}
	return time.ParseInLocation(model.DateLayout, t.Date, loc)
}

func (t EventTime) empty() bool {
	return t.DateTime == "" && t.Date == ""
}

// Validate checks the fields every provider event must carry.
func (pe ProviderEvent) Validate() error {
	switch {
	case strings.TrimSpace(pe.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidEvent)
	case pe.Start.empty():
		return fmt.Errorf("%w: %s: missing start", ErrInvalidEvent, pe.ID)
	case pe.End.empty():
		return fmt.Errorf("%w: %s: missing end", ErrInvalidEvent, pe.ID)
	}
	return nil
}

// ParseProviderEvent decodes and validates a single raw provider event.
func ParseProviderEvent(raw []byte) (ProviderEvent, error) {
	var pe ProviderEvent
	if err := json.Unmarshal(raw, &pe); err != nil {
		return ProviderEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := pe.Validate(); err != nil {
		return ProviderEvent{}, err
	}
	if _, err := pe.Start.instant(time.UTC); err != nil {
		return ProviderEvent{}, fmt.Errorf("%w: %s: start: %v", ErrInvalidEvent, pe.ID, err)
	}
	if _, err := pe.End.instant(time.UTC); err != nil {
		return ProviderEvent{}, fmt.Errorf("%w: %s: end: %v", ErrInvalidEvent, pe.ID, err)
	}
	return pe, nil
}

// ParseProviderEvents decodes a list response ({"items": [...]}) and keeps
// the valid items. Invalid items are counted in rejected; only a malformed
// envelope is an error.
func ParseProviderEvents(raw []byte) (events []ProviderEvent, rejected int, err error) {
	var envelope struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, 0, fmt.Errorf("decode event list: %w", err)
	}
	for _, item := range envelope.Items {
		pe, err := ParseProviderEvent(item)
		if err != nil {
			rejected++
			continue
		}
		events = append(events, pe)
	}
	return events, rejected, nil
}
