package calendar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/existflow/focusboard/internal/logger"
	"github.com/existflow/focusboard/internal/model"
	"github.com/teambition/rrule-go"
)

// maxOccurrences caps recurrence expansion per event.
const maxOccurrences = 1000

// ICSProvider reads events from an iCalendar subscription URL. It cannot
// create events.
type ICSProvider struct {
	url        string
	httpClient *http.Client
}

// NewICSProvider creates a read-only provider for url.
func NewICSProvider(url string) *ICSProvider {
	return &ICSProvider{url: url, httpClient: &http.Client{Timeout: 30 * time.Second}}
}

func (p *ICSProvider) Name() string { return "ics" }

func (p *ICSProvider) IsConnected() bool { return p.url != "" }

func (p *ICSProvider) CreateEvent(context.Context, ProviderEvent) (ProviderEvent, error) {
	return ProviderEvent{}, ErrReadOnly
}

// ListEvents downloads the feed and expands recurring events inside
// [start, end].
func (p *ICSProvider) ListEvents(ctx context.Context, start, end time.Time) ([]ProviderEvent, error) {
	if !p.IsConnected() {
		return nil, ErrNotConnected
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return ParseICS(body, start, end)
}

// ParseICS parses an iCalendar document and returns the occurrences that
// overlap [start, end]. Recurring instances get the id "<uid>_<start>".
func ParseICS(body []byte, start, end time.Time) ([]ProviderEvent, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse ics: %w", err)
	}

	var out []ProviderEvent
	for _, ve := range cal.Events() {
		occ, err := expandVEvent(ve, start, end)
		if err != nil {
			logger.Debug("Skipping ics event", logger.Err(err))
			continue
		}
		out = append(out, occ...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.DateTime+out[i].Start.Date < out[j].Start.DateTime+out[j].Start.Date
	})
	return out, nil
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func expandVEvent(ve *ical.VEvent, rangeStart, rangeEnd time.Time) ([]ProviderEvent, error) {
	uid := propValue(ve, ical.ComponentPropertyUniqueId)
	if uid == "" {
		return nil, fmt.Errorf("%w: missing UID", ErrInvalidEvent)
	}
	allDay := isAllDay(ve)

	var start, end time.Time
	var err error
	if allDay {
		start, err = ve.GetAllDayStartAt()
	} else {
		start, err = ve.GetStartAt()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidEvent, uid, err)
	}
	if allDay {
		end, err = ve.GetAllDayEndAt()
	} else {
		end, err = ve.GetEndAt()
	}
	if err != nil || end.Before(start) {
		end = start
	}
	duration := end.Sub(start)

	template := ProviderEvent{
		ID:          uid,
		Summary:     propValue(ve, ical.ComponentPropertySummary),
		Description: propValue(ve, ical.ComponentPropertyDescription),
		Location:    propValue(ve, ical.ComponentPropertyLocation),
	}

	raw := propValue(ve, ical.ComponentPropertyRrule)
	if raw == "" {
		if end.Before(rangeStart) || start.After(rangeEnd) {
			return nil, nil
		}
		return []ProviderEvent{occurrence(template, start, end, allDay)}, nil
	}

	rule, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: rrule: %v", ErrInvalidEvent, uid, err)
	}
	rule.DTStart(start)

	var set rrule.Set
	set.RRule(rule)
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, v := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(strings.TrimSpace(v), start.Location()); err == nil {
				set.ExDate(t)
			}
		}
	}

	times := set.Between(rangeStart.Add(-duration), rangeEnd, true)
	if len(times) > maxOccurrences {
		times = times[:maxOccurrences]
	}
	out := make([]ProviderEvent, 0, len(times))
	for _, t := range times {
		pe := occurrence(template, t, t.Add(duration), allDay)
		pe.ID = fmt.Sprintf("%s_%s", uid, t.UTC().Format("20060102T150405Z"))
		out = append(out, pe)
	}
	return out, nil
}

func occurrence(template ProviderEvent, start, end time.Time, allDay bool) ProviderEvent {
	pe := template
	if allDay {
		pe.Start = EventTime{Date: start.Format(model.DateLayout)}
		pe.End = EventTime{Date: end.Format(model.DateLayout)}
		return pe
	}
	pe.Start = EventTime{DateTime: start.Format(time.RFC3339), TimeZone: start.Location().String()}
	pe.End = EventTime{DateTime: end.Format(time.RFC3339), TimeZone: end.Location().String()}
	return pe
}

func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}
