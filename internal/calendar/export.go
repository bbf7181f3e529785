package calendar

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/existflow/focusboard/internal/model"
)

// ExportICS writes events as an iCalendar document. Events whose times do
// not parse are skipped and counted.
func ExportICS(w io.Writer, events []model.CalendarEvent, loc *time.Location, now time.Time) (skipped int, err error) {
	if loc == nil {
		loc = time.Local
	}
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//focusboard//calendar export//EN")

	for _, e := range events {
		start, err := e.Start(loc)
		if err != nil {
			skipped++
			continue
		}
		end, err := e.End(loc)
		if err != nil {
			skipped++
			continue
		}

		ev := cal.AddEvent(e.ID)
		ev.SetDtStampTime(now.UTC())
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(e.Title)
		ev.SetDescription(statusPrefix + string(e.Status))
		ev.SetProperty(ical.ComponentPropertyCategories, string(e.Status))
	}

	_, err = io.WriteString(w, cal.Serialize())
	return skipped, err
}
