package calendar

import "github.com/existflow/focusboard/internal/model"

// MergeRemote returns local followed by every remote event whose id is not
// already present. Local copies win; the result never holds two events with
// the same id, so merging the same batch twice is a no-op.
func MergeRemote(local, remote []model.CalendarEvent) []model.CalendarEvent {
	seen := make(map[string]struct{}, len(local)+len(remote))
	out := make([]model.CalendarEvent, 0, len(local)+len(remote))
	for _, e := range local {
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	for _, e := range remote {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}
