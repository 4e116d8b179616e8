// FilePath: internal/timeline/timeline.go

// Package timeline holds the pure computation core of the tracker: derived
// per-event fields, rolling-window statistics and the elapsed-time tick.
// Nothing in this package performs I/O or mutates its input; malformed input
// degrades to zeroed or undefined values instead of failing, because these
// results feed live displays.
package timeline

import (
	"fmt"
	"sort"

	"github.com/ayumine/cradlelog/internal/models"
)

// UndefinedDisplay is rendered where a duration or interval is undefined,
// e.g. for a still-ongoing event or the first event of a stream.
const UndefinedDisplay = "-"

// ComputeDerivedFields enriches raw events into view records. Events are
// ordered ascending by start time (ties broken by id) and each view carries
// the event's duration and its start-to-start interval from the
// chronologically preceding event of the same stream. The first event of
// the input has no interval; an ongoing event has no duration. Idempotent:
// the input slice is not modified and equal input yields equal output.
func ComputeDerivedFields(events []*models.TimedEvent) []*models.EventView {
	ordered := make([]*models.TimedEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].StartTime.Equal(ordered[j].StartTime) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].StartTime.Before(ordered[j].StartTime)
	})

	views := make([]*models.EventView, 0, len(ordered))
	for i, event := range ordered {
		view := &models.EventView{
			ID:        event.ID,
			SubjectID: event.SubjectID,
			Kind:      event.Kind,
			StartTime: event.StartTime,
			EndTime:   event.EndTime,
			Notes:     event.Notes,
			Ongoing:   event.IsOngoing(),
		}

		if event.EndTime != nil {
			duration := event.EndTime.Sub(event.StartTime).Milliseconds() / 1000
			if duration < 0 {
				duration = 0
			}
			view.DurationSeconds = &duration
		}

		if i > 0 {
			interval := event.StartTime.Sub(ordered[i-1].StartTime).Milliseconds() / 1000
			if interval < 0 {
				interval = 0
			}
			view.IntervalSeconds = &interval
		}

		view.DurationDisplay = FormatSeconds(view.DurationSeconds)
		view.IntervalDisplay = FormatSeconds(view.IntervalSeconds)
		views = append(views, view)
	}

	return views
}

// FormatSeconds renders a second count as "m:ss" (75 -> "1:15"). A nil
// value renders as the undefined sentinel.
func FormatSeconds(seconds *int64) string {
	if seconds == nil {
		return UndefinedDisplay
	}
	return FormatElapsed(*seconds)
}

// FormatElapsed renders a non-optional second count as "m:ss". Negative
// values clamp to "0:00".
func FormatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
