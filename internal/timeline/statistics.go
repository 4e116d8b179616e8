// FilePath: internal/timeline/statistics.go
package timeline

import (
	"time"

	"github.com/ayumine/cradlelog/internal/models"
)

// DefaultPeriodHours is the rolling statistics window width used when the
// caller supplies none.
const DefaultPeriodHours = 1.0

// escalationMinCount is the minimum completed-event count before the
// advisory escalation flag can be raised.
const escalationMinCount = 3

// ComputeStatistics summarizes a stream's recent activity over the rolling
// window [now - periodHours, now]. The views must come from
// ComputeDerivedFields over the stream's full (or since-bounded) history so
// that every interval was computed against the true chronological
// predecessor rather than the window-filtered one.
//
// Count and the averages cover completed events whose start time lies in
// the window; averages are 0 when no qualifying denominator exists.
// LastIntervalSeconds is the interval of the most recent in-window event,
// ongoing or not, and nil when undefined. Summaries are recomputed on every
// read and never cached: any lifecycle mutation invalidates them.
func ComputeStatistics(views []*models.EventView, now time.Time, periodHours float64) *models.StatisticsSummary {
	if periodHours <= 0 {
		periodHours = DefaultPeriodHours
	}
	windowStart := now.Add(-time.Duration(periodHours * float64(time.Hour)))

	summary := &models.StatisticsSummary{PeriodHours: periodHours}

	var (
		durationSum   int64
		durationCount int
		intervalSum   int64
		intervalCount int
		latest        *models.EventView
	)

	for _, view := range views {
		if view.StartTime.Before(windowStart) || view.StartTime.After(now) {
			continue
		}

		if latest == nil || view.StartTime.After(latest.StartTime) {
			latest = view
		}

		if view.Ongoing {
			continue
		}

		summary.Count++
		if view.DurationSeconds != nil {
			durationSum += *view.DurationSeconds
			durationCount++
		}
		if view.IntervalSeconds != nil {
			intervalSum += *view.IntervalSeconds
			intervalCount++
		}
	}

	if durationCount > 0 {
		summary.AvgDurationSeconds = float64(durationSum) / float64(durationCount)
	}
	if intervalCount > 0 {
		summary.AvgIntervalSeconds = float64(intervalSum) / float64(intervalCount)
	}
	if latest != nil && latest.IntervalSeconds != nil {
		last := *latest.IntervalSeconds
		summary.LastIntervalSeconds = &last
	}

	summary.EscalationAdvised = EscalationAdvised(summary)
	return summary
}

// EscalationAdvised reports whether recent activity is frequent and regular
// enough to suggest contacting a caregiver. Advisory only: a pure function
// of the summary that never blocks an operation or touches stored data.
func EscalationAdvised(summary *models.StatisticsSummary) bool {
	return summary.Count >= escalationMinCount && summary.AvgIntervalSeconds > 0
}
