// FilePath: internal/models/models.statistics.go
package models

// StatisticsSummary aggregates a subject's recent completed events over a
// rolling window [now - PeriodHours, now]. Ephemeral: recomputed on every
// read, never persisted or cached across writes.
type StatisticsSummary struct {
	Count               int     `json:"count"`
	AvgDurationSeconds  float64 `json:"avg_duration_seconds"`
	AvgIntervalSeconds  float64 `json:"avg_interval_seconds"`
	LastIntervalSeconds *int64  `json:"last_interval_seconds,omitempty"`
	PeriodHours         float64 `json:"period_hours"`
	EscalationAdvised   bool    `json:"escalation_advised"`
}
