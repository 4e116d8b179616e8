// FilePath: internal/models/models.event.go
package models

import "time"

type EventKind string

const (
	KindContraction EventKind = "contraction"
	KindSleep       EventKind = "sleep"
	KindFeeding     EventKind = "feeding"
)

// Valid reports whether k is one of the tracked event kinds.
func (k EventKind) Valid() bool {
	switch k {
	case KindContraction, KindSleep, KindFeeding:
		return true
	}
	return false
}

// TimedEvent is one occurrence of a tracked event (a contraction, a sleep
// session, a feeding). A nil EndTime means the event is still ongoing.
type TimedEvent struct {
	ID        string     `json:"id" db:"id"`
	SubjectID string     `json:"subject_id" db:"subject_id"`
	Kind      EventKind  `json:"kind" db:"kind"`
	StartTime time.Time  `json:"start_time" db:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" db:"end_time"`
	Notes     string     `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// IsOngoing reports whether the event has not been ended yet.
func (e *TimedEvent) IsOngoing() bool {
	return e.EndTime == nil
}

// EventPatch carries a partial update for a timed event. Nil fields are left
// untouched; ClearEndTime reopens a completed event, subject to the
// single-ongoing invariant.
type EventPatch struct {
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	ClearEndTime bool       `json:"clear_end_time,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

// EventView is a TimedEvent enriched with derived fields for presentation.
// Derived values are computed on read and never persisted.
type EventView struct {
	ID              string     `json:"id"`
	SubjectID       string     `json:"subject_id"`
	Kind            EventKind  `json:"kind"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Ongoing         bool       `json:"ongoing"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
	DurationDisplay string     `json:"duration_display"`
	IntervalSeconds *int64     `json:"interval_seconds,omitempty"`
	IntervalDisplay string     `json:"interval_display"`
}
