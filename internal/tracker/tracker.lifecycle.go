// FilePath: internal/tracker/tracker.lifecycle.go
package tracker

import (
	"context"
	"time"

	"github.com/ayumine/cradlelog/internal/errors"
	"github.com/ayumine/cradlelog/internal/models"
	"github.com/ayumine/cradlelog/internal/timeline"
	nuts "github.com/vaudience/go-nuts"
)

// LifecycleService is the start/end/create/update/delete contract for timed
// events. Every write surfaces store errors unmodified; conflict, validation
// and invalid-state failures are never retried here.
type LifecycleService interface {
	StartEvent(ctx context.Context, subjectID string, kind models.EventKind) (*models.TimedEvent, error)
	EndEvent(ctx context.Context, eventID string) (*models.TimedEvent, error)
	CreateEntry(ctx context.Context, subjectID string, kind models.EventKind, startTime time.Time, endTime *time.Time, notes string) (*models.TimedEvent, error)
	UpdateEvent(ctx context.Context, eventID string, patch *models.EventPatch) (*models.TimedEvent, error)
	DeleteEvent(ctx context.Context, eventID string, strict bool) error
	ListEvents(ctx context.Context, subjectID string, kind models.EventKind, since time.Time, limit int) ([]*models.EventView, error)
	GetStatistics(ctx context.Context, subjectID string, kind models.EventKind, periodHours float64) (*models.StatisticsSummary, error)
}

// StartEvent opens a new ongoing event for a subject's stream. Fails with a
// conflict error when the stream already has an ongoing event. The store's
// conditional write is the arbiter; the FindOngoing pre-check only
// sharpens the error for the common case and cannot be relied on under
// races.
func (s *TrackerService) StartEvent(ctx context.Context, subjectID string, kind models.EventKind) (*models.TimedEvent, error) {
	if !kind.Valid() {
		return nil, errors.NewValidationError("unknown event kind", nil)
	}
	if _, err := s.Subjects.Get(ctx, subjectID); err != nil {
		return nil, err
	}

	ongoing, err := s.Events.FindOngoing(ctx, subjectID, kind)
	if err != nil {
		return nil, err
	}
	if ongoing != nil {
		return nil, errors.NewConflictError("an ongoing event already exists for this subject", nil).
			WithDetails(map[string]string{"ongoing_event_id": ongoing.ID})
	}

	now := time.Now().UTC()
	event := &models.TimedEvent{
		ID:        nuts.NID("evt", 12),
		SubjectID: subjectID,
		Kind:      kind,
		StartTime: now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Events.Insert(ctx, event); err != nil {
		return nil, err
	}

	nuts.L.Infof("[Lifecycle] Started %s event %s for subject %s", kind, event.ID, subjectID)
	s.emitter.Emit("event.started", event.ID)
	return event, nil
}

// EndEvent completes an ongoing event, setting its end time to now. Fails
// with not-found for an unknown id and invalid-state when the event is
// already completed; the check-and-set is atomic at the store.
func (s *TrackerService) EndEvent(ctx context.Context, eventID string) (*models.TimedEvent, error) {
	event, err := s.Events.Complete(ctx, eventID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	nuts.L.Infof("[Lifecycle] Ended %s event %s for subject %s", event.Kind, event.ID, event.SubjectID)
	s.emitter.Emit("event.ended", event.ID)
	return event, nil
}

// CreateEntry records a manual entry with explicit timestamps. A completed
// back-entry (end time present) bypasses the single-ongoing check; an open
// entry is subject to the same invariant as StartEvent.
func (s *TrackerService) CreateEntry(ctx context.Context, subjectID string, kind models.EventKind, startTime time.Time, endTime *time.Time, notes string) (*models.TimedEvent, error) {
	if !kind.Valid() {
		return nil, errors.NewValidationError("unknown event kind", nil)
	}
	if startTime.IsZero() {
		return nil, errors.NewValidationError("start time is required", nil)
	}
	if endTime != nil && endTime.Before(startTime) {
		return nil, errors.NewValidationError("end time must not be before start time", nil)
	}
	if _, err := s.Subjects.Get(ctx, subjectID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event := &models.TimedEvent{
		ID:        nuts.NID("evt", 12),
		SubjectID: subjectID,
		Kind:      kind,
		StartTime: startTime,
		EndTime:   endTime,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Events.Insert(ctx, event); err != nil {
		return nil, err
	}

	nuts.L.Infof("[Lifecycle] Created manual %s entry %s for subject %s", kind, event.ID, subjectID)
	s.emitter.Emit("event.started", event.ID)
	return event, nil
}

// UpdateEvent applies a partial edit to timestamps or notes. The merged
// record is re-validated; clearing the end time reopens the event and is
// rejected with a conflict error when the stream already has another
// ongoing event (the store's unique index decides under races).
func (s *TrackerService) UpdateEvent(ctx context.Context, eventID string, patch *models.EventPatch) (*models.TimedEvent, error) {
	event, err := s.Events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if patch.StartTime != nil {
		event.StartTime = *patch.StartTime
	}
	if patch.ClearEndTime {
		event.EndTime = nil
	} else if patch.EndTime != nil {
		event.EndTime = patch.EndTime
	}
	if patch.Notes != nil {
		event.Notes = *patch.Notes
	}

	if event.EndTime != nil && event.EndTime.Before(event.StartTime) {
		return nil, errors.NewValidationError("end time must not be before start time", nil)
	}

	if patch.ClearEndTime {
		ongoing, err := s.Events.FindOngoing(ctx, event.SubjectID, event.Kind)
		if err != nil {
			return nil, err
		}
		if ongoing != nil && ongoing.ID != event.ID {
			return nil, errors.NewConflictError("another ongoing event exists for this subject", nil).
				WithDetails(map[string]string{"ongoing_event_id": ongoing.ID})
		}
	}

	event.UpdatedAt = time.Now().UTC()
	if err := s.Events.Update(ctx, event); err != nil {
		return nil, err
	}

	nuts.L.Infof("[Lifecycle] Updated event %s", event.ID)
	return event, nil
}

// DeleteEvent removes an event. Deletes are idempotent by default so a
// retried delete succeeds silently; strict mode reports a missing id as
// not-found.
func (s *TrackerService) DeleteEvent(ctx context.Context, eventID string, strict bool) error {
	existed, err := s.Events.Delete(ctx, eventID)
	if err != nil {
		return err
	}
	if !existed {
		if strict {
			return errors.NewNotFoundError("event not found", nil)
		}
		return nil
	}

	nuts.L.Infof("[Lifecycle] Deleted event %s", eventID)
	s.emitter.Emit("event.deleted", eventID)
	return nil
}

// ListEvents returns enriched view records for a stream, ascending by start
// time. Derived fields are always computed over the store's ascending
// history before the limit is applied, so the interval of the oldest
// returned record still reflects its true predecessor. With limit > 0 the
// most recent records are kept.
func (s *TrackerService) ListEvents(ctx context.Context, subjectID string, kind models.EventKind, since time.Time, limit int) ([]*models.EventView, error) {
	if !kind.Valid() {
		return nil, errors.NewValidationError("unknown event kind", nil)
	}

	events, err := s.Events.ListBySubject(ctx, subjectID, kind, since, 0)
	if err != nil {
		return nil, err
	}

	views := timeline.ComputeDerivedFields(events)
	if limit > 0 && len(views) > limit {
		views = views[len(views)-limit:]
	}
	return views, nil
}

// GetStatistics recomputes the rolling-window summary for a stream from its
// full history. Never cached: every read reflects the latest mutations.
func (s *TrackerService) GetStatistics(ctx context.Context, subjectID string, kind models.EventKind, periodHours float64) (*models.StatisticsSummary, error) {
	if !kind.Valid() {
		return nil, errors.NewValidationError("unknown event kind", nil)
	}
	if periodHours <= 0 {
		periodHours = s.cfg.PeriodHours
	}

	events, err := s.Events.ListBySubject(ctx, subjectID, kind, time.Time{}, 0)
	if err != nil {
		return nil, err
	}

	views := timeline.ComputeDerivedFields(events)
	return timeline.ComputeStatistics(views, time.Now().UTC(), periodHours), nil
}
