// FilePath: internal/tracker/tracker.lifecycle_test.go
package tracker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ayumine/cradlelog/internal/errors"
	"github.com/ayumine/cradlelog/internal/models"
)

func TestStartEvent(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	event, err := svc.StartEvent(ctx, "sub_1", models.KindContraction)
	if err != nil {
		t.Fatalf("StartEvent() error = %v", err)
	}
	if !strings.HasPrefix(event.ID, "evt") {
		t.Errorf("event ID = %q, want evt prefix", event.ID)
	}
	if !event.IsOngoing() {
		t.Error("started event is not ongoing")
	}
	if event.StartTime.IsZero() {
		t.Error("started event has zero start time")
	}

	ongoing, err := svc.Events.FindOngoing(ctx, "sub_1", models.KindContraction)
	if err != nil {
		t.Fatalf("FindOngoing() error = %v", err)
	}
	if ongoing == nil || ongoing.ID != event.ID {
		t.Errorf("FindOngoing() = %v, want event %s", ongoing, event.ID)
	}
}

func TestStartEvent_ConflictWhenOngoingExists(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.StartEvent(ctx, "sub_1", models.KindContraction)
	if err != nil {
		t.Fatalf("first StartEvent() error = %v", err)
	}

	_, err = svc.StartEvent(ctx, "sub_1", models.KindContraction)
	if !errors.IsConflict(err) {
		t.Fatalf("second StartEvent() error = %v, want conflict", err)
	}

	apiErr := err.(*errors.APIError)
	details, ok := apiErr.Details.(map[string]string)
	if !ok || details["ongoing_event_id"] != first.ID {
		t.Errorf("conflict details = %v, want ongoing_event_id %s", apiErr.Details, first.ID)
	}
}

func TestStartEvent_StreamsAreIndependent(t *testing.T) {
	svc, _, subjects, _ := newTestService()
	ctx := context.Background()
	subjects.subjects["sub_2"] = &models.Subject{ID: "sub_2", Name: "Other"}

	if _, err := svc.StartEvent(ctx, "sub_1", models.KindContraction); err != nil {
		t.Fatalf("StartEvent(contraction) error = %v", err)
	}

	// A different kind on the same subject and the same kind on a different
	// subject are separate streams.
	if _, err := svc.StartEvent(ctx, "sub_1", models.KindSleep); err != nil {
		t.Errorf("StartEvent(sleep, same subject) error = %v, want nil", err)
	}
	if _, err := svc.StartEvent(ctx, "sub_2", models.KindContraction); err != nil {
		t.Errorf("StartEvent(contraction, other subject) error = %v, want nil", err)
	}
}

func TestStartEvent_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.StartEvent(ctx, "sub_1", models.EventKind("nap"))
	if !errors.IsValidation(err) {
		t.Errorf("StartEvent(unknown kind) error = %v, want validation", err)
	}

	_, err = svc.StartEvent(ctx, "sub_missing", models.KindContraction)
	if !errors.IsNotFound(err) {
		t.Errorf("StartEvent(unknown subject) error = %v, want not found", err)
	}
}

func TestEndEvent(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	event, err := svc.StartEvent(ctx, "sub_1", models.KindContraction)
	if err != nil {
		t.Fatalf("StartEvent() error = %v", err)
	}

	ended, err := svc.EndEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("EndEvent() error = %v", err)
	}
	if ended.EndTime == nil {
		t.Fatal("ended event still has nil end time")
	}
	if ended.EndTime.Before(ended.StartTime) {
		t.Error("end time is before start time")
	}

	// A completed stream accepts a new start.
	if _, err := svc.StartEvent(ctx, "sub_1", models.KindContraction); err != nil {
		t.Errorf("StartEvent() after end error = %v, want nil", err)
	}
}

func TestEndEvent_InvalidState(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	event, err := svc.StartEvent(ctx, "sub_1", models.KindContraction)
	if err != nil {
		t.Fatalf("StartEvent() error = %v", err)
	}
	if _, err := svc.EndEvent(ctx, event.ID); err != nil {
		t.Fatalf("EndEvent() error = %v", err)
	}

	_, err = svc.EndEvent(ctx, event.ID)
	if !errors.IsInvalidState(err) {
		t.Errorf("EndEvent(completed event) error = %v, want invalid state", err)
	}

	_, err = svc.EndEvent(ctx, "evt_missing")
	if !errors.IsNotFound(err) {
		t.Errorf("EndEvent(unknown id) error = %v, want not found", err)
	}
}

func TestCreateEntry(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	start := time.Now().UTC().Add(-time.Hour)
	end := start.Add(90 * time.Second)

	event, err := svc.CreateEntry(ctx, "sub_1", models.KindSleep, start, &end, "afternoon nap")
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	if event.IsOngoing() {
		t.Error("back-entry with end time is ongoing")
	}
	if event.Notes != "afternoon nap" {
		t.Errorf("Notes = %q, want %q", event.Notes, "afternoon nap")
	}
}

func TestCreateEntry_BackEntryBypassesInvariant(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.StartEvent(ctx, "sub_1", models.KindContraction); err != nil {
		t.Fatalf("StartEvent() error = %v", err)
	}

	// Logging a completed past event must not collide with the live one.
	start := time.Now().UTC().Add(-2 * time.Hour)
	end := start.Add(time.Minute)
	if _, err := svc.CreateEntry(ctx, "sub_1", models.KindContraction, start, &end, ""); err != nil {
		t.Errorf("CreateEntry(completed back-entry) error = %v, want nil", err)
	}

	// An open manual entry is subject to the same invariant as StartEvent.
	_, err := svc.CreateEntry(ctx, "sub_1", models.KindContraction, start, nil, "")
	if !errors.IsConflict(err) {
		t.Errorf("CreateEntry(open entry with ongoing) error = %v, want conflict", err)
	}
}

func TestCreateEntry_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	start := time.Now().UTC()
	badEnd := start.Add(-time.Minute)

	tests := []struct {
		name string
		call func() error
	}{
		{"unknown kind", func() error {
			_, err := svc.CreateEntry(ctx, "sub_1", models.EventKind("nap"), start, nil, "")
			return err
		}},
		{"zero start time", func() error {
			_, err := svc.CreateEntry(ctx, "sub_1", models.KindSleep, time.Time{}, nil, "")
			return err
		}},
		{"end before start", func() error {
			_, err := svc.CreateEntry(ctx, "sub_1", models.KindSleep, start, &badEnd, "")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.IsValidation(err) {
				t.Errorf("error = %v, want validation", err)
			}
		})
	}
}

func TestUpdateEvent(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	start := time.Now().UTC().Add(-time.Hour)
	end := start.Add(time.Minute)
	event, err := svc.CreateEntry(ctx, "sub_1", models.KindContraction, start, &end, "")
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}

	notes := "strong"
	newEnd := start.Add(2 * time.Minute)
	updated, err := svc.UpdateEvent(ctx, event.ID, &models.EventPatch{
		EndTime: &newEnd,
		Notes:   &notes,
	})
	if err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}
	if updated.Notes != "strong" {
		t.Errorf("Notes = %q, want %q", updated.Notes, "strong")
	}
	if updated.EndTime == nil || !updated.EndTime.Equal(newEnd) {
		t.Errorf("EndTime = %v, want %v", updated.EndTime, newEnd)
	}
}

func TestUpdateEvent_RejectsInvertedTimes(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	start := time.Now().UTC().Add(-time.Hour)
	end := start.Add(time.Minute)
	event, err := svc.CreateEntry(ctx, "sub_1", models.KindContraction, start, &end, "")
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}

	// Moving the start past the existing end must fail on the merged record.
	badStart := end.Add(time.Minute)
	_, err = svc.UpdateEvent(ctx, event.ID, &models.EventPatch{StartTime: &badStart})
	if !errors.IsValidation(err) {
		t.Errorf("UpdateEvent(start after end) error = %v, want validation", err)
	}
}

func TestUpdateEvent_ClearEndTime(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	start := time.Now().UTC().Add(-time.Hour)
	end := start.Add(time.Minute)
	event, err := svc.CreateEntry(ctx, "sub_1", models.KindContraction, start, &end, "")
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}

	// With no other ongoing event, clearing the end time reopens it.
	reopened, err := svc.UpdateEvent(ctx, event.ID, &models.EventPatch{ClearEndTime: true})
	if err != nil {
		t.Fatalf("UpdateEvent(ClearEndTime) error = %v", err)
	}
	if !reopened.IsOngoing() {
		t.Error("event not ongoing after ClearEndTime")
	}

	// Complete it again, start a live event, then try to reopen: the stream
	// would have two ongoing events, so the edit is rejected.
	if _, err := svc.EndEvent(ctx, event.ID); err != nil {
		t.Fatalf("EndEvent() error = %v", err)
	}
	if _, err := svc.StartEvent(ctx, "sub_1", models.KindContraction); err != nil {
		t.Fatalf("StartEvent() error = %v", err)
	}
	_, err = svc.UpdateEvent(ctx, event.ID, &models.EventPatch{ClearEndTime: true})
	if !errors.IsConflict(err) {
		t.Errorf("UpdateEvent(ClearEndTime with ongoing) error = %v, want conflict", err)
	}
}

func TestDeleteEvent(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	event, err := svc.StartEvent(ctx, "sub_1", models.KindContraction)
	if err != nil {
		t.Fatalf("StartEvent() error = %v", err)
	}

	if err := svc.DeleteEvent(ctx, event.ID, false); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}

	// Deleting the ongoing event frees the stream.
	if _, err := svc.StartEvent(ctx, "sub_1", models.KindContraction); err != nil {
		t.Errorf("StartEvent() after delete error = %v, want nil", err)
	}

	// Retried deletes succeed silently unless strict.
	if err := svc.DeleteEvent(ctx, event.ID, false); err != nil {
		t.Errorf("repeated DeleteEvent() error = %v, want nil", err)
	}
	if err := svc.DeleteEvent(ctx, event.ID, true); !errors.IsNotFound(err) {
		t.Errorf("strict DeleteEvent(missing) error = %v, want not found", err)
	}
}

func TestListEvents(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	base := time.Now().UTC().Add(-30 * time.Minute)
	for i := 0; i < 4; i++ {
		start := base.Add(time.Duration(i) * 5 * time.Minute)
		end := start.Add(time.Minute)
		if _, err := svc.CreateEntry(ctx, "sub_1", models.KindContraction, start, &end, ""); err != nil {
			t.Fatalf("CreateEntry(%d) error = %v", i, err)
		}
	}

	views, err := svc.ListEvents(ctx, "sub_1", models.KindContraction, time.Time{}, 0)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(views) != 4 {
		t.Fatalf("got %d views, want 4", len(views))
	}
	for i := 1; i < len(views); i++ {
		if views[i].StartTime.Before(views[i-1].StartTime) {
			t.Error("views not ascending by start time")
		}
		if views[i].IntervalSeconds == nil || *views[i].IntervalSeconds != 300 {
			t.Errorf("views[%d].IntervalSeconds = %v, want 300", i, views[i].IntervalSeconds)
		}
	}

	// The limit keeps the most recent records, and their intervals still
	// reflect the true predecessors.
	limited, err := svc.ListEvents(ctx, "sub_1", models.KindContraction, time.Time{}, 2)
	if err != nil {
		t.Fatalf("ListEvents(limit) error = %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("got %d limited views, want 2", len(limited))
	}
	if !limited[1].StartTime.Equal(views[3].StartTime) {
		t.Error("limited list does not end with the most recent event")
	}
	if limited[0].IntervalSeconds == nil || *limited[0].IntervalSeconds != 300 {
		t.Errorf("limited[0].IntervalSeconds = %v, want 300", limited[0].IntervalSeconds)
	}
}

func TestGetStatistics(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		start := now.Add(time.Duration(-30+i*10) * time.Minute)
		end := start.Add(time.Minute)
		if _, err := svc.CreateEntry(ctx, "sub_1", models.KindContraction, start, &end, ""); err != nil {
			t.Fatalf("CreateEntry(%d) error = %v", i, err)
		}
	}

	// periodHours <= 0 falls back to the configured window.
	summary, err := svc.GetStatistics(ctx, "sub_1", models.KindContraction, 0)
	if err != nil {
		t.Fatalf("GetStatistics() error = %v", err)
	}
	if summary.PeriodHours != 1.0 {
		t.Errorf("PeriodHours = %v, want configured 1.0", summary.PeriodHours)
	}
	if summary.Count != 3 {
		t.Errorf("Count = %d, want 3", summary.Count)
	}
	if summary.AvgDurationSeconds != 60 {
		t.Errorf("AvgDurationSeconds = %v, want 60", summary.AvgDurationSeconds)
	}
	if summary.AvgIntervalSeconds != 600 {
		t.Errorf("AvgIntervalSeconds = %v, want 600", summary.AvgIntervalSeconds)
	}
	if !summary.EscalationAdvised {
		t.Error("EscalationAdvised = false, want true for three regular events")
	}

	_, err = svc.GetStatistics(ctx, "sub_1", models.EventKind("nap"), 1.0)
	if !errors.IsValidation(err) {
		t.Errorf("GetStatistics(unknown kind) error = %v, want validation", err)
	}
}

func TestLifecycleNotifications(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	started := make(chan string, 1)
	svc.OnTrackerEvent("event.started", func(id string) {
		select {
		case started <- id:
		default:
		}
	})

	event, err := svc.StartEvent(ctx, "sub_1", models.KindContraction)
	if err != nil {
		t.Fatalf("StartEvent() error = %v", err)
	}

	select {
	case id := <-started:
		if id != event.ID {
			t.Errorf("notification id = %q, want %q", id, event.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event.started notification delivered")
	}
}
