// FilePath: internal/tracker/tracker.selection.go
package tracker

import (
	"context"

	"github.com/ayumine/cradlelog/internal/errors"
	nuts "github.com/vaudience/go-nuts"
)

// Active-subject selection: which subject a user is currently tracking.
// Process-wide state with explicit get/set and a durable mirror (the
// selection repository), so a relaunch restores the choice. Injected
// through the service, never a package-level singleton.

// ActiveSubject returns the calling user's selected subject id. Fails with
// not-found when no selection has been made yet.
func (s *TrackerService) ActiveSubject(ctx context.Context) (string, error) {
	userID := GetUserID(ctx)
	if userID == "" {
		return "", errors.NewAuthError("no authenticated user", nil)
	}
	return s.Selections.Get(ctx, userID)
}

// SetActiveSubject selects a subject for the calling user after verifying
// the subject exists.
func (s *TrackerService) SetActiveSubject(ctx context.Context, subjectID string) error {
	userID := GetUserID(ctx)
	if userID == "" {
		return errors.NewAuthError("no authenticated user", nil)
	}

	if _, err := s.Subjects.Get(ctx, subjectID); err != nil {
		return err
	}

	if err := s.Selections.Set(ctx, userID, subjectID); err != nil {
		return err
	}

	nuts.L.Infof("[Selection] User %s selected subject %s", userID, subjectID)
	return nil
}

// ClearActiveSubject drops the calling user's selection, e.g. after the
// selected subject was deleted.
func (s *TrackerService) ClearActiveSubject(ctx context.Context) error {
	userID := GetUserID(ctx)
	if userID == "" {
		return errors.NewAuthError("no authenticated user", nil)
	}
	return s.Selections.Clear(ctx, userID)
}
