// FilePath: internal/tracker/tracker.subject.go
package tracker

import (
	"context"
	"time"

	"github.com/ayumine/cradlelog/internal/errors"
	"github.com/ayumine/cradlelog/internal/models"
	"github.com/itsatony/struccy"
	nuts "github.com/vaudience/go-nuts"
)

// SubjectService handles subject-related business logic
type SubjectService interface {
	CreateSubject(ctx context.Context, subject *models.Subject) error
	GetSubject(ctx context.Context, id string) (*models.Subject, error)
	UpdateSubject(ctx context.Context, subject *models.Subject) error
	DeleteSubject(ctx context.Context, id string) error
	ListSubjects(ctx context.Context, offset, limit int) ([]*models.Subject, error)
}

// CreateSubject creates a new subject with proper validation and initialization
func (s *TrackerService) CreateSubject(ctx context.Context, subject *models.Subject) error {
	if subject.Name == "" {
		return errors.NewValidationError("subject name is required", nil)
	}

	if subject.ID == "" {
		subject.ID = nuts.NID("sub", 12)
	}

	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now

	nuts.L.Infof("[SubjectService] Creating new subject: %s (%s)", subject.Name, subject.ID)
	return s.Subjects.Create(ctx, subject)
}

// UpdateSubject updates an existing subject with role-based field access
func (s *TrackerService) UpdateSubject(ctx context.Context, subject *models.Subject) error {
	existing, err := s.Subjects.Get(ctx, subject.ID)
	if err != nil {
		return err
	}

	roles := GetUserRoles(ctx)

	updatedFields, _, err := struccy.UpdateStructFields(existing, subject, roles, true, true)
	if err != nil {
		return errors.NewAuthorizationError("unauthorized field update", err)
	}

	existing.UpdatedAt = time.Now().UTC()

	nuts.L.Infof("[SubjectService] Updating subject %s, fields changed: %v", subject.ID, updatedFields)
	return s.Subjects.Update(ctx, existing)
}

// GetSubject retrieves a subject with role-based field filtering. Fields the
// caller's roles may not read come back zeroed.
func (s *TrackerService) GetSubject(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.Subjects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	roles := GetUserRoles(ctx)

	filtered := &models.Subject{}
	if err := struccy.FilterStructTo(subject, filtered, roles, true); err != nil {
		return nil, errors.NewInternalError("failed to filter subject fields", err)
	}

	return filtered, nil
}

// DeleteSubject removes a subject and its entire event history in one
// transaction.
func (s *TrackerService) DeleteSubject(ctx context.Context, id string) error {
	if _, err := s.Subjects.Get(ctx, id); err != nil {
		return err
	}

	nuts.L.Infof("[SubjectService] Deleting subject: %s", id)
	return s.Cleanup.DeleteSubject(ctx, id)
}

// ListSubjects retrieves a paginated list of subjects
func (s *TrackerService) ListSubjects(ctx context.Context, offset, limit int) ([]*models.Subject, error) {
	if limit <= 0 || limit > 100 {
		limit = 50 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	return s.Subjects.List(ctx, offset, limit)
}
