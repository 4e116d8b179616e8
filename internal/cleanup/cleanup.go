package cleanup

import (
	"context"
	"fmt"

	"github.com/ayumine/cradlelog/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// CleanupService coordinates deletion of a subject and its event history
type CleanupService struct {
	subjects repository.SubjectRepository
	events   repository.EventRepository
	emitter  *nuts.EventEmitter
}

// New creates a new CleanupService
func New(
	subjects repository.SubjectRepository,
	events repository.EventRepository,
	emitter *nuts.EventEmitter,
) *CleanupService {
	return &CleanupService{
		subjects: subjects,
		events:   events,
		emitter:  emitter,
	}
}

// DeleteSubject deletes a subject and all its timed events in one
// transaction. Statistics need no cleanup: they are derived on read and
// never persisted.
func (s *CleanupService) DeleteSubject(ctx context.Context, subjectID string) error {
	tx, err := s.subjects.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	if err := s.events.DeleteBySubject(ctx, subjectID, tx); err != nil {
		return fmt.Errorf("failed to delete subject events: %w", err)
	}

	if err := s.subjects.Delete(ctx, subjectID, tx); err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.emitter.Emit("subject.deleted", subjectID)
	return nil
}
