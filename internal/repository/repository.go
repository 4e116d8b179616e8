// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ayumine/cradlelog/internal/database"
	"github.com/ayumine/cradlelog/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// EventRepository defines the interface for timed event storage. The store
// is the authoritative arbiter of the single-ongoing invariant: Insert and
// Update must reject (with a conflict error) any write that would leave a
// (subject, kind) stream with two ongoing events.
type EventRepository interface {
	database.Repository
	Insert(ctx context.Context, event *models.TimedEvent) error
	Get(ctx context.Context, id string) (*models.TimedEvent, error)
	Update(ctx context.Context, event *models.TimedEvent) error
	// Complete sets the end time of a still-ongoing event. Returns a
	// not-found error for a missing id and an invalid-state error when the
	// event is already completed, atomically.
	Complete(ctx context.Context, id string, endTime time.Time) (*models.TimedEvent, error)
	// Delete removes an event. The boolean reports whether a row existed.
	Delete(ctx context.Context, id string) (bool, error)
	// FindOngoing returns the ongoing event for a stream, or nil when the
	// stream has none.
	FindOngoing(ctx context.Context, subjectID string, kind models.EventKind) (*models.TimedEvent, error)
	// ListBySubject returns events ascending by start time (ties broken by
	// id). A zero since means the full history; limit <= 0 means no limit.
	ListBySubject(ctx context.Context, subjectID string, kind models.EventKind, since time.Time, limit int) ([]*models.TimedEvent, error)
	DeleteBySubject(ctx context.Context, subjectID string, tx database.Transaction) error
}

// SubjectRepository defines the interface for subject data operations
type SubjectRepository interface {
	database.Repository
	Create(ctx context.Context, subject *models.Subject) error
	Get(ctx context.Context, id string) (*models.Subject, error)
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string, tx database.Transaction) error
	List(ctx context.Context, offset, limit int) ([]*models.Subject, error)
}

// SelectionRepository mirrors each user's active-subject choice to durable
// storage so a relaunch restores it.
type SelectionRepository interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, subjectID string) error
	Clear(ctx context.Context, userID string) error
}
