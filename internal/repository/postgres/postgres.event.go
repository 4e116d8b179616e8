// FilePath: internal/repository/postgres/postgres.event.go
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/ayumine/cradlelog/internal/database"
	"github.com/ayumine/cradlelog/internal/errors"
	"github.com/ayumine/cradlelog/internal/models"
	"github.com/lib/pq"
)

// pqUniqueViolation is the PostgreSQL error code for unique_violation.
const pqUniqueViolation = "23505"

type EventRepo struct {
	PostgresBaseRepo
}

func NewEventRepository(db database.DB) (*EventRepo, error) {
	repo := &EventRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *EventRepo) initializeSchema() error {
	// The partial unique index is the authoritative single-ongoing
	// invariant: at most one row with a NULL end_time per (subject, kind).
	queries := []string{
		`CREATE TABLE IF NOT EXISTS timed_events (
			id TEXT PRIMARY KEY,
			subject_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			CHECK (end_time IS NULL OR end_time >= start_time)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_timed_events_single_ongoing
			ON timed_events(subject_id, kind) WHERE end_time IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_timed_events_subject_start
			ON timed_events(subject_id, kind, start_time)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize events schema", err)
		}
	}
	return nil
}

// wrapWriteErr maps driver failures onto the service error taxonomy. A
// unique violation on the ongoing index means a second ongoing event was
// attempted; deadline errors are retryable. Drivers wrap both, so the
// chain is inspected rather than the top error alone.
func wrapWriteErr(msg string, err error) error {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return errors.NewConflictError("an ongoing event already exists for this subject", err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.NewTransientError("event store did not respond in time", err)
	}
	return errors.NewDatabaseError(msg, err)
}

func (r *EventRepo) Insert(ctx context.Context, event *models.TimedEvent) error {
	query := `
		INSERT INTO timed_events (
			id, subject_id, kind, start_time, end_time, notes,
			created_at, updated_at
		) VALUES (
			:id, :subject_id, :kind, :start_time, :end_time, :notes,
			:created_at, :updated_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, event)
	if err != nil {
		return wrapWriteErr("failed to insert event", err)
	}
	return nil
}

func (r *EventRepo) Get(ctx context.Context, id string) (*models.TimedEvent, error) {
	event := &models.TimedEvent{}
	query := `SELECT * FROM timed_events WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, event, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("event not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get event", err)
	}
	return event, nil
}

func (r *EventRepo) Update(ctx context.Context, event *models.TimedEvent) error {
	query := `
		UPDATE timed_events SET
			start_time = :start_time,
			end_time = :end_time,
			notes = :notes,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.GetDB().NamedExecContext(ctx, query, event)
	if err != nil {
		return wrapWriteErr("failed to update event", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("event not found", nil)
	}

	return nil
}

// Complete closes an ongoing event. The end_time IS NULL guard makes the
// ongoing check and the write a single atomic step, so a racing second End
// loses cleanly.
func (r *EventRepo) Complete(ctx context.Context, id string, endTime time.Time) (*models.TimedEvent, error) {
	event := &models.TimedEvent{}
	query := `
		UPDATE timed_events
		SET end_time = $2, updated_at = $2
		WHERE id = $1 AND end_time IS NULL
		RETURNING *`

	err := r.db.GetDB().GetContext(ctx, event, query, id, endTime)
	if err == nil {
		return event, nil
	}
	if err != sql.ErrNoRows {
		return nil, wrapWriteErr("failed to complete event", err)
	}

	// No row matched: either the id is unknown or the event is already
	// completed. Distinguish for the caller.
	if _, getErr := r.Get(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, errors.NewInvalidStateError("event is already completed", nil)
}

func (r *EventRepo) Delete(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM timed_events WHERE id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return false, errors.NewDatabaseError("failed to delete event", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewDatabaseError("failed to get rows affected", err)
	}

	return rows > 0, nil
}

func (r *EventRepo) FindOngoing(ctx context.Context, subjectID string, kind models.EventKind) (*models.TimedEvent, error) {
	event := &models.TimedEvent{}
	query := `
		SELECT * FROM timed_events
		WHERE subject_id = $1 AND kind = $2 AND end_time IS NULL`

	err := r.db.GetDB().GetContext(ctx, event, query, subjectID, kind)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.NewDatabaseError("failed to find ongoing event", err)
	}
	return event, nil
}

func (r *EventRepo) ListBySubject(ctx context.Context, subjectID string, kind models.EventKind, since time.Time, limit int) ([]*models.TimedEvent, error) {
	events := []*models.TimedEvent{}
	query := `
		SELECT * FROM timed_events
		WHERE subject_id = $1 AND kind = $2 AND start_time >= $3
		ORDER BY start_time ASC, id ASC`
	args := []interface{}{subjectID, kind, since}

	if limit > 0 {
		query += ` LIMIT $4`
		args = append(args, limit)
	}

	err := r.db.GetDB().SelectContext(ctx, &events, query, args...)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list events", err)
	}
	return events, nil
}

func (r *EventRepo) DeleteBySubject(ctx context.Context, subjectID string, tx database.Transaction) error {
	query := `DELETE FROM timed_events WHERE subject_id = $1`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, subjectID)
	} else {
		_, err = r.db.GetDB().ExecContext(ctx, query, subjectID)
	}
	if err != nil {
		return errors.NewDatabaseError("failed to delete subject events", err)
	}
	return nil
}
