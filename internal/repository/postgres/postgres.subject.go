// FilePath: internal/repository/postgres/postgres.subject.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/ayumine/cradlelog/internal/database"
	"github.com/ayumine/cradlelog/internal/errors"
	"github.com/ayumine/cradlelog/internal/models"
)

type SubjectRepo struct {
	PostgresBaseRepo
}

func NewSubjectRepository(db database.DB) (*SubjectRepo, error) {
	repo := &SubjectRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *SubjectRepo) initializeSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS subjects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			birth_date TIMESTAMPTZ,
			due_date TIMESTAMPTZ,
			notes TEXT NOT NULL DEFAULT '',
			medical_notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`

	if _, err := r.db.GetDB().Exec(query); err != nil {
		return errors.NewDatabaseError("failed to initialize subjects schema", err)
	}
	return nil
}

func (r *SubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	query := `
		INSERT INTO subjects (
			id, name, birth_date, due_date, notes, medical_notes,
			created_at, updated_at
		) VALUES (
			:id, :name, :birth_date, :due_date, :notes, :medical_notes,
			:created_at, :updated_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, subject)
	if err != nil {
		return errors.NewDatabaseError("failed to create subject", err)
	}
	return nil
}

func (r *SubjectRepo) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject := &models.Subject{}
	query := `SELECT * FROM subjects WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, subject, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("subject not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get subject", err)
	}
	return subject, nil
}

func (r *SubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	query := `
		UPDATE subjects SET
			name = :name,
			birth_date = :birth_date,
			due_date = :due_date,
			notes = :notes,
			medical_notes = :medical_notes,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.GetDB().NamedExecContext(ctx, query, subject)
	if err != nil {
		return errors.NewDatabaseError("failed to update subject", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("subject not found", nil)
	}

	return nil
}

func (r *SubjectRepo) Delete(ctx context.Context, id string, tx database.Transaction) error {
	query := `DELETE FROM subjects WHERE id = $1`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.ExecContext(ctx, query, id)
	} else {
		result, err = r.db.GetDB().ExecContext(ctx, query, id)
	}
	if err != nil {
		return errors.NewDatabaseError("failed to delete subject", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("subject not found", nil)
	}

	return nil
}

func (r *SubjectRepo) List(ctx context.Context, offset, limit int) ([]*models.Subject, error) {
	subjects := []*models.Subject{}
	query := `SELECT * FROM subjects ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	err := r.db.GetDB().SelectContext(ctx, &subjects, query, limit, offset)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list subjects", err)
	}

	return subjects, nil
}
