package assignments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/dbx"
	"github.com/rbustosc/fieldsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, assignment *models.CardAssignment) (*models.CardAssignment, error) {
	query :=
		`INSERT INTO card_assignments (uuid, company_id, card_id, worker_id, date, field_id, task_type_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		assignment.UUID, assignment.CompanyID, assignment.CardID, assignment.WorkerID,
		assignment.Date, assignment.FieldID, assignment.TaskTypeID).
		Scan(&assignment.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return assignment, nil
}

// ActiveByCard returns the non-tombstoned assignment for a card on a date.
// The partial unique index guarantees at most one.
func (r *PostgresRepository) ActiveByCard(ctx context.Context, companyID, cardID int64, date string) (*models.CardAssignment, error) {
	query :=
		`SELECT id, uuid, company_id, card_id, worker_id, date, field_id, task_type_id, deleted_at
		 FROM card_assignments
		 WHERE company_id = $1 AND card_id = $2 AND date = $3 AND deleted_at IS NULL
		 `

	a := &models.CardAssignment{}
	var fieldID, taskTypeID sql.NullInt64
	var deletedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, companyID, cardID, date).Scan(
		&a.ID, &a.UUID, &a.CompanyID, &a.CardID, &a.WorkerID, &a.Date,
		&fieldID, &taskTypeID, &deletedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrCardNotAssigned
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if fieldID.Valid {
		a.FieldID = &fieldID.Int64
	}
	if taskTypeID.Valid {
		a.TaskTypeID = &taskTypeID.Int64
	}
	if deletedAt.Valid {
		a.DeletedAt = &deletedAt.Time
	}
	return a, nil
}

// Tombstone marks the active assignment for a card on a date as deleted.
// Missing or already-tombstoned rows are a no-op, so replays and
// unassign-without-assign converge to the same state.
func (r *PostgresRepository) Tombstone(ctx context.Context, companyID, cardID int64, date string, deletedAt time.Time) error {
	query :=
		`UPDATE card_assignments SET deleted_at = $4
		 WHERE company_id = $1 AND card_id = $2 AND date = $3 AND deleted_at IS NULL
		 `

	if _, err := r.db.ExecContext(ctx, query, companyID, cardID, date, deletedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
