package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/dbx"
	"github.com/rbustosc/fieldsync/internal/device/models"
)

// AssignmentRepo stores the card-to-worker daily assignments. A partial
// unique index on (card_code, date) where deleted_at is null keeps at most
// one active assignment per card per day; unassignment tombstones the row so
// the deletion still propagates through sync.
type AssignmentRepo struct {
	db dbx.DBTX
}

func NewAssignmentRepo(db dbx.DBTX) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

// Insert creates an assignment with synced=0 and a fresh client UUID.
func (r *AssignmentRepo) Insert(ctx context.Context, a *models.CardAssignment) error {
	a.ClientUUID = uuid.NewString()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO card_assignments (client_uuid, card_id, card_code, worker_id, date, field_id, task_type_id, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		a.ClientUUID, a.CardID, a.CardCode, a.WorkerID, a.Date, a.FieldID, a.TaskTypeID)
	if err != nil {
		return storageError("failed to insert assignment", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return storageError("failed to read assignment id", err)
	}
	return nil
}

// ActiveByCard returns the non-tombstoned assignment for (card code, date),
// or common.ErrCardNotAssigned when none exists.
func (r *AssignmentRepo) ActiveByCard(ctx context.Context, cardCode, date string) (*models.CardAssignment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, client_uuid, card_id, card_code, worker_id, date, field_id, task_type_id, synced, deleted_at
		FROM card_assignments
		WHERE card_code = ? AND date = ? AND deleted_at IS NULL`, cardCode, date)
	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrCardNotAssigned
	}
	return a, err
}

// MarkDeleted tombstones an assignment and resets synced so the deletion is
// shipped on the next pass. The row is never physically removed here. If the
// creation had already been acknowledged, the deletion is a new logical
// operation and gets a fresh client UUID; an unsynced row keeps its UUID so a
// never-shipped create+delete collapses into a single delete operation.
func (r *AssignmentRepo) MarkDeleted(ctx context.Context, id int64, at time.Time) error {
	var synced bool
	err := r.db.QueryRowContext(ctx,
		`SELECT synced FROM card_assignments WHERE id = ?`, id).Scan(&synced)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	if err != nil {
		return storageError("failed to select assignment", err)
	}

	if synced {
		_, err = r.db.ExecContext(ctx, `
			UPDATE card_assignments SET deleted_at = ?, synced = 0, client_uuid = ? WHERE id = ?`,
			at.UnixMilli(), uuid.NewString(), id)
	} else {
		_, err = r.db.ExecContext(ctx, `
			UPDATE card_assignments SET deleted_at = ?, synced = 0 WHERE id = ?`,
			at.UnixMilli(), id)
	}
	if err != nil {
		return storageError("failed to tombstone assignment", err)
	}
	return nil
}

// Pending returns creations and tombstones not yet acknowledged.
func (r *AssignmentRepo) Pending(ctx context.Context) ([]*models.CardAssignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_uuid, card_id, card_code, worker_id, date, field_id, task_type_id, synced, deleted_at
		FROM card_assignments WHERE synced = 0`)
	if err != nil {
		return nil, storageError("failed to select pending assignments", err)
	}
	defer rows.Close()

	var result []*models.CardAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *AssignmentRepo) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE card_assignments SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return storageError("failed to mark assignment synced", err)
	}
	return nil
}

func scanAssignment(row rowScanner) (*models.CardAssignment, error) {
	var a models.CardAssignment
	var deleted sql.NullInt64
	if err := row.Scan(&a.ID, &a.ClientUUID, &a.CardID, &a.CardCode, &a.WorkerID,
		&a.Date, &a.FieldID, &a.TaskTypeID, &a.Synced, &deleted); err != nil {
		return nil, err
	}
	a.DeletedAt = msTime(deleted)
	return &a, nil
}
