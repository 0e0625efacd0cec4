package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/dbx"
	"github.com/rbustosc/fieldsync/internal/device/models"
)

// WorkerRepo stores workers, both those pulled from the server catalog and
// those registered on the device while offline.
type WorkerRepo struct {
	db dbx.DBTX
}

func NewWorkerRepo(db dbx.DBTX) *WorkerRepo {
	return &WorkerRepo{db: db}
}

// Insert creates a locally registered worker. A client UUID is generated
// once and kept for the row's whole sync lifetime.
func (r *WorkerRepo) Insert(ctx context.Context, w *models.Worker) error {
	w.ClientUUID = uuid.NewString()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO workers (client_uuid, name, national_id, contractor_id, validated, synced)
		VALUES (?, ?, ?, ?, ?, 0)`,
		w.ClientUUID, w.Name, w.NationalID, w.ContractorID, w.Validated)
	if err != nil {
		return storageError("failed to insert worker", err)
	}
	w.ID, err = res.LastInsertId()
	if err != nil {
		return storageError("failed to read worker id", err)
	}
	return nil
}

func (r *WorkerRepo) GetByID(ctx context.Context, id int64) (*models.Worker, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, client_uuid, name, national_id, contractor_id, validated, synced, deleted_at
		FROM workers WHERE id = ?`, id)
	w, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return w, err
}

// List returns all non-tombstoned workers ordered by name, for selection
// screens.
func (r *WorkerRepo) List(ctx context.Context) ([]*models.Worker, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_uuid, name, national_id, contractor_id, validated, synced, deleted_at
		FROM workers WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, storageError("failed to select workers", err)
	}
	defer rows.Close()

	var result []*models.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// Pending returns locally created workers the server has not acknowledged.
func (r *WorkerRepo) Pending(ctx context.Context) ([]*models.Worker, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_uuid, name, national_id, contractor_id, validated, synced, deleted_at
		FROM workers WHERE synced = 0`)
	if err != nil {
		return nil, storageError("failed to select pending workers", err)
	}
	defer rows.Close()

	var result []*models.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// MarkSynced is idempotent: re-acknowledging an already synced row is a no-op.
func (r *WorkerRepo) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE workers SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return storageError("failed to mark worker synced", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(row rowScanner) (*models.Worker, error) {
	var w models.Worker
	var contractor sql.NullInt64
	var deleted sql.NullInt64
	if err := row.Scan(&w.ID, &w.ClientUUID, &w.Name, &w.NationalID, &contractor,
		&w.Validated, &w.Synced, &deleted); err != nil {
		return nil, err
	}
	if contractor.Valid {
		w.ContractorID = &contractor.Int64
	}
	w.DeletedAt = msTime(deleted)
	return &w, nil
}
