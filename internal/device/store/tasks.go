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

// TaskRepo reads the task catalog mirrored from the server.
type TaskRepo struct {
	db dbx.DBTX
}

func NewTaskRepo(db dbx.DBTX) *TaskRepo {
	return &TaskRepo{db: db}
}

func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	var t models.Task
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, field_id FROM tasks WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.FieldID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, storageError("failed to select task", err)
	}
	return &t, nil
}

func (r *TaskRepo) List(ctx context.Context) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, field_id FROM tasks ORDER BY name`)
	if err != nil {
		return nil, storageError("failed to select tasks", err)
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Name, &t.FieldID); err != nil {
			return nil, err
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}

// TaskLogRepo stores append-only task audit entries captured on the device.
type TaskLogRepo struct {
	db dbx.DBTX
}

func NewTaskLogRepo(db dbx.DBTX) *TaskLogRepo {
	return &TaskLogRepo{db: db}
}

func (r *TaskLogRepo) Insert(ctx context.Context, l *models.TaskLog) error {
	l.ClientUUID = uuid.NewString()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO task_logs (client_uuid, task_id, event, comment, created_at, synced)
		VALUES (?, ?, ?, ?, ?, 0)`,
		l.ClientUUID, l.TaskID, l.Event, l.Comment, l.CreatedAt.UnixMilli())
	if err != nil {
		return storageError("failed to insert task log", err)
	}
	l.ID, err = res.LastInsertId()
	if err != nil {
		return storageError("failed to read task log id", err)
	}
	return nil
}

func (r *TaskLogRepo) Pending(ctx context.Context) ([]*models.TaskLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_uuid, task_id, event, comment, created_at, synced
		FROM task_logs WHERE synced = 0`)
	if err != nil {
		return nil, storageError("failed to select pending task logs", err)
	}
	defer rows.Close()

	var result []*models.TaskLog
	for rows.Next() {
		var l models.TaskLog
		var created int64
		if err := rows.Scan(&l.ID, &l.ClientUUID, &l.TaskID, &l.Event, &l.Comment,
			&created, &l.Synced); err != nil {
			return nil, err
		}
		l.CreatedAt = time.UnixMilli(created)
		result = append(result, &l)
	}
	return result, rows.Err()
}

func (r *TaskLogRepo) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE task_logs SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return storageError("failed to mark task log synced", err)
	}
	return nil
}
