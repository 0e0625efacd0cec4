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

// AttendanceRepo stores the single daily check-in/out row per worker.
// A UNIQUE (worker_id, date) constraint backs the one-row-per-day invariant.
type AttendanceRepo struct {
	db dbx.DBTX
}

func NewAttendanceRepo(db dbx.DBTX) *AttendanceRepo {
	return &AttendanceRepo{db: db}
}

// Insert creates an attendance row with synced=0 and a fresh client UUID.
func (r *AttendanceRepo) Insert(ctx context.Context, a *models.Attendance) error {
	a.ClientUUID = uuid.NewString()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendances (client_uuid, worker_id, date, check_in_time, check_out_time, field_id, task_type_id, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		a.ClientUUID, a.WorkerID, a.Date, a.CheckInTime.UnixMilli(),
		nullMs(a.CheckOutTime), a.FieldID, a.TaskTypeID)
	if err != nil {
		return storageError("failed to insert attendance", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return storageError("failed to read attendance id", err)
	}
	return nil
}

// ByWorkerAndDate returns the attendance row for (worker, date), or
// common.ErrNotFound when the worker has not checked in that day.
func (r *AttendanceRepo) ByWorkerAndDate(ctx context.Context, workerID int64, date string) (*models.Attendance, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, client_uuid, worker_id, date, check_in_time, check_out_time, field_id, task_type_id, synced, deleted_at
		FROM attendances
		WHERE worker_id = ? AND date = ? AND deleted_at IS NULL`, workerID, date)
	a, err := scanAttendance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return a, err
}

// SetCheckOut closes the day for a worker. If the row had already been
// acknowledged by the server, the checkout is a new logical operation, so a
// fresh client UUID is assigned; an unsynced row keeps its UUID and ships
// check-in and check-out in one operation.
func (r *AttendanceRepo) SetCheckOut(ctx context.Context, id int64, at time.Time) error {
	var synced bool
	err := r.db.QueryRowContext(ctx,
		`SELECT synced FROM attendances WHERE id = ?`, id).Scan(&synced)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	if err != nil {
		return storageError("failed to select attendance", err)
	}

	if synced {
		_, err = r.db.ExecContext(ctx, `
			UPDATE attendances SET check_out_time = ?, synced = 0, client_uuid = ? WHERE id = ?`,
			at.UnixMilli(), uuid.NewString(), id)
	} else {
		_, err = r.db.ExecContext(ctx, `
			UPDATE attendances SET check_out_time = ?, synced = 0 WHERE id = ?`,
			at.UnixMilli(), id)
	}
	if err != nil {
		return storageError("failed to set check-out", err)
	}
	return nil
}

// Pending returns attendance rows not yet acknowledged by the server.
func (r *AttendanceRepo) Pending(ctx context.Context) ([]*models.Attendance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_uuid, worker_id, date, check_in_time, check_out_time, field_id, task_type_id, synced, deleted_at
		FROM attendances WHERE synced = 0`)
	if err != nil {
		return nil, storageError("failed to select pending attendances", err)
	}
	defer rows.Close()

	var result []*models.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *AttendanceRepo) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE attendances SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return storageError("failed to mark attendance synced", err)
	}
	return nil
}

func scanAttendance(row rowScanner) (*models.Attendance, error) {
	var a models.Attendance
	var checkIn int64
	var checkOut, deleted sql.NullInt64
	if err := row.Scan(&a.ID, &a.ClientUUID, &a.WorkerID, &a.Date, &checkIn,
		&checkOut, &a.FieldID, &a.TaskTypeID, &a.Synced, &deleted); err != nil {
		return nil, err
	}
	a.CheckInTime = time.UnixMilli(checkIn)
	a.CheckOutTime = msTime(checkOut)
	a.DeletedAt = msTime(deleted)
	return &a, nil
}
