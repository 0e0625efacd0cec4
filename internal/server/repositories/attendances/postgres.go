package attendances

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

func (r *PostgresRepository) Create(ctx context.Context, attendance *models.Attendance) (*models.Attendance, error) {
	query :=
		`INSERT INTO attendances (uuid, company_id, worker_id, date, check_in_time, check_out_time, field_id, task_type_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		attendance.UUID, attendance.CompanyID, attendance.WorkerID, attendance.Date,
		attendance.CheckInTime, attendance.CheckOutTime, attendance.FieldID, attendance.TaskTypeID).
		Scan(&attendance.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return attendance, nil
}

func (r *PostgresRepository) ByWorkerAndDate(ctx context.Context, companyID, workerID int64, date string) (*models.Attendance, error) {
	query :=
		`SELECT id, uuid, company_id, worker_id, date, check_in_time, check_out_time, field_id, task_type_id
		 FROM attendances
		 WHERE company_id = $1 AND worker_id = $2 AND date = $3
		 `

	a := &models.Attendance{}
	var checkOut sql.NullTime
	var taskTypeID sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, companyID, workerID, date).Scan(
		&a.ID, &a.UUID, &a.CompanyID, &a.WorkerID, &a.Date,
		&a.CheckInTime, &checkOut, &a.FieldID, &taskTypeID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if checkOut.Valid {
		a.CheckOutTime = &checkOut.Time
	}
	if taskTypeID.Valid {
		a.TaskTypeID = &taskTypeID.Int64
	}
	return a, nil
}

func (r *PostgresRepository) SetCheckOut(ctx context.Context, id int64, checkOut time.Time) error {
	query :=
		`UPDATE attendances SET check_out_time = $2
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id, checkOut); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
