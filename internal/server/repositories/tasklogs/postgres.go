package tasklogs

import (
	"context"
	"fmt"

	"github.com/rbustosc/fieldsync/internal/dbx"
	"github.com/rbustosc/fieldsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, taskLog *models.TaskLog) (*models.TaskLog, error) {
	query :=
		`INSERT INTO task_logs (uuid, company_id, task_id, event, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		taskLog.UUID, taskLog.CompanyID, taskLog.TaskID, taskLog.Event,
		taskLog.Comment, taskLog.CreatedAt).
		Scan(&taskLog.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return taskLog, nil
}
