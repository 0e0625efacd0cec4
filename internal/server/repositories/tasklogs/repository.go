package tasklogs

import (
	"context"

	"github.com/rbustosc/fieldsync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, taskLog *models.TaskLog) (*models.TaskLog, error)
}
