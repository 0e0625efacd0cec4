package workers

import (
	"context"

	"github.com/rbustosc/fieldsync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, worker *models.Worker) (*models.Worker, error)
	GetByID(ctx context.Context, companyID, workerID int64) (*models.Worker, error)
	GetByNationalID(ctx context.Context, companyID int64, nationalID string) (*models.Worker, error)
	ListByCompany(ctx context.Context, companyID int64) ([]models.Worker, error)
}
