package cards

import (
	"context"

	"github.com/rbustosc/fieldsync/internal/server/models"
)

type Repository interface {
	GetByCode(ctx context.Context, companyID int64, code string) (*models.Card, error)
	ListByCompany(ctx context.Context, companyID int64) ([]models.Card, error)
}
