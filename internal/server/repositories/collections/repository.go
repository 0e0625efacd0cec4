package collections

import (
	"context"

	"github.com/rbustosc/fieldsync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, collection *models.HarvestCollection) (*models.HarvestCollection, error)
}
