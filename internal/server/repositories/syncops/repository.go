package syncops

import (
	"context"

	"github.com/rbustosc/fieldsync/internal/server/models"
)

type Repository interface {
	Exists(ctx context.Context, uuid string) (bool, error)
	Record(ctx context.Context, op *models.SyncOperation) error
}
