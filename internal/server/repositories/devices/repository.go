package devices

import (
	"context"

	"github.com/rbustosc/fieldsync/internal/server/models"
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (*models.Device, error)
}
