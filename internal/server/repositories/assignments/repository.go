package assignments

import (
	"context"
	"time"

	"github.com/rbustosc/fieldsync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, assignment *models.CardAssignment) (*models.CardAssignment, error)
	ActiveByCard(ctx context.Context, companyID, cardID int64, date string) (*models.CardAssignment, error)
	Tombstone(ctx context.Context, companyID, cardID int64, date string, deletedAt time.Time) error
}
