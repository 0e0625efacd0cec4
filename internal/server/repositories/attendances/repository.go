package attendances

import (
	"context"
	"time"

	"github.com/rbustosc/fieldsync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, attendance *models.Attendance) (*models.Attendance, error)
	ByWorkerAndDate(ctx context.Context, companyID, workerID int64, date string) (*models.Attendance, error)
	SetCheckOut(ctx context.Context, id int64, checkOut time.Time) error
}
