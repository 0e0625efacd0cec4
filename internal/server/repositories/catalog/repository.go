package catalog

import (
	"context"

	"github.com/rbustosc/fieldsync/internal/server/models"
)

// Repository lists the read-only reference tables served to devices. Workers
// and cards have their own repositories; the catalog service composes all of
// them into one payload.
type Repository interface {
	Fields(ctx context.Context, companyID int64) ([]models.Field, error)
	Cuarteles(ctx context.Context, companyID int64) ([]models.Cuartel, error)
	Species(ctx context.Context, companyID int64) ([]models.Species, error)
	Containers(ctx context.Context, companyID int64) ([]models.Container, error)
	TaskTypes(ctx context.Context, companyID int64) ([]models.TaskType, error)
	Tasks(ctx context.Context, companyID int64) ([]models.Task, error)
	TaskByID(ctx context.Context, companyID, id int64) (*models.Task, error)
}
