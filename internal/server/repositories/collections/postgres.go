package collections

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

func (r *PostgresRepository) Create(ctx context.Context, collection *models.HarvestCollection) (*models.HarvestCollection, error) {
	query :=
		`INSERT INTO harvest_collections
		   (uuid, company_id, worker_id, card_code, date, container_id, quantity,
		    field_id, cuartel_id, species_id, is_bin_completed, manual_bin_units, weight_kg)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		collection.UUID, collection.CompanyID, collection.WorkerID, collection.CardCode,
		collection.Date, collection.ContainerID, collection.Quantity, collection.FieldID,
		collection.CuartelID, collection.SpeciesID, collection.IsBinCompleted,
		collection.ManualBinUnits, collection.WeightKg).
		Scan(&collection.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return collection, nil
}
