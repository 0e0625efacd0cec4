package devices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/dbx"
	"github.com/rbustosc/fieldsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*models.Device, error) {
	query :=
		`SELECT id, company_id, code, secret_hash, name FROM devices
		 WHERE code = $1
		 `

	device := &models.Device{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&device.ID, &device.CompanyID, &device.Code, &device.SecretHash, &device.Name)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return device, nil
}
