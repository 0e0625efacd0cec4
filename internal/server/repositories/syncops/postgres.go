// Package syncops persists applied idempotency tokens. The unique index on
// uuid is the hard backstop; Exists is the cheap check done first inside the
// per-operation transaction.
package syncops

import (
	"context"
	"database/sql"
	"errors"
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

func (r *PostgresRepository) Exists(ctx context.Context, uuid string) (bool, error) {
	query :=
		`SELECT 1 FROM sync_operations
		 WHERE uuid = $1
		 `

	var one int
	err := r.db.QueryRowContext(ctx, query, uuid).Scan(&one)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}

	return true, nil
}

func (r *PostgresRepository) Record(ctx context.Context, op *models.SyncOperation) error {
	query :=
		`INSERT INTO sync_operations (uuid, company_id, device_id, entity, action)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		op.UUID, op.CompanyID, op.DeviceID, op.Entity, op.Action).Scan(&op.ID)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
