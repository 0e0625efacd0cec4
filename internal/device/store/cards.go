package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/dbx"
	"github.com/rbustosc/fieldsync/internal/device/models"
)

// CardRepo reads the card catalog mirrored from the server. Cards are never
// created on the device; status transitions happen in the admin backend and
// arrive through catalog refresh.
type CardRepo struct {
	db dbx.DBTX
}

func NewCardRepo(db dbx.DBTX) *CardRepo {
	return &CardRepo{db: db}
}

// GetByCode resolves a scanned card code. Returns common.ErrCardNotFound if
// the code is unknown to the mirror (the catalog must be pulled first).
func (r *CardRepo) GetByCode(ctx context.Context, code string) (*models.Card, error) {
	var c models.Card
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, status FROM cards WHERE code = ?`, code).
		Scan(&c.ID, &c.Code, &c.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrCardNotFound
	}
	if err != nil {
		return nil, storageError("failed to select card", err)
	}
	return &c, nil
}

// List returns all mirrored cards ordered by code.
func (r *CardRepo) List(ctx context.Context) ([]*models.Card, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, code, status FROM cards ORDER BY code`)
	if err != nil {
		return nil, storageError("failed to select cards", err)
	}
	defer rows.Close()

	var result []*models.Card
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.Code, &c.Status); err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}
