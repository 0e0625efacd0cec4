package cards

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

func (r *PostgresRepository) GetByCode(ctx context.Context, companyID int64, code string) (*models.Card, error) {
	query :=
		`SELECT id, company_id, code, status FROM cards
		 WHERE company_id = $1 AND code = $2
		 `

	card := &models.Card{}
	err := r.db.QueryRowContext(ctx, query, companyID, code).Scan(
		&card.ID, &card.CompanyID, &card.Code, &card.Status)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrCardNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return card, nil
}

func (r *PostgresRepository) ListByCompany(ctx context.Context, companyID int64) ([]models.Card, error) {
	query :=
		`SELECT id, company_id, code, status FROM cards
		 WHERE company_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Card
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Code, &c.Status); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
