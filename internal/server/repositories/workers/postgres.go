package workers

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

func (r *PostgresRepository) Create(ctx context.Context, worker *models.Worker) (*models.Worker, error) {
	query :=
		`INSERT INTO workers (company_id, name, national_id, contractor_id, validated)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		worker.CompanyID, worker.Name, worker.NationalID, worker.ContractorID, worker.Validated).
		Scan(&worker.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return worker, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, companyID, workerID int64) (*models.Worker, error) {
	query :=
		`SELECT id, company_id, name, national_id, contractor_id, validated FROM workers
		 WHERE company_id = $1 AND id = $2
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, companyID, workerID))
}

func (r *PostgresRepository) GetByNationalID(ctx context.Context, companyID int64, nationalID string) (*models.Worker, error) {
	query :=
		`SELECT id, company_id, name, national_id, contractor_id, validated FROM workers
		 WHERE company_id = $1 AND national_id = $2
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, companyID, nationalID))
}

func (r *PostgresRepository) ListByCompany(ctx context.Context, companyID int64) ([]models.Worker, error) {
	query :=
		`SELECT id, company_id, name, national_id, contractor_id, validated FROM workers
		 WHERE company_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Worker
	for rows.Next() {
		var w models.Worker
		var contractorID sql.NullInt64
		if err := rows.Scan(&w.ID, &w.CompanyID, &w.Name, &w.NationalID, &contractorID, &w.Validated); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if contractorID.Valid {
			w.ContractorID = &contractorID.Int64
		}
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Worker, error) {
	w := &models.Worker{}
	var contractorID sql.NullInt64
	err := row.Scan(&w.ID, &w.CompanyID, &w.Name, &w.NationalID, &contractorID, &w.Validated)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if contractorID.Valid {
		w.ContractorID = &contractorID.Int64
	}
	return w, nil
}
