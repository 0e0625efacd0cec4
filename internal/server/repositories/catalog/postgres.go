package catalog

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

func (r *PostgresRepository) Fields(ctx context.Context, companyID int64) ([]models.Field, error) {
	query :=
		`SELECT id, company_id, name FROM fields
		 WHERE company_id = $1
		 ORDER BY id
		 `

	return queryList(ctx, r.db, query, companyID, func(s rowScanner) (models.Field, error) {
		var f models.Field
		err := s.Scan(&f.ID, &f.CompanyID, &f.Name)
		return f, err
	})
}

func (r *PostgresRepository) Cuarteles(ctx context.Context, companyID int64) ([]models.Cuartel, error) {
	query :=
		`SELECT id, company_id, name, field_id, species_id FROM cuarteles
		 WHERE company_id = $1
		 ORDER BY id
		 `

	return queryList(ctx, r.db, query, companyID, func(s rowScanner) (models.Cuartel, error) {
		var c models.Cuartel
		err := s.Scan(&c.ID, &c.CompanyID, &c.Name, &c.FieldID, &c.SpeciesID)
		return c, err
	})
}

func (r *PostgresRepository) Species(ctx context.Context, companyID int64) ([]models.Species, error) {
	query :=
		`SELECT id, company_id, name FROM species
		 WHERE company_id = $1
		 ORDER BY id
		 `

	return queryList(ctx, r.db, query, companyID, func(s rowScanner) (models.Species, error) {
		var sp models.Species
		err := s.Scan(&sp.ID, &sp.CompanyID, &sp.Name)
		return sp, err
	})
}

func (r *PostgresRepository) Containers(ctx context.Context, companyID int64) ([]models.Container, error) {
	query :=
		`SELECT id, company_id, name, weight_kg FROM containers
		 WHERE company_id = $1
		 ORDER BY id
		 `

	return queryList(ctx, r.db, query, companyID, func(s rowScanner) (models.Container, error) {
		var c models.Container
		err := s.Scan(&c.ID, &c.CompanyID, &c.Name, &c.WeightKg)
		return c, err
	})
}

func (r *PostgresRepository) TaskTypes(ctx context.Context, companyID int64) ([]models.TaskType, error) {
	query :=
		`SELECT id, company_id, name FROM task_types
		 WHERE company_id = $1
		 ORDER BY id
		 `

	return queryList(ctx, r.db, query, companyID, func(s rowScanner) (models.TaskType, error) {
		var t models.TaskType
		err := s.Scan(&t.ID, &t.CompanyID, &t.Name)
		return t, err
	})
}

func (r *PostgresRepository) Tasks(ctx context.Context, companyID int64) ([]models.Task, error) {
	query :=
		`SELECT id, company_id, name, field_id FROM tasks
		 WHERE company_id = $1
		 ORDER BY id
		 `

	return queryList(ctx, r.db, query, companyID, func(s rowScanner) (models.Task, error) {
		var t models.Task
		err := s.Scan(&t.ID, &t.CompanyID, &t.Name, &t.FieldID)
		return t, err
	})
}

func (r *PostgresRepository) TaskByID(ctx context.Context, companyID, id int64) (*models.Task, error) {
	query :=
		`SELECT id, company_id, name, field_id FROM tasks
		 WHERE company_id = $1 AND id = $2
		 `

	var t models.Task
	err := r.db.QueryRowContext(ctx, query, companyID, id).
		Scan(&t.ID, &t.CompanyID, &t.Name, &t.FieldID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func queryList[T any](ctx context.Context, db dbx.DBTX, query string, companyID int64, scan func(rowScanner) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
