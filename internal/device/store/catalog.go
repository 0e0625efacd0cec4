package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/dbx"
	"github.com/rbustosc/fieldsync/internal/device/models"
)

// CatalogData is one coherent snapshot of the server reference data for a
// company, applied to the mirror in a single transaction.
type CatalogData struct {
	Workers    []*models.Worker
	Cards      []*models.Card
	Fields     []*models.Field
	Cuarteles  []*models.Cuartel
	Species    []*models.Species
	Containers []*models.Container
	TaskTypes  []*models.TaskType
	Tasks      []*models.Task
}

// CatalogRepo maintains the read-only reference tables seeded by the catalog
// pull, and resolves reference rows during capture.
type CatalogRepo struct {
	db dbx.DBTX
}

func NewCatalogRepo(db dbx.DBTX) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// Replace swaps the reference tables for the given snapshot. Callers run it
// inside Store.WithTx so a failed pull never leaves the mirror half-seeded.
// Locally captured rows (attendances, collections, unsynced workers) are
// untouched.
func (r *CatalogRepo) Replace(ctx context.Context, data *CatalogData) error {
	steps := []struct {
		clear string
		run   func() error
	}{
		{`DELETE FROM cards`, func() error {
			for _, c := range data.Cards {
				if _, err := r.db.ExecContext(ctx,
					`INSERT INTO cards (id, code, status) VALUES (?, ?, ?)`,
					c.ID, c.Code, c.Status); err != nil {
					return err
				}
			}
			return nil
		}},
		{`DELETE FROM fields`, func() error {
			for _, f := range data.Fields {
				if _, err := r.db.ExecContext(ctx,
					`INSERT INTO fields (id, name) VALUES (?, ?)`, f.ID, f.Name); err != nil {
					return err
				}
			}
			return nil
		}},
		{`DELETE FROM cuarteles`, func() error {
			for _, c := range data.Cuarteles {
				if _, err := r.db.ExecContext(ctx,
					`INSERT INTO cuarteles (id, name, field_id, species_id) VALUES (?, ?, ?, ?)`,
					c.ID, c.Name, c.FieldID, c.SpeciesID); err != nil {
					return err
				}
			}
			return nil
		}},
		{`DELETE FROM species`, func() error {
			for _, s := range data.Species {
				if _, err := r.db.ExecContext(ctx,
					`INSERT INTO species (id, name) VALUES (?, ?)`, s.ID, s.Name); err != nil {
					return err
				}
			}
			return nil
		}},
		{`DELETE FROM containers`, func() error {
			for _, c := range data.Containers {
				if _, err := r.db.ExecContext(ctx,
					`INSERT INTO containers (id, name, weight_kg) VALUES (?, ?, ?)`,
					c.ID, c.Name, c.WeightKg); err != nil {
					return err
				}
			}
			return nil
		}},
		{`DELETE FROM task_types`, func() error {
			for _, tt := range data.TaskTypes {
				if _, err := r.db.ExecContext(ctx,
					`INSERT INTO task_types (id, name) VALUES (?, ?)`, tt.ID, tt.Name); err != nil {
					return err
				}
			}
			return nil
		}},
		{`DELETE FROM tasks`, func() error {
			for _, t := range data.Tasks {
				if _, err := r.db.ExecContext(ctx,
					`INSERT INTO tasks (id, name, field_id) VALUES (?, ?, ?)`,
					t.ID, t.Name, t.FieldID); err != nil {
					return err
				}
			}
			return nil
		}},
	}

	for _, s := range steps {
		if _, err := r.db.ExecContext(ctx, s.clear); err != nil {
			return storageError("failed to clear catalog table", err)
		}
		if err := s.run(); err != nil {
			return storageError("failed to seed catalog table", err)
		}
	}

	// Server-known workers upsert by id; unsynced local registrations stay.
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM workers WHERE synced = 1`); err != nil {
		return storageError("failed to clear synced workers", err)
	}
	for _, w := range data.Workers {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO workers (id, client_uuid, name, national_id, contractor_id, validated, synced)
			VALUES (?, ?, ?, ?, ?, ?, 1)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				national_id = excluded.national_id,
				contractor_id = excluded.contractor_id,
				validated = excluded.validated`,
			w.ID, "srv-"+w.NationalID, w.Name, w.NationalID, w.ContractorID, w.Validated); err != nil {
			return storageError("failed to seed worker", err)
		}
	}
	return nil
}

// FieldByID resolves a field, returning common.ErrNotFound when absent.
func (r *CatalogRepo) FieldByID(ctx context.Context, id int64) (*models.Field, error) {
	var f models.Field
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM fields WHERE id = ?`, id).
		Scan(&f.ID, &f.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, storageError("failed to select field", err)
	}
	return &f, nil
}

// CuartelByID resolves a cuartel, returning common.ErrNotFound when absent.
func (r *CatalogRepo) CuartelByID(ctx context.Context, id int64) (*models.Cuartel, error) {
	var c models.Cuartel
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, field_id, species_id FROM cuarteles WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.FieldID, &c.SpeciesID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, storageError("failed to select cuartel", err)
	}
	return &c, nil
}

// ContainerByID resolves a container, returning common.ErrNotFound when absent.
func (r *CatalogRepo) ContainerByID(ctx context.Context, id int64) (*models.Container, error) {
	var c models.Container
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, weight_kg FROM containers WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.WeightKg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, storageError("failed to select container", err)
	}
	return &c, nil
}

// TaskTypeByID resolves a task type, returning common.ErrNotFound when absent.
func (r *CatalogRepo) TaskTypeByID(ctx context.Context, id int64) (*models.TaskType, error) {
	var tt models.TaskType
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM task_types WHERE id = ?`, id).
		Scan(&tt.ID, &tt.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, storageError("failed to select task type", err)
	}
	return &tt, nil
}
