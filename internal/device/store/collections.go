package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rbustosc/fieldsync/internal/dbx"
	"github.com/rbustosc/fieldsync/internal/device/models"
)

// CollectionRepo stores harvest-collection events. The table is append-only:
// each accepted scan is its own unit of work, with no uniqueness constraint.
// created_at_ms feeds the duplicate-scan window and nothing else.
type CollectionRepo struct {
	db dbx.DBTX
}

func NewCollectionRepo(db dbx.DBTX) *CollectionRepo {
	return &CollectionRepo{db: db}
}

// Insert records a harvest event with synced=0. CreatedAtMs is stamped here
// if the caller left it zero.
func (r *CollectionRepo) Insert(ctx context.Context, c *models.HarvestCollection) error {
	c.ClientUUID = uuid.NewString()
	if c.CreatedAtMs == 0 {
		c.CreatedAtMs = time.Now().UnixMilli()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO harvest_collections
		  (client_uuid, worker_id, card_code, date, container_id, quantity, field_id,
		   cuartel_id, species_id, is_bin_completed, manual_bin_units, weight_kg, created_at_ms, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		c.ClientUUID, c.WorkerID, c.CardCode, c.Date, c.ContainerID, c.Quantity,
		c.FieldID, c.CuartelID, c.SpeciesID, c.IsBinCompleted, c.ManualBinUnits,
		c.WeightKg, c.CreatedAtMs)
	if err != nil {
		return storageError("failed to insert collection", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return storageError("failed to read collection id", err)
	}
	return nil
}

// LastScanMs returns the most recent persisted creation timestamp for a card
// code, in unix milliseconds, or 0 when the card has no recorded events.
// The duplicate-scan suppressor consults this so the window survives process
// restarts.
func (r *CollectionRepo) LastScanMs(ctx context.Context, cardCode string) (int64, error) {
	var ms sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(created_at_ms) FROM harvest_collections WHERE card_code = ?`, cardCode).
		Scan(&ms)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, storageError("failed to select last scan", err)
	}
	if !ms.Valid {
		return 0, nil
	}
	return ms.Int64, nil
}

// Pending returns collections not yet acknowledged by the server.
func (r *CollectionRepo) Pending(ctx context.Context) ([]*models.HarvestCollection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_uuid, worker_id, card_code, date, container_id, quantity, field_id,
		       cuartel_id, species_id, is_bin_completed, manual_bin_units, weight_kg, created_at_ms, synced
		FROM harvest_collections WHERE synced = 0`)
	if err != nil {
		return nil, storageError("failed to select pending collections", err)
	}
	defer rows.Close()

	var result []*models.HarvestCollection
	for rows.Next() {
		var c models.HarvestCollection
		var manual sql.NullInt64
		if err := rows.Scan(&c.ID, &c.ClientUUID, &c.WorkerID, &c.CardCode, &c.Date,
			&c.ContainerID, &c.Quantity, &c.FieldID, &c.CuartelID, &c.SpeciesID,
			&c.IsBinCompleted, &manual, &c.WeightKg, &c.CreatedAtMs, &c.Synced); err != nil {
			return nil, err
		}
		if manual.Valid {
			units := int(manual.Int64)
			c.ManualBinUnits = &units
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}

func (r *CollectionRepo) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE harvest_collections SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return storageError("failed to mark collection synced", err)
	}
	return nil
}
