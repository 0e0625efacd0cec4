package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rbustosc/fieldsync/internal/dbx"
)

// MetadataRepo is a key/value table for advisory device state: last selected
// field, cuartel, container, and similar workflow context. None of it is
// part of the sync contract and all of it may be safely discarded.
type MetadataRepo struct {
	db dbx.DBTX
}

func NewMetadataRepo(db dbx.DBTX) *MetadataRepo {
	return &MetadataRepo{db: db}
}

// Get returns the raw value for key, or nil when the key is absent.
func (r *MetadataRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to get metadata[%s]", key), err)
	}
	return value, nil
}

// Set upserts the value for key.
func (r *MetadataRepo) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return storageError(fmt.Sprintf("failed to set metadata[%s]", key), err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (r *MetadataRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	if err != nil {
		return storageError(fmt.Sprintf("failed to delete metadata[%s]", key), err)
	}
	return nil
}

// GetJSON unmarshals the stored value into v. Returns (false, nil) when the
// key is absent.
func (r *MetadataRepo) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode metadata[%s]: %w", key, err)
	}
	return true, nil
}

// SetJSON marshals v and stores it under key.
func (r *MetadataRepo) SetJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode metadata[%s]: %w", key, err)
	}
	return r.Set(ctx, key, raw)
}
