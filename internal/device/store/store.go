// Package store implements the Local Mirror Store: an on-device SQLite
// database holding the subset of server entities a field device needs while
// offline, plus the synced/deleted bookkeeping the reconciler consumes.
//
// Every repository is bound to a dbx.DBTX, so the same code runs against the
// database directly or inside a transaction opened with dbx.WithTx.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/dbx"
	"github.com/rbustosc/fieldsync/internal/device/migrations"
)

// DateFormat is the calendar-day key used across assignments, attendances
// and collections.
const DateFormat = "2006-01-02"

// storageError marks a failed read or write of the local database. Screens
// match common.ErrStorage to offer the operator a retry instead of treating
// the scan as lost.
func storageError(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, common.ErrStorage, err)
}

// Store bundles the per-entity repositories over one device database.
type Store struct {
	DB          *sql.DB
	Workers     *WorkerRepo
	Cards       *CardRepo
	Assignments *AssignmentRepo
	Attendances *AttendanceRepo
	Collections *CollectionRepo
	Tasks       *TaskRepo
	TaskLogs    *TaskLogRepo
	Catalog     *CatalogRepo
	Metadata    *MetadataRepo
}

// RunMigrations applies the embedded device migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the device database at dsn, runs
// migrations and returns the bundled repositories.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open device db: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to migrate device db: %w", err)
	}

	return New(db), nil
}

// New builds a Store over an already-open database. Used by tests that
// create their own schema.
func New(db *sql.DB) *Store {
	return &Store{
		DB:          db,
		Workers:     NewWorkerRepo(db),
		Cards:       NewCardRepo(db),
		Assignments: NewAssignmentRepo(db),
		Attendances: NewAttendanceRepo(db),
		Collections: NewCollectionRepo(db),
		Tasks:       NewTaskRepo(db),
		TaskLogs:    NewTaskLogRepo(db),
		Catalog:     NewCatalogRepo(db),
		Metadata:    NewMetadataRepo(db),
	}
}

// WithTx runs fn inside a single transaction, handing it a Store whose
// repositories are all bound to that transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txs *Store) error) error {
	return dbx.WithTx(ctx, s.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txs := &Store{
			DB:          s.DB,
			Workers:     NewWorkerRepo(tx),
			Cards:       NewCardRepo(tx),
			Assignments: NewAssignmentRepo(tx),
			Attendances: NewAttendanceRepo(tx),
			Collections: NewCollectionRepo(tx),
			Tasks:       NewTaskRepo(tx),
			TaskLogs:    NewTaskLogRepo(tx),
			Catalog:     NewCatalogRepo(tx),
			Metadata:    NewMetadataRepo(tx),
		}
		return fn(ctx, txs)
	})
}

// nullMs converts an optional time to a nullable unix-millisecond value.
func nullMs(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

// msTime converts a nullable unix-millisecond value back to a time pointer.
func msTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64)
	return &t
}
