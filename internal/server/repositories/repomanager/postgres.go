// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/rbustosc/fieldsync/internal/dbx"
	"github.com/rbustosc/fieldsync/internal/server/migrations"
	"github.com/rbustosc/fieldsync/internal/server/repositories/assignments"
	"github.com/rbustosc/fieldsync/internal/server/repositories/attendances"
	"github.com/rbustosc/fieldsync/internal/server/repositories/cards"
	"github.com/rbustosc/fieldsync/internal/server/repositories/catalog"
	"github.com/rbustosc/fieldsync/internal/server/repositories/collections"
	"github.com/rbustosc/fieldsync/internal/server/repositories/devices"
	"github.com/rbustosc/fieldsync/internal/server/repositories/syncops"
	"github.com/rbustosc/fieldsync/internal/server/repositories/tasklogs"
	"github.com/rbustosc/fieldsync/internal/server/repositories/workers"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Devices(db dbx.DBTX) devices.Repository {
	return devices.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) SyncOps(db dbx.DBTX) syncops.Repository {
	return syncops.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Workers(db dbx.DBTX) workers.Repository {
	return workers.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Cards(db dbx.DBTX) cards.Repository {
	return cards.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Assignments(db dbx.DBTX) assignments.Repository {
	return assignments.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Attendances(db dbx.DBTX) attendances.Repository {
	return attendances.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Collections(db dbx.DBTX) collections.Repository {
	return collections.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) TaskLogs(db dbx.DBTX) tasklogs.Repository {
	return tasklogs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Catalog(db dbx.DBTX) catalog.Repository {
	return catalog.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
