package repomanager

import (
	"context"
	"database/sql"

	"github.com/rbustosc/fieldsync/internal/dbx"
	"github.com/rbustosc/fieldsync/internal/server/repositories/assignments"
	"github.com/rbustosc/fieldsync/internal/server/repositories/attendances"
	"github.com/rbustosc/fieldsync/internal/server/repositories/cards"
	"github.com/rbustosc/fieldsync/internal/server/repositories/catalog"
	"github.com/rbustosc/fieldsync/internal/server/repositories/collections"
	"github.com/rbustosc/fieldsync/internal/server/repositories/devices"
	"github.com/rbustosc/fieldsync/internal/server/repositories/syncops"
	"github.com/rbustosc/fieldsync/internal/server/repositories/tasklogs"
	"github.com/rbustosc/fieldsync/internal/server/repositories/workers"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Devices(db dbx.DBTX) devices.Repository
	SyncOps(db dbx.DBTX) syncops.Repository
	Workers(db dbx.DBTX) workers.Repository
	Cards(db dbx.DBTX) cards.Repository
	Assignments(db dbx.DBTX) assignments.Repository
	Attendances(db dbx.DBTX) attendances.Repository
	Collections(db dbx.DBTX) collections.Repository
	TaskLogs(db dbx.DBTX) tasklogs.Repository
	Catalog(db dbx.DBTX) catalog.Repository
}
