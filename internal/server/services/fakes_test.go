package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/dbx"
	"github.com/rbustosc/fieldsync/internal/logging"
	"github.com/rbustosc/fieldsync/internal/server/models"
	"github.com/rbustosc/fieldsync/internal/server/repositories/assignments"
	"github.com/rbustosc/fieldsync/internal/server/repositories/attendances"
	"github.com/rbustosc/fieldsync/internal/server/repositories/cards"
	"github.com/rbustosc/fieldsync/internal/server/repositories/catalog"
	"github.com/rbustosc/fieldsync/internal/server/repositories/collections"
	"github.com/rbustosc/fieldsync/internal/server/repositories/devices"
	"github.com/rbustosc/fieldsync/internal/server/repositories/syncops"
	"github.com/rbustosc/fieldsync/internal/server/repositories/tasklogs"
	"github.com/rbustosc/fieldsync/internal/server/repositories/workers"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// fakeState is the shared in-memory backing the fake repositories operate
// on. Transactions are not modeled; the service only records the
// idempotency token after the entity write succeeded, which is the ordering
// these tests verify.
type fakeState struct {
	devices     map[string]*models.Device
	cards       map[string]*models.Card
	workers     []*models.Worker
	assignments []*models.CardAssignment
	attendances []*models.Attendance
	collections []*models.HarvestCollection
	taskLogs    []*models.TaskLog
	tasks       []*models.Task
	tokens      map[string]*models.SyncOperation
	nextID      int64
}

func newFakeState() *fakeState {
	return &fakeState{
		devices: map[string]*models.Device{},
		cards:   map[string]*models.Card{},
		tokens:  map[string]*models.SyncOperation{},
	}
}

func (s *fakeState) id() int64 {
	s.nextID++
	return s.nextID
}

type fakeManager struct {
	state *fakeState
}

func (m *fakeManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *fakeManager) Devices(db dbx.DBTX) devices.Repository {
	return &fakeDevices{state: m.state}
}
func (m *fakeManager) SyncOps(db dbx.DBTX) syncops.Repository {
	return &fakeSyncOps{state: m.state}
}
func (m *fakeManager) Workers(db dbx.DBTX) workers.Repository {
	return &fakeWorkers{state: m.state}
}
func (m *fakeManager) Cards(db dbx.DBTX) cards.Repository {
	return &fakeCards{state: m.state}
}
func (m *fakeManager) Assignments(db dbx.DBTX) assignments.Repository {
	return &fakeAssignments{state: m.state}
}
func (m *fakeManager) Attendances(db dbx.DBTX) attendances.Repository {
	return &fakeAttendances{state: m.state}
}
func (m *fakeManager) Collections(db dbx.DBTX) collections.Repository {
	return &fakeCollections{state: m.state}
}
func (m *fakeManager) TaskLogs(db dbx.DBTX) tasklogs.Repository {
	return &fakeTaskLogs{state: m.state}
}
func (m *fakeManager) Catalog(db dbx.DBTX) catalog.Repository {
	return &fakeCatalog{state: m.state}
}

type fakeDevices struct{ state *fakeState }

func (r *fakeDevices) GetByCode(ctx context.Context, code string) (*models.Device, error) {
	if d, ok := r.state.devices[code]; ok {
		return d, nil
	}
	return nil, common.ErrNotFound
}

type fakeSyncOps struct{ state *fakeState }

func (r *fakeSyncOps) Exists(ctx context.Context, uuid string) (bool, error) {
	_, ok := r.state.tokens[uuid]
	return ok, nil
}

func (r *fakeSyncOps) Record(ctx context.Context, op *models.SyncOperation) error {
	op.ID = r.state.id()
	r.state.tokens[op.UUID] = op
	return nil
}

type fakeWorkers struct{ state *fakeState }

func (r *fakeWorkers) Create(ctx context.Context, w *models.Worker) (*models.Worker, error) {
	w.ID = r.state.id()
	r.state.workers = append(r.state.workers, w)
	return w, nil
}

func (r *fakeWorkers) GetByID(ctx context.Context, companyID, workerID int64) (*models.Worker, error) {
	for _, w := range r.state.workers {
		if w.CompanyID == companyID && w.ID == workerID {
			return w, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeWorkers) GetByNationalID(ctx context.Context, companyID int64, nationalID string) (*models.Worker, error) {
	for _, w := range r.state.workers {
		if w.CompanyID == companyID && w.NationalID == nationalID {
			return w, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeWorkers) ListByCompany(ctx context.Context, companyID int64) ([]models.Worker, error) {
	var out []models.Worker
	for _, w := range r.state.workers {
		if w.CompanyID == companyID {
			out = append(out, *w)
		}
	}
	return out, nil
}

type fakeCards struct{ state *fakeState }

func (r *fakeCards) GetByCode(ctx context.Context, companyID int64, code string) (*models.Card, error) {
	if c, ok := r.state.cards[code]; ok && c.CompanyID == companyID {
		return c, nil
	}
	return nil, common.ErrCardNotFound
}

func (r *fakeCards) ListByCompany(ctx context.Context, companyID int64) ([]models.Card, error) {
	var out []models.Card
	for _, c := range r.state.cards {
		if c.CompanyID == companyID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeAssignments struct{ state *fakeState }

func (r *fakeAssignments) Create(ctx context.Context, a *models.CardAssignment) (*models.CardAssignment, error) {
	a.ID = r.state.id()
	r.state.assignments = append(r.state.assignments, a)
	return a, nil
}

func (r *fakeAssignments) ActiveByCard(ctx context.Context, companyID, cardID int64, date string) (*models.CardAssignment, error) {
	for _, a := range r.state.assignments {
		if a.CompanyID == companyID && a.CardID == cardID && a.Date == date && a.DeletedAt == nil {
			return a, nil
		}
	}
	return nil, common.ErrCardNotAssigned
}

func (r *fakeAssignments) Tombstone(ctx context.Context, companyID, cardID int64, date string, deletedAt time.Time) error {
	for _, a := range r.state.assignments {
		if a.CompanyID == companyID && a.CardID == cardID && a.Date == date && a.DeletedAt == nil {
			a.DeletedAt = &deletedAt
		}
	}
	return nil
}

type fakeAttendances struct{ state *fakeState }

func (r *fakeAttendances) Create(ctx context.Context, a *models.Attendance) (*models.Attendance, error) {
	a.ID = r.state.id()
	r.state.attendances = append(r.state.attendances, a)
	return a, nil
}

func (r *fakeAttendances) ByWorkerAndDate(ctx context.Context, companyID, workerID int64, date string) (*models.Attendance, error) {
	for _, a := range r.state.attendances {
		if a.CompanyID == companyID && a.WorkerID == workerID && a.Date == date {
			return a, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeAttendances) SetCheckOut(ctx context.Context, id int64, checkOut time.Time) error {
	for _, a := range r.state.attendances {
		if a.ID == id {
			a.CheckOutTime = &checkOut
			return nil
		}
	}
	return fmt.Errorf("no attendance %d", id)
}

type fakeCollections struct{ state *fakeState }

func (r *fakeCollections) Create(ctx context.Context, c *models.HarvestCollection) (*models.HarvestCollection, error) {
	c.ID = r.state.id()
	r.state.collections = append(r.state.collections, c)
	return c, nil
}

type fakeTaskLogs struct{ state *fakeState }

func (r *fakeTaskLogs) Create(ctx context.Context, l *models.TaskLog) (*models.TaskLog, error) {
	l.ID = r.state.id()
	r.state.taskLogs = append(r.state.taskLogs, l)
	return l, nil
}

type fakeCatalog struct{ state *fakeState }

func (r *fakeCatalog) Fields(ctx context.Context, companyID int64) ([]models.Field, error) {
	return nil, nil
}
func (r *fakeCatalog) Cuarteles(ctx context.Context, companyID int64) ([]models.Cuartel, error) {
	return nil, nil
}
func (r *fakeCatalog) Species(ctx context.Context, companyID int64) ([]models.Species, error) {
	return nil, nil
}
func (r *fakeCatalog) Containers(ctx context.Context, companyID int64) ([]models.Container, error) {
	return nil, nil
}
func (r *fakeCatalog) TaskTypes(ctx context.Context, companyID int64) ([]models.TaskType, error) {
	return nil, nil
}
func (r *fakeCatalog) Tasks(ctx context.Context, companyID int64) ([]models.Task, error) {
	var result []models.Task
	for _, t := range r.state.tasks {
		if t.CompanyID == companyID {
			result = append(result, *t)
		}
	}
	return result, nil
}
func (r *fakeCatalog) TaskByID(ctx context.Context, companyID, id int64) (*models.Task, error) {
	for _, t := range r.state.tasks {
		if t.CompanyID == companyID && t.ID == id {
			return t, nil
		}
	}
	return nil, common.ErrNotFound
}

var testDBSeq int

// testDB opens a throwaway in-memory database. The fakes keep the state;
// the handle only backs transaction begin/commit.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", testDBSeq)
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
