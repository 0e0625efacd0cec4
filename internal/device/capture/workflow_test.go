package capture

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rbustosc/fieldsync/internal/device/scan"
	"github.com/rbustosc/fieldsync/internal/device/store"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var captureDBSeq int

type testEnv struct {
	store      *store.Store
	resolver   *scan.Resolver
	suppressor *scan.Suppressor
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	captureDBSeq++
	dsn := fmt.Sprintf("file:capture_test_%d?mode=memory&cache=shared", captureDBSeq)
	s, err := store.Open(context.Background(), dsn)
	require.NoError(t, err)
	s.DB.SetMaxOpenConns(4)
	s.DB.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = s.DB.Close() })

	seed := []string{
		`INSERT INTO fields (id, name) VALUES (3, 'El Manzano')`,
		`INSERT INTO species (id, name) VALUES (2, 'Cherry')`,
		`INSERT INTO cuarteles (id, name, field_id, species_id) VALUES (12, 'Cuartel 12', 3, 2)`,
		`INSERT INTO cuarteles (id, name, field_id, species_id) VALUES (13, 'Orphan', 0, 0)`,
		`INSERT INTO containers (id, name, weight_kg) VALUES (5, 'Bin', 10)`,
		`INSERT INTO task_types (id, name) VALUES (4, 'Harvest')`,
		`INSERT INTO cards (id, code, status) VALUES (1, 'C-100', 'active')`,
		`INSERT INTO cards (id, code, status) VALUES (2, 'C-200', 'active')`,
		`INSERT INTO workers (id, client_uuid, name, national_id, validated, synced)
		   VALUES (7, 'w-7', 'W7', 'nid-7', 1, 1)`,
		`INSERT INTO workers (id, client_uuid, name, national_id, validated, synced)
		   VALUES (8, 'w-8', 'W8', 'nid-8', 1, 1)`,
	}
	for _, q := range seed {
		_, err := s.DB.Exec(q)
		require.NoError(t, err)
	}

	return &testEnv{
		store:      s,
		resolver:   scan.NewResolver(s),
		suppressor: scan.NewSuppressor(s.Collections, scan.DefaultSuppressionWindow),
	}
}

// assign gives card code to worker for today's test date.
func (e *testEnv) assign(t *testing.T, code string, workerID int64) {
	t.Helper()
	_, err := e.resolver.Assign(context.Background(), code, workerID, testDate, 3, 4)
	require.NoError(t, err)
}

const testDate = "2026-08-31"

var testClock = time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testClock }
