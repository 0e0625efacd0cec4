package store

import (
	"context"
	"testing"
	"time"

	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/device/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentRepo_InsertAndActiveByCard(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a := &models.CardAssignment{CardID: 1, CardCode: "C-100", WorkerID: 7, Date: "2026-08-31", FieldID: 3}
	require.NoError(t, s.Assignments.Insert(ctx, a))
	require.NotZero(t, a.ID)
	require.NotEmpty(t, a.ClientUUID)

	got, err := s.Assignments.ActiveByCard(ctx, "C-100", "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.WorkerID)
	assert.False(t, got.Synced)
	assert.False(t, got.Tombstoned())

	_, err = s.Assignments.ActiveByCard(ctx, "C-100", "2026-09-01")
	assert.ErrorIs(t, err, common.ErrCardNotAssigned)
}

func TestAssignmentRepo_ActiveUniquePerCardAndDate(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a := &models.CardAssignment{CardID: 1, CardCode: "C-100", WorkerID: 7, Date: "2026-08-31"}
	require.NoError(t, s.Assignments.Insert(ctx, a))

	// A second active assignment for the same card and date violates the
	// partial unique index.
	b := &models.CardAssignment{CardID: 1, CardCode: "C-100", WorkerID: 8, Date: "2026-08-31"}
	require.Error(t, s.Assignments.Insert(ctx, b))

	// After tombstoning the first, a new assignment is accepted.
	require.NoError(t, s.Assignments.MarkDeleted(ctx, a.ID, time.Now()))
	require.NoError(t, s.Assignments.Insert(ctx, b))

	got, err := s.Assignments.ActiveByCard(ctx, "C-100", "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, int64(8), got.WorkerID)
}

func TestAssignmentRepo_TombstoneStaysPending(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a := &models.CardAssignment{CardID: 1, CardCode: "C-100", WorkerID: 7, Date: "2026-08-31"}
	require.NoError(t, s.Assignments.Insert(ctx, a))
	require.NoError(t, s.Assignments.MarkSynced(ctx, a.ID))

	pending, err := s.Assignments.Pending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)

	// Unassignment tombstones the row and makes it pending again so the
	// deletion propagates. The creation was already acknowledged under the
	// old uuid, so the deletion must carry a fresh one or the server's replay
	// guard would swallow it.
	require.NoError(t, s.Assignments.MarkDeleted(ctx, a.ID, time.Now()))

	pending, err = s.Assignments.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].Tombstoned())
	assert.NotEqual(t, a.ClientUUID, pending[0].ClientUUID, "synced create's uuid is spent")
	assert.NotEmpty(t, pending[0].ClientUUID)

	require.NoError(t, s.Assignments.MarkSynced(ctx, a.ID))
	pending, err = s.Assignments.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAssignmentRepo_UnsyncedTombstoneKeepsUUID(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a := &models.CardAssignment{CardID: 1, CardCode: "C-100", WorkerID: 7, Date: "2026-08-31"}
	require.NoError(t, s.Assignments.Insert(ctx, a))

	// The creation never reached the server, so create+delete collapse into
	// one delete operation under the original uuid.
	require.NoError(t, s.Assignments.MarkDeleted(ctx, a.ID, time.Now()))

	pending, err := s.Assignments.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].Tombstoned())
	assert.Equal(t, a.ClientUUID, pending[0].ClientUUID)

	assert.ErrorIs(t, s.Assignments.MarkDeleted(ctx, 999, time.Now()), common.ErrNotFound)
}

func TestAssignmentRepo_MarkSyncedIdempotent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a := &models.CardAssignment{CardID: 1, CardCode: "C-1", WorkerID: 2, Date: "2026-08-31"}
	require.NoError(t, s.Assignments.Insert(ctx, a))

	require.NoError(t, s.Assignments.MarkSynced(ctx, a.ID))
	require.NoError(t, s.Assignments.MarkSynced(ctx, a.ID))

	pending, err := s.Assignments.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
