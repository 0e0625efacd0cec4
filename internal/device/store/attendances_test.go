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

func TestAttendanceRepo_OneRowPerWorkerAndDate(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a := &models.Attendance{WorkerID: 7, Date: "2026-08-31", CheckInTime: time.Now(), FieldID: 3}
	require.NoError(t, s.Attendances.Insert(ctx, a))

	dup := &models.Attendance{WorkerID: 7, Date: "2026-08-31", CheckInTime: time.Now(), FieldID: 3}
	require.Error(t, s.Attendances.Insert(ctx, dup), "unique (worker,date) must hold")

	other := &models.Attendance{WorkerID: 7, Date: "2026-09-01", CheckInTime: time.Now(), FieldID: 3}
	require.NoError(t, s.Attendances.Insert(ctx, other))
}

func TestAttendanceRepo_ByWorkerAndDate(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	checkIn := time.Date(2026, 8, 31, 7, 30, 0, 0, time.UTC)
	a := &models.Attendance{WorkerID: 7, Date: "2026-08-31", CheckInTime: checkIn, FieldID: 3}
	require.NoError(t, s.Attendances.Insert(ctx, a))

	got, err := s.Attendances.ByWorkerAndDate(ctx, 7, "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, checkIn.UnixMilli(), got.CheckInTime.UnixMilli())
	assert.Nil(t, got.CheckOutTime)

	_, err = s.Attendances.ByWorkerAndDate(ctx, 7, "2026-09-01")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAttendanceRepo_SetCheckOut_KeepsUUIDWhileUnsynced(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a := &models.Attendance{WorkerID: 7, Date: "2026-08-31", CheckInTime: time.Now(), FieldID: 3}
	require.NoError(t, s.Attendances.Insert(ctx, a))

	require.NoError(t, s.Attendances.SetCheckOut(ctx, a.ID, time.Now()))

	got, err := s.Attendances.ByWorkerAndDate(ctx, 7, "2026-08-31")
	require.NoError(t, err)
	require.NotNil(t, got.CheckOutTime)
	assert.Equal(t, a.ClientUUID, got.ClientUUID,
		"check-in and check-out ship as one operation while unsynced")
	assert.False(t, got.Synced)
}

func TestAttendanceRepo_SetCheckOut_NewUUIDAfterSync(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a := &models.Attendance{WorkerID: 7, Date: "2026-08-31", CheckInTime: time.Now(), FieldID: 3}
	require.NoError(t, s.Attendances.Insert(ctx, a))
	require.NoError(t, s.Attendances.MarkSynced(ctx, a.ID))

	require.NoError(t, s.Attendances.SetCheckOut(ctx, a.ID, time.Now()))

	got, err := s.Attendances.ByWorkerAndDate(ctx, 7, "2026-08-31")
	require.NoError(t, err)
	assert.NotEqual(t, a.ClientUUID, got.ClientUUID,
		"checkout of an acknowledged row is a new logical operation")
	assert.False(t, got.Synced, "row must become pending again")
}

func TestAttendanceRepo_SetCheckOut_NotFound(t *testing.T) {
	s := setupStore(t)
	err := s.Attendances.SetCheckOut(context.Background(), 999, time.Now())
	assert.ErrorIs(t, err, common.ErrNotFound)
}
