package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rbustosc/fieldsync/internal/server/models"
	"github.com/rbustosc/fieldsync/internal/syncapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCompany = int64(1)
	testDevice  = int64(10)
	testDate    = "2026-08-31"
)

func newSyncService(t *testing.T) (*SyncService, *fakeState) {
	t.Helper()
	state := newFakeState()
	svc := NewSyncService(testDB(t), &fakeManager{state: state}, testLogger())
	return svc, state
}

func seedWorker(state *fakeState, nationalID string) *models.Worker {
	w := &models.Worker{CompanyID: testCompany, Name: "Worker " + nationalID, NationalID: nationalID, Validated: true}
	w.ID = state.id()
	state.workers = append(state.workers, w)
	return w
}

func seedCard(state *fakeState, code string) *models.Card {
	c := &models.Card{CompanyID: testCompany, Code: code, Status: "active"}
	c.ID = state.id()
	state.cards[code] = c
	return c
}

func mustData(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func attendanceOp(t *testing.T, workerID int64, checkOut *int64) syncapi.Operation {
	return syncapi.Operation{
		UUID:   uuid.NewString(),
		Entity: syncapi.EntityAttendance,
		Action: syncapi.ActionCreate,
		Data: mustData(t, syncapi.AttendanceData{
			WorkerID:     workerID,
			Date:         testDate,
			CheckInTime:  time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC).UnixMilli(),
			CheckOutTime: checkOut,
			FieldID:      3,
		}),
		Timestamp: time.Now().UnixMilli(),
	}
}

func TestApply_AttendanceCreate(t *testing.T) {
	svc, state := newSyncService(t)
	worker := seedWorker(state, "11111111-1")

	op := attendanceOp(t, worker.ID, nil)
	results := svc.Apply(context.Background(), testDevice, testCompany, []syncapi.Operation{op})

	require.Len(t, results, 1)
	assert.Equal(t, op.UUID, results[0].UUID)
	assert.Equal(t, syncapi.StatusSynced, results[0].Status)
	require.Len(t, state.attendances, 1)
	assert.Equal(t, worker.ID, state.attendances[0].WorkerID)
	assert.Contains(t, state.tokens, op.UUID)
}

func TestApply_ReplayedUUIDIsAlreadySynced(t *testing.T) {
	svc, state := newSyncService(t)
	worker := seedWorker(state, "11111111-1")

	op := attendanceOp(t, worker.ID, nil)
	ctx := context.Background()

	first := svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{op})
	second := svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{op})

	assert.Equal(t, syncapi.StatusSynced, first[0].Status)
	assert.Equal(t, syncapi.StatusAlreadySynced, second[0].Status)
	assert.Len(t, state.attendances, 1)
}

func TestApply_DuplicateAttendanceFromAnotherDevice(t *testing.T) {
	svc, state := newSyncService(t)
	worker := seedWorker(state, "11111111-1")

	first := attendanceOp(t, worker.ID, nil)
	second := attendanceOp(t, worker.ID, nil) // same worker and day, different uuid

	ctx := context.Background()
	svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{first})
	results := svc.Apply(ctx, testDevice+1, testCompany, []syncapi.Operation{second})

	assert.Equal(t, syncapi.StatusError, results[0].Status)
	assert.Equal(t, "duplicate_attendance", results[0].Message)
	assert.Len(t, state.attendances, 1)
	// The failed operation's token is not recorded, so a retry is possible.
	assert.NotContains(t, state.tokens, second.UUID)
}

func TestApply_CheckOutMergesIntoOpenRow(t *testing.T) {
	svc, state := newSyncService(t)
	worker := seedWorker(state, "11111111-1")
	ctx := context.Background()

	svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{attendanceOp(t, worker.ID, nil)})

	checkOut := time.Date(2026, 8, 31, 17, 30, 0, 0, time.UTC).UnixMilli()
	results := svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{attendanceOp(t, worker.ID, &checkOut)})

	assert.Equal(t, syncapi.StatusSynced, results[0].Status)
	require.Len(t, state.attendances, 1)
	require.NotNil(t, state.attendances[0].CheckOutTime)
	assert.Equal(t, checkOut, state.attendances[0].CheckOutTime.UnixMilli())
}

func TestApply_CheckOutOnClosedRowIsDuplicate(t *testing.T) {
	svc, state := newSyncService(t)
	worker := seedWorker(state, "11111111-1")
	ctx := context.Background()

	checkOut := time.Date(2026, 8, 31, 17, 30, 0, 0, time.UTC).UnixMilli()
	svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{attendanceOp(t, worker.ID, &checkOut)})

	later := checkOut + 1000
	results := svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{attendanceOp(t, worker.ID, &later)})

	assert.Equal(t, syncapi.StatusError, results[0].Status)
	assert.Equal(t, "duplicate_attendance", results[0].Message)
	assert.Equal(t, checkOut, state.attendances[0].CheckOutTime.UnixMilli())
}

func assignmentOp(t *testing.T, cardCode string, workerID int64, action string, deletedAt *int64) syncapi.Operation {
	return syncapi.Operation{
		UUID:   uuid.NewString(),
		Entity: syncapi.EntityCardAssignment,
		Action: action,
		Data: mustData(t, syncapi.CardAssignmentData{
			CardCode:  cardCode,
			WorkerID:  workerID,
			Date:      testDate,
			FieldID:   3,
			DeletedAt: deletedAt,
		}),
		Timestamp: time.Now().UnixMilli(),
	}
}

func TestApply_AssignmentCreateAndConflict(t *testing.T) {
	svc, state := newSyncService(t)
	holder := seedWorker(state, "11111111-1")
	other := seedWorker(state, "22222222-2")
	card := seedCard(state, "C-100")
	ctx := context.Background()

	results := svc.Apply(ctx, testDevice, testCompany,
		[]syncapi.Operation{assignmentOp(t, card.Code, holder.ID, syncapi.ActionCreate, nil)})
	assert.Equal(t, syncapi.StatusSynced, results[0].Status)

	// Same worker from a second device converges without a new row.
	results = svc.Apply(ctx, testDevice+1, testCompany,
		[]syncapi.Operation{assignmentOp(t, card.Code, holder.ID, syncapi.ActionCreate, nil)})
	assert.Equal(t, syncapi.StatusSynced, results[0].Status)
	assert.Len(t, state.assignments, 1)

	// A different worker conflicts.
	results = svc.Apply(ctx, testDevice+1, testCompany,
		[]syncapi.Operation{assignmentOp(t, card.Code, other.ID, syncapi.ActionCreate, nil)})
	assert.Equal(t, syncapi.StatusError, results[0].Status)
	assert.Equal(t, "card_already_assigned", results[0].Message)
}

func TestApply_UnassignmentTombstones(t *testing.T) {
	svc, state := newSyncService(t)
	holder := seedWorker(state, "11111111-1")
	card := seedCard(state, "C-100")
	ctx := context.Background()

	svc.Apply(ctx, testDevice, testCompany,
		[]syncapi.Operation{assignmentOp(t, card.Code, holder.ID, syncapi.ActionCreate, nil)})

	deletedAt := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC).UnixMilli()
	results := svc.Apply(ctx, testDevice, testCompany,
		[]syncapi.Operation{assignmentOp(t, card.Code, holder.ID, syncapi.ActionDelete, &deletedAt)})

	assert.Equal(t, syncapi.StatusSynced, results[0].Status)
	require.NotNil(t, state.assignments[0].DeletedAt)
	assert.Equal(t, deletedAt, state.assignments[0].DeletedAt.UnixMilli())

	// The card is assignable again afterwards.
	results = svc.Apply(ctx, testDevice, testCompany,
		[]syncapi.Operation{assignmentOp(t, card.Code, holder.ID, syncapi.ActionCreate, nil)})
	assert.Equal(t, syncapi.StatusSynced, results[0].Status)
	assert.Len(t, state.assignments, 2)
}

func TestApply_DeleteUnderSpentUUIDIsNotReapplied(t *testing.T) {
	svc, state := newSyncService(t)
	holder := seedWorker(state, "11111111-1")
	card := seedCard(state, "C-100")
	ctx := context.Background()

	create := assignmentOp(t, card.Code, holder.ID, syncapi.ActionCreate, nil)
	results := svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{create})
	require.Equal(t, syncapi.StatusSynced, results[0].Status)

	// A delete arriving under the creation's uuid is a replay as far as the
	// guard can tell: it is acknowledged without touching the row. Clients
	// issue deletions of acknowledged rows under a fresh uuid for exactly
	// this reason.
	deletedAt := time.Now().UnixMilli()
	stale := assignmentOp(t, card.Code, holder.ID, syncapi.ActionDelete, &deletedAt)
	stale.UUID = create.UUID

	results = svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{stale})
	assert.Equal(t, syncapi.StatusAlreadySynced, results[0].Status)
	assert.Nil(t, state.assignments[0].DeletedAt, "replayed uuid must not reapply as a delete")

	// Under its own uuid the deletion goes through.
	fresh := assignmentOp(t, card.Code, holder.ID, syncapi.ActionDelete, &deletedAt)
	results = svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{fresh})
	assert.Equal(t, syncapi.StatusSynced, results[0].Status)
	require.NotNil(t, state.assignments[0].DeletedAt)
}

func TestApply_UnknownCardIsError(t *testing.T) {
	svc, state := newSyncService(t)
	holder := seedWorker(state, "11111111-1")

	results := svc.Apply(context.Background(), testDevice, testCompany,
		[]syncapi.Operation{assignmentOp(t, "NO-SUCH", holder.ID, syncapi.ActionCreate, nil)})

	assert.Equal(t, syncapi.StatusError, results[0].Status)
	assert.Equal(t, "card_not_found", results[0].Message)
}

func TestApply_WorkerCreateConvergesOnNationalID(t *testing.T) {
	svc, state := newSyncService(t)
	ctx := context.Background()

	op := func() syncapi.Operation {
		return syncapi.Operation{
			UUID:   uuid.NewString(),
			Entity: syncapi.EntityWorker,
			Action: syncapi.ActionCreate,
			Data: mustData(t, syncapi.WorkerData{
				Name:       "Maria Soto",
				NationalID: "12345678-9",
			}),
			Timestamp: time.Now().UnixMilli(),
		}
	}

	first := svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{op()})
	second := svc.Apply(ctx, testDevice+1, testCompany, []syncapi.Operation{op()})

	assert.Equal(t, syncapi.StatusSynced, first[0].Status)
	assert.Equal(t, syncapi.StatusSynced, second[0].Status)
	assert.Len(t, state.workers, 1)
}

func TestApply_CollectionIsAppendOnly(t *testing.T) {
	svc, state := newSyncService(t)
	worker := seedWorker(state, "11111111-1")
	ctx := context.Background()

	op := func() syncapi.Operation {
		return syncapi.Operation{
			UUID:   uuid.NewString(),
			Entity: syncapi.EntityHarvestCollection,
			Action: syncapi.ActionCreate,
			Data: mustData(t, syncapi.HarvestCollectionData{
				WorkerID:    worker.ID,
				CardCode:    "C-100",
				Date:        testDate,
				ContainerID: 5,
				Quantity:    2,
				FieldID:     3,
				CuartelID:   12,
				WeightKg:    20,
			}),
			Timestamp: time.Now().UnixMilli(),
		}
	}

	svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{op()})
	svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{op()})

	assert.Len(t, state.collections, 2)
}

func TestApply_TaskLogRequiresLiveTask(t *testing.T) {
	svc, state := newSyncService(t)
	ctx := context.Background()

	task := &models.Task{CompanyID: testCompany, Name: "Pruning sector 4", FieldID: 3}
	task.ID = state.id()
	state.tasks = append(state.tasks, task)

	logOp := func(taskID int64) syncapi.Operation {
		return syncapi.Operation{
			UUID:   uuid.NewString(),
			Entity: syncapi.EntityTaskLog,
			Action: syncapi.ActionCreate,
			Data: mustData(t, syncapi.TaskLogData{
				TaskID: taskID, Event: "completed", Comment: "row 12",
			}),
			Timestamp: time.Now().UnixMilli(),
		}
	}

	results := svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{logOp(task.ID)})
	assert.Equal(t, syncapi.StatusSynced, results[0].Status)
	require.Len(t, state.taskLogs, 1)

	// The referenced task was meanwhile removed server-side: the operation
	// fails with an explicit result instead of a constraint violation.
	results = svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{logOp(task.ID + 100)})
	assert.Equal(t, syncapi.StatusError, results[0].Status)
	assert.Equal(t, "not_found", results[0].Message)
	assert.Len(t, state.taskLogs, 1)
}

func TestApply_MalformedPayloadAndUnknownEntity(t *testing.T) {
	svc, _ := newSyncService(t)
	ctx := context.Background()

	bad := syncapi.Operation{
		UUID:      uuid.NewString(),
		Entity:    syncapi.EntityAttendance,
		Action:    syncapi.ActionCreate,
		Data:      json.RawMessage(`{"worker_id": "not-a-number"}`),
		Timestamp: time.Now().UnixMilli(),
	}
	unknown := syncapi.Operation{
		UUID:      uuid.NewString(),
		Entity:    "contractor",
		Action:    syncapi.ActionCreate,
		Data:      json.RawMessage(`{}`),
		Timestamp: time.Now().UnixMilli(),
	}

	results := svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{bad, unknown})

	require.Len(t, results, 2)
	assert.Equal(t, syncapi.StatusError, results[0].Status)
	assert.Equal(t, "validation", results[0].Message)
	assert.Equal(t, syncapi.StatusError, results[1].Status)
	assert.Equal(t, "validation", results[1].Message)
}

func TestApply_OneBadOperationDoesNotAbortBatch(t *testing.T) {
	svc, state := newSyncService(t)
	worker := seedWorker(state, "11111111-1")
	ctx := context.Background()

	good := attendanceOp(t, worker.ID, nil)
	bad := attendanceOp(t, 999, nil) // unknown worker

	results := svc.Apply(ctx, testDevice, testCompany, []syncapi.Operation{bad, good})

	require.Len(t, results, 2)
	assert.Equal(t, syncapi.StatusError, results[0].Status)
	assert.Equal(t, "not_found", results[0].Message)
	assert.Equal(t, syncapi.StatusSynced, results[1].Status)
	assert.Len(t, state.attendances, 1)
}
