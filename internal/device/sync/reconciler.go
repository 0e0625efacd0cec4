package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rbustosc/fieldsync/internal/device/models"
	"github.com/rbustosc/fieldsync/internal/device/store"
	"github.com/rbustosc/fieldsync/internal/logging"
	"github.com/rbustosc/fieldsync/internal/syncapi"
)

// API is the server surface the reconciler needs. *Client satisfies it.
type API interface {
	Push(ctx context.Context, req syncapi.PushRequest) (*syncapi.PushResponse, error)
	PullCatalog(ctx context.Context) (*syncapi.Catalog, error)
}

// Reconciler ships not-yet-synced local rows to the server and marks them
// synced on acknowledgment. Every operation reuses the row's persisted
// client UUID, so a retried batch is applied at most once server-side.
//
// Capture and sync never race on a device: sync reads the synced=0 snapshot
// while capture only creates new synced=0 rows, which the next pass picks up.
type Reconciler struct {
	store  *store.Store
	api    API
	logger logging.Logger
}

func NewReconciler(s *store.Store, api API, logger logging.Logger) *Reconciler {
	return &Reconciler{store: s, api: api, logger: logger}
}

// Summary reports one sync pass.
type Summary struct {
	Pushed  int // operations submitted
	Acked   int // acknowledged (synced or already_synced)
	Errored int // rejected individually, left pending for the next pass
}

// ack routes a server acknowledgment back to the owning repo.
type ack struct {
	entity  string
	localID int64
}

// Sync performs one reconciliation pass. A transport failure leaves every
// row pending (the server never partially applies a batch it did not
// acknowledge); per-operation errors leave only that row pending.
func (r *Reconciler) Sync(ctx context.Context) (*Summary, error) {
	ops, acks, err := r.collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return &Summary{}, nil
	}

	resp, err := r.api.Push(ctx, syncapi.PushRequest{Operations: ops})
	if err != nil {
		return nil, fmt.Errorf("sync push failed: %w", err)
	}

	summary := &Summary{Pushed: len(ops)}
	for _, result := range resp.Results {
		target, ok := acks[result.UUID]
		if !ok {
			r.logger.Warn(ctx, "server acknowledged unknown operation", "uuid", result.UUID)
			continue
		}
		switch result.Status {
		case syncapi.StatusSynced, syncapi.StatusAlreadySynced:
			if err := r.markSynced(ctx, target); err != nil {
				return summary, err
			}
			summary.Acked++
		case syncapi.StatusError:
			summary.Errored++
			r.logger.Warn(ctx, "operation rejected, will retry with same uuid",
				"uuid", result.UUID, "entity", target.entity, "message", result.Message)
		default:
			summary.Errored++
			r.logger.Warn(ctx, "unknown operation status",
				"uuid", result.UUID, "status", result.Status)
		}
	}
	return summary, nil
}

// collect builds the operation batch from every pending row.
func (r *Reconciler) collect(ctx context.Context) ([]syncapi.Operation, map[string]ack, error) {
	var ops []syncapi.Operation
	acks := make(map[string]ack)

	add := func(uuid, entity, action string, data any, ts int64, localID int64) error {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode %s payload: %w", entity, err)
		}
		ops = append(ops, syncapi.Operation{
			UUID: uuid, Entity: entity, Action: action, Data: raw, Timestamp: ts,
		})
		acks[uuid] = ack{entity: entity, localID: localID}
		return nil
	}

	workers, err := r.store.Workers.Pending(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range workers {
		data := syncapi.WorkerData{
			Name: w.Name, NationalID: w.NationalID,
			ContractorID: w.ContractorID, Validated: w.Validated,
		}
		if err := add(w.ClientUUID, syncapi.EntityWorker, syncapi.ActionCreate,
			data, time.Now().UnixMilli(), w.ID); err != nil {
			return nil, nil, err
		}
	}

	assignments, err := r.store.Assignments.Pending(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, a := range assignments {
		data := syncapi.CardAssignmentData{
			CardCode: a.CardCode, WorkerID: a.WorkerID, Date: a.Date,
			FieldID: a.FieldID, TaskTypeID: a.TaskTypeID,
		}
		action := syncapi.ActionCreate
		if a.Tombstoned() {
			action = syncapi.ActionDelete
			ms := a.DeletedAt.UnixMilli()
			data.DeletedAt = &ms
		}
		if err := add(a.ClientUUID, syncapi.EntityCardAssignment, action,
			data, time.Now().UnixMilli(), a.ID); err != nil {
			return nil, nil, err
		}
	}

	attendances, err := r.store.Attendances.Pending(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, a := range attendances {
		data := syncapi.AttendanceData{
			WorkerID: a.WorkerID, Date: a.Date,
			CheckInTime: a.CheckInTime.UnixMilli(),
			FieldID:     a.FieldID, TaskTypeID: a.TaskTypeID,
		}
		if a.CheckOutTime != nil {
			ms := a.CheckOutTime.UnixMilli()
			data.CheckOutTime = &ms
		}
		if err := add(a.ClientUUID, syncapi.EntityAttendance, syncapi.ActionCreate,
			data, data.CheckInTime, a.ID); err != nil {
			return nil, nil, err
		}
	}

	collections, err := r.store.Collections.Pending(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range collections {
		data := syncapi.HarvestCollectionData{
			WorkerID: c.WorkerID, CardCode: c.CardCode, Date: c.Date,
			ContainerID: c.ContainerID, Quantity: c.Quantity,
			FieldID: c.FieldID, CuartelID: c.CuartelID, SpeciesID: c.SpeciesID,
			IsBinCompleted: c.IsBinCompleted, ManualBinUnits: c.ManualBinUnits,
			WeightKg: c.WeightKg,
		}
		if err := add(c.ClientUUID, syncapi.EntityHarvestCollection, syncapi.ActionCreate,
			data, c.CreatedAtMs, c.ID); err != nil {
			return nil, nil, err
		}
	}

	taskLogs, err := r.store.TaskLogs.Pending(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, l := range taskLogs {
		data := syncapi.TaskLogData{TaskID: l.TaskID, Event: l.Event, Comment: l.Comment}
		if err := add(l.ClientUUID, syncapi.EntityTaskLog, syncapi.ActionCreate,
			data, l.CreatedAt.UnixMilli(), l.ID); err != nil {
			return nil, nil, err
		}
	}

	return ops, acks, nil
}

func (r *Reconciler) markSynced(ctx context.Context, target ack) error {
	switch target.entity {
	case syncapi.EntityWorker:
		return r.store.Workers.MarkSynced(ctx, target.localID)
	case syncapi.EntityCardAssignment:
		return r.store.Assignments.MarkSynced(ctx, target.localID)
	case syncapi.EntityAttendance:
		return r.store.Attendances.MarkSynced(ctx, target.localID)
	case syncapi.EntityHarvestCollection:
		return r.store.Collections.MarkSynced(ctx, target.localID)
	case syncapi.EntityTaskLog:
		return r.store.TaskLogs.MarkSynced(ctx, target.localID)
	default:
		return fmt.Errorf("unknown entity %q", target.entity)
	}
}

// PullCatalog fetches the reference snapshot and applies it to the mirror in
// one transaction, so a failed pull never leaves it half-seeded.
func (r *Reconciler) PullCatalog(ctx context.Context) error {
	catalog, err := r.api.PullCatalog(ctx)
	if err != nil {
		return fmt.Errorf("catalog pull failed: %w", err)
	}

	data := catalogToStore(catalog)
	return r.store.WithTx(ctx, func(ctx context.Context, txs *store.Store) error {
		return txs.Catalog.Replace(ctx, data)
	})
}

func catalogToStore(c *syncapi.Catalog) *store.CatalogData {
	data := &store.CatalogData{}
	for _, w := range c.Workers {
		data.Workers = append(data.Workers, &models.Worker{
			ID: w.ID, Name: w.Name, NationalID: w.NationalID,
			ContractorID: w.ContractorID, Validated: w.Validated,
		})
	}
	for _, item := range c.Cards {
		data.Cards = append(data.Cards, &models.Card{
			ID: item.ID, Code: item.Code, Status: models.CardStatus(item.Status),
		})
	}
	for _, item := range c.Fields {
		data.Fields = append(data.Fields, &models.Field{ID: item.ID, Name: item.Name})
	}
	for _, item := range c.Cuarteles {
		data.Cuarteles = append(data.Cuarteles, &models.Cuartel{
			ID: item.ID, Name: item.Name, FieldID: item.FieldID, SpeciesID: item.SpeciesID,
		})
	}
	for _, item := range c.Species {
		data.Species = append(data.Species, &models.Species{ID: item.ID, Name: item.Name})
	}
	for _, item := range c.Containers {
		data.Containers = append(data.Containers, &models.Container{
			ID: item.ID, Name: item.Name, WeightKg: item.WeightKg,
		})
	}
	for _, item := range c.TaskTypes {
		data.TaskTypes = append(data.TaskTypes, &models.TaskType{ID: item.ID, Name: item.Name})
	}
	for _, item := range c.Tasks {
		data.Tasks = append(data.Tasks, &models.Task{ID: item.ID, Name: item.Name, FieldID: item.FieldID})
	}
	return data
}
