package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/dbx"
	"github.com/rbustosc/fieldsync/internal/logging"
	"github.com/rbustosc/fieldsync/internal/server/models"
	"github.com/rbustosc/fieldsync/internal/server/repositories/repomanager"
	"github.com/rbustosc/fieldsync/internal/syncapi"
)

// SyncService applies device-pushed operation batches. Each operation runs
// in its own transaction holding the idempotency check, the entity write
// and the token record; a business failure rolls all three back, so the
// operation stays retryable. One bad operation never aborts the batch.
type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	validate    *validator.Validate
	now         func() time.Time
}

func NewSyncService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *SyncService {
	return &SyncService{
		db:          db,
		repomanager: m,
		logger:      logger,
		validate:    validator.New(),
		now:         time.Now,
	}
}

// Apply processes the batch and returns one result per operation, matched
// by uuid.
func (s *SyncService) Apply(ctx context.Context, deviceID, companyID int64, ops []syncapi.Operation) []syncapi.OperationResult {
	results := make([]syncapi.OperationResult, 0, len(ops))
	for _, op := range ops {
		results = append(results, s.applyOne(ctx, deviceID, companyID, op))
	}
	return results
}

func (s *SyncService) applyOne(ctx context.Context, deviceID, companyID int64, op syncapi.Operation) syncapi.OperationResult {
	status := syncapi.StatusSynced

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tokens := s.repomanager.SyncOps(tx)

		applied, err := tokens.Exists(ctx, op.UUID)
		if err != nil {
			return err
		}
		if applied {
			status = syncapi.StatusAlreadySynced
			return nil
		}

		if err := s.applyEntity(ctx, tx, companyID, op); err != nil {
			return err
		}

		return tokens.Record(ctx, &models.SyncOperation{
			UUID:      op.UUID,
			CompanyID: companyID,
			DeviceID:  deviceID,
			Entity:    op.Entity,
			Action:    op.Action,
		})
	})

	if err != nil {
		s.logger.Error(ctx, fmt.Sprintf("sync operation %s failed: %s", op.UUID, err.Error()))
		return syncapi.OperationResult{UUID: op.UUID, Status: syncapi.StatusError, Message: resultMessage(err)}
	}

	return syncapi.OperationResult{UUID: op.UUID, Status: status}
}

func (s *SyncService) applyEntity(ctx context.Context, tx dbx.DBTX, companyID int64, op syncapi.Operation) error {
	switch {
	case op.Entity == syncapi.EntityWorker && op.Action == syncapi.ActionCreate:
		return s.applyWorker(ctx, tx, companyID, op)
	case op.Entity == syncapi.EntityCardAssignment && op.Action == syncapi.ActionCreate:
		return s.applyAssignment(ctx, tx, companyID, op)
	case op.Entity == syncapi.EntityCardAssignment && op.Action == syncapi.ActionDelete:
		return s.applyUnassignment(ctx, tx, companyID, op)
	case op.Entity == syncapi.EntityAttendance && op.Action == syncapi.ActionCreate:
		return s.applyAttendance(ctx, tx, companyID, op)
	case op.Entity == syncapi.EntityHarvestCollection && op.Action == syncapi.ActionCreate:
		return s.applyCollection(ctx, tx, companyID, op)
	case op.Entity == syncapi.EntityTaskLog && op.Action == syncapi.ActionCreate:
		return s.applyTaskLog(ctx, tx, companyID, op)
	default:
		return fmt.Errorf("unsupported %s/%s: %w", op.Entity, op.Action, common.ErrValidation)
	}
}

// applyWorker registers a device-created worker. A worker with the same
// national id already known for the company is accepted as the same person,
// so two devices registering one worker converge.
func (s *SyncService) applyWorker(ctx context.Context, tx dbx.DBTX, companyID int64, op syncapi.Operation) error {
	var data syncapi.WorkerData
	if err := s.decode(op.Data, &data); err != nil {
		return err
	}

	repo := s.repomanager.Workers(tx)

	_, err := repo.GetByNationalID(ctx, companyID, data.NationalID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	_, err = repo.Create(ctx, &models.Worker{
		CompanyID:    companyID,
		Name:         data.Name,
		NationalID:   data.NationalID,
		ContractorID: data.ContractorID,
		Validated:    data.Validated,
	})
	return err
}

func (s *SyncService) applyAssignment(ctx context.Context, tx dbx.DBTX, companyID int64, op syncapi.Operation) error {
	var data syncapi.CardAssignmentData
	if err := s.decode(op.Data, &data); err != nil {
		return err
	}

	card, err := s.repomanager.Cards(tx).GetByCode(ctx, companyID, data.CardCode)
	if err != nil {
		return err
	}
	if _, err := s.repomanager.Workers(tx).GetByID(ctx, companyID, data.WorkerID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("worker %d: %w", data.WorkerID, common.ErrNotFound)
		}
		return err
	}

	repo := s.repomanager.Assignments(tx)

	active, err := repo.ActiveByCard(ctx, companyID, card.ID, data.Date)
	if err == nil {
		if active.WorkerID == data.WorkerID {
			return nil
		}
		return fmt.Errorf("card %s on %s: %w", data.CardCode, data.Date, common.ErrCardAlreadyAssigned)
	}
	if !errors.Is(err, common.ErrCardNotAssigned) {
		return err
	}

	assignment := &models.CardAssignment{
		UUID:      op.UUID,
		CompanyID: companyID,
		CardID:    card.ID,
		WorkerID:  data.WorkerID,
		Date:      data.Date,
	}
	if data.FieldID != 0 {
		assignment.FieldID = &data.FieldID
	}
	if data.TaskTypeID != 0 {
		assignment.TaskTypeID = &data.TaskTypeID
	}
	_, err = repo.Create(ctx, assignment)
	return err
}

func (s *SyncService) applyUnassignment(ctx context.Context, tx dbx.DBTX, companyID int64, op syncapi.Operation) error {
	var data syncapi.CardAssignmentData
	if err := s.decode(op.Data, &data); err != nil {
		return err
	}

	card, err := s.repomanager.Cards(tx).GetByCode(ctx, companyID, data.CardCode)
	if err != nil {
		return err
	}

	deletedAt := s.now()
	if data.DeletedAt != nil {
		deletedAt = time.UnixMilli(*data.DeletedAt)
	}

	return s.repomanager.Assignments(tx).Tombstone(ctx, companyID, card.ID, data.Date, deletedAt)
}

// applyAttendance enforces one attendance row per worker per day. An
// incoming operation carrying a check-out for a day whose row is still open
// is the post-sync check-out case and updates the row in place; anything
// else that collides is a duplicate.
func (s *SyncService) applyAttendance(ctx context.Context, tx dbx.DBTX, companyID int64, op syncapi.Operation) error {
	var data syncapi.AttendanceData
	if err := s.decode(op.Data, &data); err != nil {
		return err
	}

	if _, err := s.repomanager.Workers(tx).GetByID(ctx, companyID, data.WorkerID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("worker %d: %w", data.WorkerID, common.ErrNotFound)
		}
		return err
	}

	repo := s.repomanager.Attendances(tx)

	existing, err := repo.ByWorkerAndDate(ctx, companyID, data.WorkerID, data.Date)
	if err == nil {
		if data.CheckOutTime != nil && existing.CheckOutTime == nil {
			return repo.SetCheckOut(ctx, existing.ID, time.UnixMilli(*data.CheckOutTime))
		}
		return fmt.Errorf("worker %d on %s: %w", data.WorkerID, data.Date, common.ErrDuplicateAttendance)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	attendance := &models.Attendance{
		UUID:        op.UUID,
		CompanyID:   companyID,
		WorkerID:    data.WorkerID,
		Date:        data.Date,
		CheckInTime: time.UnixMilli(data.CheckInTime),
		FieldID:     data.FieldID,
	}
	if data.CheckOutTime != nil {
		t := time.UnixMilli(*data.CheckOutTime)
		attendance.CheckOutTime = &t
	}
	if data.TaskTypeID != 0 {
		attendance.TaskTypeID = &data.TaskTypeID
	}
	_, err = repo.Create(ctx, attendance)
	return err
}

func (s *SyncService) applyCollection(ctx context.Context, tx dbx.DBTX, companyID int64, op syncapi.Operation) error {
	var data syncapi.HarvestCollectionData
	if err := s.decode(op.Data, &data); err != nil {
		return err
	}

	if _, err := s.repomanager.Workers(tx).GetByID(ctx, companyID, data.WorkerID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("worker %d: %w", data.WorkerID, common.ErrNotFound)
		}
		return err
	}

	collection := &models.HarvestCollection{
		UUID:           op.UUID,
		CompanyID:      companyID,
		WorkerID:       data.WorkerID,
		CardCode:       data.CardCode,
		Date:           data.Date,
		ContainerID:    data.ContainerID,
		Quantity:       data.Quantity,
		FieldID:        data.FieldID,
		CuartelID:      data.CuartelID,
		IsBinCompleted: data.IsBinCompleted,
		ManualBinUnits: data.ManualBinUnits,
		WeightKg:       data.WeightKg,
	}
	if data.SpeciesID != 0 {
		collection.SpeciesID = &data.SpeciesID
	}
	_, err := s.repomanager.Collections(tx).Create(ctx, collection)
	return err
}

func (s *SyncService) applyTaskLog(ctx context.Context, tx dbx.DBTX, companyID int64, op syncapi.Operation) error {
	var data syncapi.TaskLogData
	if err := s.decode(op.Data, &data); err != nil {
		return err
	}

	// The task may have been deleted while the device was offline.
	if _, err := s.repomanager.Catalog(tx).TaskByID(ctx, companyID, data.TaskID); err != nil {
		return err
	}

	_, err := s.repomanager.TaskLogs(tx).Create(ctx, &models.TaskLog{
		UUID:      op.UUID,
		CompanyID: companyID,
		TaskID:    data.TaskID,
		Event:     data.Event,
		Comment:   data.Comment,
		CreatedAt: time.UnixMilli(op.Timestamp),
	})
	return err
}

func (s *SyncService) decode(raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("malformed payload: %w", common.ErrValidation)
	}
	if err := s.validate.Struct(out); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), common.ErrValidation)
	}
	return nil
}

// resultMessage renders an apply error as a stable taxonomy name the device
// can log and report.
func resultMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrCardNotFound):
		return "card_not_found"
	case errors.Is(err, common.ErrCardAlreadyAssigned):
		return "card_already_assigned"
	case errors.Is(err, common.ErrCardNotAssigned):
		return "card_not_assigned"
	case errors.Is(err, common.ErrDuplicateAttendance):
		return "duplicate_attendance"
	case errors.Is(err, common.ErrNotFound):
		return "not_found"
	case errors.Is(err, common.ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}
