package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/device/models"
	"github.com/rbustosc/fieldsync/internal/device/scan"
	"github.com/rbustosc/fieldsync/internal/device/store"
)

// AssignmentMode selects which protocol the workflow drives.
type AssignmentMode string

const (
	ModeAssign   AssignmentMode = "assign"
	ModeUnassign AssignmentMode = "unassign"
)

// metaKeyAssignSelection stores the advisory last field/task-type selection.
const metaKeyAssignSelection = "assign_selection"

type assignSelection struct {
	FieldID    int64 `json:"field_id"`
	TaskTypeID int64 `json:"task_type_id"`
}

// AssignmentWorkflow drives card assignment and unassignment. In assign mode
// the operator picks a worker, field and task type, and must confirm the
// holder's identity before a scan commits; unassign mode needs no context
// and goes straight to scanning.
type AssignmentWorkflow struct {
	store    *store.Store
	resolver *scan.Resolver
	mode     AssignmentMode
	now      func() time.Time

	workerID         int64
	fieldID          int64
	taskTypeID       int64
	identityVerified bool
}

func NewAssignmentWorkflow(s *store.Store, r *scan.Resolver, mode AssignmentMode) *AssignmentWorkflow {
	return &AssignmentWorkflow{store: s, resolver: r, mode: mode, now: time.Now}
}

// Step walks SelectWorker → SelectField → SelectTaskType → Scanning in
// assign mode; unassign mode is always Scanning.
func (w *AssignmentWorkflow) Step() Step {
	if w.mode == ModeUnassign {
		return StepScanning
	}
	switch {
	case w.workerID == 0:
		return StepSelectWorker
	case w.fieldID == 0:
		return StepSelectField
	case w.taskTypeID == 0:
		return StepSelectTaskType
	default:
		return StepScanning
	}
}

// SelectWorker chooses who will receive the next scanned card.
func (w *AssignmentWorkflow) SelectWorker(ctx context.Context, workerID int64) error {
	if _, err := w.store.Workers.GetByID(ctx, workerID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("unknown worker %d: %w", workerID, common.ErrValidation)
		}
		return err
	}
	w.workerID = workerID
	w.identityVerified = false
	return nil
}

func (w *AssignmentWorkflow) SelectField(ctx context.Context, fieldID int64) error {
	if _, err := w.store.Catalog.FieldByID(ctx, fieldID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("unknown field %d: %w", fieldID, common.ErrValidation)
		}
		return err
	}
	w.fieldID = fieldID
	w.saveSelection(ctx)
	return nil
}

func (w *AssignmentWorkflow) SelectTaskType(ctx context.Context, taskTypeID int64) error {
	if _, err := w.store.Catalog.TaskTypeByID(ctx, taskTypeID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("unknown task type %d: %w", taskTypeID, common.ErrValidation)
		}
		return err
	}
	w.taskTypeID = taskTypeID
	w.saveSelection(ctx)
	return nil
}

// VerifyIdentity records that the operator confirmed the worker is who the
// card is being issued to. Required before any scan commits in assign mode.
func (w *AssignmentWorkflow) VerifyIdentity(verified bool) {
	w.identityVerified = verified
}

// RestoreSelection reloads the advisory last field/task-type choice so
// reopening the screen resumes context. Missing or stale state is ignored.
func (w *AssignmentWorkflow) RestoreSelection(ctx context.Context) {
	var sel assignSelection
	ok, err := w.store.Metadata.GetJSON(ctx, metaKeyAssignSelection, &sel)
	if err != nil || !ok {
		return
	}
	if sel.FieldID != 0 {
		if _, err := w.store.Catalog.FieldByID(ctx, sel.FieldID); err == nil {
			w.fieldID = sel.FieldID
		}
	}
	if sel.TaskTypeID != 0 {
		if _, err := w.store.Catalog.TaskTypeByID(ctx, sel.TaskTypeID); err == nil {
			w.taskTypeID = sel.TaskTypeID
		}
	}
}

func (w *AssignmentWorkflow) saveSelection(ctx context.Context) {
	// Advisory convenience state only; a failed save is not worth failing
	// the selection for.
	_ = w.store.Metadata.SetJSON(ctx, metaKeyAssignSelection,
		assignSelection{FieldID: w.fieldID, TaskTypeID: w.taskTypeID})
}

// Scan commits the protocol for the scanned card: an assignment in assign
// mode, a tombstone plus check-out in unassign mode.
func (w *AssignmentWorkflow) Scan(ctx context.Context, cardCode string) (*models.CardAssignment, error) {
	date := today(w.now)

	if w.mode == ModeUnassign {
		return nil, w.resolver.Unassign(ctx, cardCode, date)
	}

	if w.Step() != StepScanning {
		return nil, fmt.Errorf("selection incomplete at %s: %w", w.Step(), common.ErrValidation)
	}
	if !w.identityVerified {
		return nil, fmt.Errorf("identity not verified: %w", common.ErrValidation)
	}

	return w.resolver.Assign(ctx, cardCode, w.workerID, date, w.fieldID, w.taskTypeID)
}
