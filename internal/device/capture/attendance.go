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

// AttendanceWorkflow gates attendance capture: a field must be selected
// before a scan is accepted. The selected field persists across resets
// within the session; a fresh workflow starts from the operator's default
// field, passed in explicitly at construction.
type AttendanceWorkflow struct {
	store    *store.Store
	resolver *scan.Resolver
	now      func() time.Time

	fieldID int64
}

// NewAttendanceWorkflow builds the workflow. defaultFieldID may be zero when
// the operator has no default, in which case a field must be selected before
// scanning.
func NewAttendanceWorkflow(s *store.Store, r *scan.Resolver, defaultFieldID int64) *AttendanceWorkflow {
	return &AttendanceWorkflow{store: s, resolver: r, now: time.Now, fieldID: defaultFieldID}
}

// Step reports the current state: SelectField until a field is chosen, then
// Scanning.
func (w *AttendanceWorkflow) Step() Step {
	if w.fieldID == 0 {
		return StepSelectField
	}
	return StepScanning
}

// SelectField chooses the field attendance rows will be attributed to.
func (w *AttendanceWorkflow) SelectField(ctx context.Context, fieldID int64) error {
	if _, err := w.store.Catalog.FieldByID(ctx, fieldID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("unknown field %d: %w", fieldID, common.ErrValidation)
		}
		return err
	}
	w.fieldID = fieldID
	return nil
}

// Scan resolves the card and records the worker's check-in for today.
//
// A scan for a worker already present that day is an idempotent no-op: the
// existing row is returned together with common.ErrDuplicateAttendance, which
// the screen reports as a warning. The original check-in time is preserved.
func (w *AttendanceWorkflow) Scan(ctx context.Context, cardCode string) (*models.Attendance, error) {
	if w.fieldID == 0 {
		return nil, fmt.Errorf("no field selected: %w", common.ErrValidation)
	}

	date := today(w.now)
	worker, err := w.resolver.Resolve(ctx, cardCode, date)
	if err != nil {
		return nil, err
	}

	existing, err := w.store.Attendances.ByWorkerAndDate(ctx, worker.ID, date)
	if err == nil {
		return existing, common.ErrDuplicateAttendance
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	attendance := &models.Attendance{
		WorkerID:    worker.ID,
		Date:        date,
		CheckInTime: w.now(),
		FieldID:     w.fieldID,
	}
	if err := w.store.Attendances.Insert(ctx, attendance); err != nil {
		return nil, err
	}
	return attendance, nil
}
