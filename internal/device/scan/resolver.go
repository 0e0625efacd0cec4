// Package scan implements the card-scan protocols shared by the capture
// workflows: resolving a scanned code to the worker holding the card today,
// creating and removing daily assignments, and suppressing accidental
// duplicate scans.
package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/device/models"
	"github.com/rbustosc/fieldsync/internal/device/store"
)

// Resolver maps scanned card codes to workers under the one-holder-per-day
// constraint, and owns the assignment/unassignment protocol.
type Resolver struct {
	store *store.Store
	now   func() time.Time
}

func NewResolver(s *store.Store) *Resolver {
	return &Resolver{store: s, now: time.Now}
}

// Resolve returns the worker assigned to the card on the given date.
// Fails with common.ErrCardNotFound when the code is not in the mirror
// (catalogs must be pulled first) and common.ErrCardNotAssigned when nobody
// holds the card that day.
func (r *Resolver) Resolve(ctx context.Context, cardCode, date string) (*models.Worker, error) {
	if _, err := r.store.Cards.GetByCode(ctx, cardCode); err != nil {
		return nil, err
	}

	assignment, err := r.store.Assignments.ActiveByCard(ctx, cardCode, date)
	if err != nil {
		return nil, err
	}

	worker, err := r.store.Workers.GetByID(ctx, assignment.WorkerID)
	if err != nil {
		return nil, fmt.Errorf("assignment points at missing worker %d: %w", assignment.WorkerID, err)
	}
	return worker, nil
}

// Assign gives the card to the worker for the given date. Re-assigning to
// the same worker is an idempotent no-op; a card held by a different worker
// is never transferred implicitly and yields common.ErrCardAlreadyAssigned;
// the existing assignment must be removed explicitly first.
func (r *Resolver) Assign(ctx context.Context, cardCode string, workerID int64, date string, fieldID, taskTypeID int64) (*models.CardAssignment, error) {
	card, err := r.store.Cards.GetByCode(ctx, cardCode)
	if err != nil {
		return nil, err
	}

	existing, err := r.store.Assignments.ActiveByCard(ctx, cardCode, date)
	if err == nil {
		if existing.WorkerID == workerID {
			return existing, nil
		}
		return nil, fmt.Errorf("card %s held by worker %d: %w", cardCode, existing.WorkerID, common.ErrCardAlreadyAssigned)
	}
	if !errors.Is(err, common.ErrCardNotAssigned) {
		return nil, err
	}

	assignment := &models.CardAssignment{
		CardID:     card.ID,
		CardCode:   card.Code,
		WorkerID:   workerID,
		Date:       date,
		FieldID:    fieldID,
		TaskTypeID: taskTypeID,
	}
	if err := r.store.Assignments.Insert(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Unassign tombstones the card's active assignment for the date and closes
// the holder's open attendance check-out in the same transaction: taking a
// card back is the field-side gesture for "check out".
func (r *Resolver) Unassign(ctx context.Context, cardCode, date string) error {
	assignment, err := r.store.Assignments.ActiveByCard(ctx, cardCode, date)
	if err != nil {
		return err
	}

	at := r.now()
	return r.store.WithTx(ctx, func(ctx context.Context, txs *store.Store) error {
		if err := txs.Assignments.MarkDeleted(ctx, assignment.ID, at); err != nil {
			return err
		}

		attendance, err := txs.Attendances.ByWorkerAndDate(ctx, assignment.WorkerID, date)
		if errors.Is(err, common.ErrNotFound) {
			return nil // no attendance that day, nothing to close
		}
		if err != nil {
			return err
		}
		if attendance.CheckOutTime != nil {
			return nil
		}
		return txs.Attendances.SetCheckOut(ctx, attendance.ID, at)
	})
}
