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

// metaKeyHarvestSelection stores the advisory last cuartel/container choice.
const metaKeyHarvestSelection = "harvest_selection"

type harvestSelection struct {
	CuartelID   int64 `json:"cuartel_id"`
	ContainerID int64 `json:"container_id"`
}

// HarvestWorkflow gates harvest-collection capture. Selecting a cuartel
// derives its field and species; a cuartel with no associated field aborts
// back to the first step with an explanatory message rather than defaulting
// silently. Quantity defaults to 1 and, together with the optional manual
// bin units, is re-validated immediately before the record is written.
type HarvestWorkflow struct {
	store      *store.Store
	resolver   *scan.Resolver
	suppressor *scan.Suppressor
	now        func() time.Time

	cuartelID      int64
	fieldID        int64
	speciesID      int64
	containerID    int64
	quantity       int
	binCompleted   bool
	manualBinUnits *int
}

func NewHarvestWorkflow(s *store.Store, r *scan.Resolver, sup *scan.Suppressor) *HarvestWorkflow {
	return &HarvestWorkflow{store: s, resolver: r, suppressor: sup, now: time.Now, quantity: 1}
}

// Step walks SelectCuartel → SelectContainer → Scanning.
func (w *HarvestWorkflow) Step() Step {
	switch {
	case w.cuartelID == 0:
		return StepSelectCuartel
	case w.containerID == 0:
		return StepSelectContainer
	default:
		return StepScanning
	}
}

// SelectCuartel chooses the planting unit and derives its field and species.
// A cuartel without a field is a data-quality problem in the catalog: the
// workflow resets to the first step and reports why.
func (w *HarvestWorkflow) SelectCuartel(ctx context.Context, cuartelID int64) error {
	cuartel, err := w.store.Catalog.CuartelByID(ctx, cuartelID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("unknown cuartel %d: %w", cuartelID, common.ErrValidation)
		}
		return err
	}
	if cuartel.FieldID == 0 {
		w.cuartelID = 0
		w.fieldID = 0
		w.speciesID = 0
		return fmt.Errorf("cuartel %q has no associated field, fix the catalog before collecting: %w",
			cuartel.Name, common.ErrValidation)
	}

	w.cuartelID = cuartel.ID
	w.fieldID = cuartel.FieldID
	w.speciesID = cuartel.SpeciesID
	w.saveSelection(ctx)
	return nil
}

func (w *HarvestWorkflow) SelectContainer(ctx context.Context, containerID int64) error {
	if _, err := w.store.Catalog.ContainerByID(ctx, containerID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("unknown container %d: %w", containerID, common.ErrValidation)
		}
		return err
	}
	w.containerID = containerID
	w.saveSelection(ctx)
	return nil
}

// SetQuantity overrides the default quantity of 1.
func (w *HarvestWorkflow) SetQuantity(q int) error {
	if q <= 0 {
		return fmt.Errorf("quantity must be positive, got %d: %w", q, common.ErrValidation)
	}
	w.quantity = q
	return nil
}

// SetBinCompleted toggles the bin-completed flag. units may be nil, in which
// case the scan quantity is used at commit; it is re-validated there either
// way.
func (w *HarvestWorkflow) SetBinCompleted(completed bool, units *int) {
	w.binCompleted = completed
	if !completed {
		w.manualBinUnits = nil
		return
	}
	w.manualBinUnits = units
}

// RestoreSelection reloads the advisory last cuartel/container choice,
// re-deriving field and species through the normal selection path so stale
// catalog entries are rejected rather than trusted.
func (w *HarvestWorkflow) RestoreSelection(ctx context.Context) {
	var sel harvestSelection
	ok, err := w.store.Metadata.GetJSON(ctx, metaKeyHarvestSelection, &sel)
	if err != nil || !ok {
		return
	}
	if sel.CuartelID != 0 {
		_ = w.SelectCuartel(ctx, sel.CuartelID)
	}
	if sel.ContainerID != 0 {
		_ = w.SelectContainer(ctx, sel.ContainerID)
	}
}

func (w *HarvestWorkflow) saveSelection(ctx context.Context) {
	_ = w.store.Metadata.SetJSON(ctx, metaKeyHarvestSelection,
		harvestSelection{CuartelID: w.cuartelID, ContainerID: w.containerID})
}

// Scan resolves the card and appends one harvest-collection event.
//
// The duplicate-scan suppressor runs first: a repeat of the same code inside
// the window returns common.ErrDuplicateScan and writes nothing. Quantity
// and manual bin units are validated immediately before the write; the bin
// units fall back to the scan quantity only here, never silently at commit.
func (w *HarvestWorkflow) Scan(ctx context.Context, cardCode string) (*models.HarvestCollection, error) {
	if w.Step() != StepScanning {
		return nil, fmt.Errorf("selection incomplete at %s: %w", w.Step(), common.ErrValidation)
	}

	if err := w.suppressor.Check(ctx, cardCode); err != nil {
		return nil, err
	}

	date := today(w.now)
	worker, err := w.resolver.Resolve(ctx, cardCode, date)
	if err != nil {
		return nil, err
	}

	if w.quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d: %w", w.quantity, common.ErrValidation)
	}

	var manualUnits *int
	if w.binCompleted {
		units := w.quantity
		if w.manualBinUnits != nil {
			units = *w.manualBinUnits
		}
		if units <= 0 {
			return nil, fmt.Errorf("manual bin units must be positive, got %d: %w", units, common.ErrValidation)
		}
		manualUnits = &units
	}

	container, err := w.store.Catalog.ContainerByID(ctx, w.containerID)
	if err != nil {
		return nil, err
	}

	nowMs := w.now().UnixMilli()
	collection := &models.HarvestCollection{
		WorkerID:       worker.ID,
		CardCode:       cardCode,
		Date:           date,
		ContainerID:    w.containerID,
		Quantity:       w.quantity,
		FieldID:        w.fieldID,
		CuartelID:      w.cuartelID,
		SpeciesID:      w.speciesID,
		IsBinCompleted: w.binCompleted,
		ManualBinUnits: manualUnits,
		WeightKg:       container.WeightKg * float64(w.quantity),
		CreatedAtMs:    nowMs,
	}
	if err := w.store.Collections.Insert(ctx, collection); err != nil {
		return nil, err
	}

	w.suppressor.Record(cardCode, nowMs)

	// One scan, one bin: quantity resets to the default, the bin toggle
	// clears, the cuartel/container context stays for the next worker.
	w.quantity = 1
	w.binCompleted = false
	w.manualBinUnits = nil

	return collection, nil
}
