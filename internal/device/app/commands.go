package app

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/device/capture"
	"github.com/rbustosc/fieldsync/internal/device/models"
)

// Login authenticates this device against the backend. The registration
// code defaults to the configured one; the shared secret is read without
// echo.
func (a *App) Login(ctx context.Context) error {
	code := a.config.DeviceCode
	if code == "" {
		var err error
		code, err = GetSimpleText(a.reader, "Enter device code", os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
	}

	secret, err := GetSecret(os.Stdout, "Enter device secret")
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := a.client.Login(ctx, code, string(secret)); err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	a.config.DeviceCode = code
	a.loggedIn = true
	log.Println("Login successful")
	return nil
}

// Pull refreshes the local reference catalog from the server. Unsynced
// capture rows are untouched.
func (a *App) Pull(ctx context.Context) error {
	if err := a.reconciler.PullCatalog(ctx); err != nil {
		log.Printf("Catalog pull failed: %s", err.Error())
		return err
	}
	log.Println("Catalog updated")
	return nil
}

// Attendance runs the attendance screen: pick a field once, then scan cards
// until an empty line.
func (a *App) Attendance(ctx context.Context) error {
	w := capture.NewAttendanceWorkflow(a.store, a.resolver, a.config.DefaultFieldID)

	for w.Step() == capture.StepSelectField {
		fieldID, err := GetInt(a.reader, "Enter field id", os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		if err := w.SelectField(ctx, fieldID); err != nil {
			log.Printf("error: %v", err)
		}
	}

	for {
		code, err := GetSimpleText(a.reader, "Scan card (empty line to finish)", os.Stdout)
		if err != nil || code == "" {
			return nil
		}

		att, err := w.Scan(ctx, code)
		switch {
		case errors.Is(err, common.ErrDuplicateAttendance):
			log.Printf("Worker %d already checked in at %s", att.WorkerID, att.CheckInTime.Format("15:04"))
		case errors.Is(err, common.ErrStorage):
			log.Printf("Storage error, nothing saved, scan again to retry: %v", err)
		case err != nil:
			log.Printf("Scan rejected: %s", err.Error())
		default:
			log.Printf("Checked in worker %d on field %d", att.WorkerID, att.FieldID)
		}
	}
}

// Assign runs the card-issue screen: worker, field and task type are chosen,
// the operator confirms the holder's identity, then cards are scanned.
func (a *App) Assign(ctx context.Context) error {
	w := capture.NewAssignmentWorkflow(a.store, a.resolver, capture.ModeAssign)
	w.RestoreSelection(ctx)

	for w.Step() != capture.StepScanning {
		var prompt string
		var apply func(context.Context, int64) error

		switch w.Step() {
		case capture.StepSelectWorker:
			prompt, apply = "Enter worker id", w.SelectWorker
		case capture.StepSelectField:
			prompt, apply = "Enter field id", w.SelectField
		case capture.StepSelectTaskType:
			prompt, apply = "Enter task type id", w.SelectTaskType
		}

		id, err := GetInt(a.reader, prompt, os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		if err := apply(ctx, id); err != nil {
			log.Printf("error: %v", err)
		}
	}

	confirm, err := GetSimpleText(a.reader, "Confirm holder identity? (y/n)", os.Stdout)
	if err != nil {
		return err
	}
	w.VerifyIdentity(strings.EqualFold(confirm, "y"))

	for {
		code, err := GetSimpleText(a.reader, "Scan card (empty line to finish)", os.Stdout)
		if err != nil || code == "" {
			return nil
		}

		assignment, err := w.Scan(ctx, code)
		switch {
		case errors.Is(err, common.ErrCardAlreadyAssigned):
			log.Printf("Card %s already belongs to someone else today", code)
		case errors.Is(err, common.ErrStorage):
			log.Printf("Storage error, nothing saved, scan again to retry: %v", err)
		case err != nil:
			log.Printf("Scan rejected: %s", err.Error())
		default:
			log.Printf("Card %s assigned to worker %d", code, assignment.WorkerID)
		}
	}
}

// Unassign runs the card-return screen: no selection needed, every scanned
// card is released and its holder checked out.
func (a *App) Unassign(ctx context.Context) error {
	w := capture.NewAssignmentWorkflow(a.store, a.resolver, capture.ModeUnassign)

	for {
		code, err := GetSimpleText(a.reader, "Scan card to return (empty line to finish)", os.Stdout)
		if err != nil || code == "" {
			return nil
		}

		if _, err := w.Scan(ctx, code); err != nil {
			if errors.Is(err, common.ErrStorage) {
				log.Printf("Storage error, nothing saved, scan again to retry: %v", err)
			} else {
				log.Printf("Scan rejected: %s", err.Error())
			}
			continue
		}
		log.Printf("Card %s returned", code)
	}
}

// Harvest runs the harvest screen. Cuartel and container persist across
// visits; quantity resets to one after every committed scan, so the loop
// accepts "qty N" and "bin N" lines between scans.
func (a *App) Harvest(ctx context.Context) error {
	w := capture.NewHarvestWorkflow(a.store, a.resolver, a.suppressor)
	w.RestoreSelection(ctx)

	for w.Step() != capture.StepScanning {
		var prompt string
		var apply func(context.Context, int64) error

		switch w.Step() {
		case capture.StepSelectCuartel:
			prompt, apply = "Enter cuartel id", w.SelectCuartel
		case capture.StepSelectContainer:
			prompt, apply = "Enter container id", w.SelectContainer
		}

		id, err := GetInt(a.reader, prompt, os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		if err := apply(ctx, id); err != nil {
			log.Printf("error: %v", err)
		}
	}

	for {
		line, err := GetSimpleText(a.reader, "Scan card, or 'qty N' / 'bin N' (empty line to finish)", os.Stdout)
		if err != nil || line == "" {
			return nil
		}

		if rest, ok := strings.CutPrefix(line, "qty "); ok {
			q, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				log.Printf("error: not a number: %q", rest)
				continue
			}
			if err := w.SetQuantity(q); err != nil {
				log.Printf("error: %v", err)
			}
			continue
		}
		if rest, ok := strings.CutPrefix(line, "bin "); ok {
			units, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				log.Printf("error: not a number: %q", rest)
				continue
			}
			w.SetBinCompleted(true, &units)
			continue
		}

		collection, err := w.Scan(ctx, line)
		switch {
		case errors.Is(err, common.ErrDuplicateScan):
			log.Printf("Ignored: %s", err.Error())
		case errors.Is(err, common.ErrStorage):
			log.Printf("Storage error, nothing saved, scan again to retry: %v", err)
		case err != nil:
			log.Printf("Scan rejected: %s", err.Error())
		default:
			log.Printf("Recorded %d x container %d (%.1f kg) for worker %d",
				collection.Quantity, collection.ContainerID, collection.WeightKg, collection.WorkerID)
		}
	}
}

// Worker registers a worker on the device. The row syncs like any capture:
// the backend converges registrations of the same national id from several
// devices onto one server row.
func (a *App) Worker(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter worker name", os.Stdout)
	if err != nil || name == "" {
		return err
	}
	nationalID, err := GetSimpleText(a.reader, "Enter national id", os.Stdout)
	if err != nil || nationalID == "" {
		return err
	}
	contractorID, err := GetInt(a.reader, "Enter contractor id (0 for none)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	validated, err := GetSimpleText(a.reader, "Identity document checked? (y/n)", os.Stdout)
	if err != nil {
		return err
	}

	worker := &models.Worker{
		Name:       name,
		NationalID: nationalID,
		Validated:  strings.EqualFold(validated, "y"),
	}
	if contractorID != 0 {
		worker.ContractorID = &contractorID
	}

	if err := a.store.Workers.Insert(ctx, worker); err != nil {
		if errors.Is(err, common.ErrStorage) {
			log.Printf("Storage error, nothing saved, please retry: %v", err)
			return err
		}
		log.Printf("error: %v", err)
		return err
	}
	log.Printf("Registered worker %d (%s)", worker.ID, worker.NationalID)
	return nil
}

// TaskLog records an audit event against a catalog task.
func (a *App) TaskLog(ctx context.Context) error {
	taskID, err := GetInt(a.reader, "Enter task id", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	task, err := a.store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Printf("Unknown task %d, pull the catalog first", taskID)
		} else {
			log.Printf("error: %v", err)
		}
		return err
	}

	event, err := GetSimpleText(a.reader, "Enter event", os.Stdout)
	if err != nil || event == "" {
		return err
	}
	comment, err := GetSimpleText(a.reader, "Enter comment (optional)", os.Stdout)
	if err != nil {
		return err
	}

	entry := &models.TaskLog{TaskID: task.ID, Event: event, Comment: comment}
	if err := a.store.TaskLogs.Insert(ctx, entry); err != nil {
		if errors.Is(err, common.ErrStorage) {
			log.Printf("Storage error, nothing saved, please retry: %v", err)
			return err
		}
		log.Printf("error: %v", err)
		return err
	}
	log.Printf("Logged %q on task %s", event, task.Name)
	return nil
}

// Pending reports how many captured rows still await acknowledgement.
func (a *App) Pending(ctx context.Context) error {
	workers, err := a.store.Workers.Pending(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	assignments, err := a.store.Assignments.Pending(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	attendances, err := a.store.Attendances.Pending(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	collections, err := a.store.Collections.Pending(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	taskLogs, err := a.store.TaskLogs.Pending(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	log.Printf("Pending: %d workers, %d assignments, %d attendances, %d collections, %d task logs",
		len(workers), len(assignments), len(attendances), len(collections), len(taskLogs))
	return nil
}

// Sync pushes all pending rows and reports the outcome.
func (a *App) Sync(ctx context.Context) error {
	summary, err := a.reconciler.Sync(ctx)
	if err != nil {
		log.Printf("Sync failed: %s", err.Error())
		return err
	}
	log.Printf("Sync complete: %d pushed, %d acknowledged, %d errored",
		summary.Pushed, summary.Acked, summary.Errored)
	return nil
}
