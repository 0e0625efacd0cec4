// Package capture implements the scan-gating workflows of the field device:
// short linear state machines that collect the required context (field, task
// type, cuartel, container, quantity) before a scan is allowed to commit a
// record to the local mirror.
//
// Workflow-level errors resolve at the screen boundary: conflicts and
// duplicate scans come back as common sentinels the app layer shows as
// warnings, validation failures never reach the store, and storage failures
// surface a retry prompt.
package capture

import "time"

// Step identifies where a workflow currently is in its state machine.
type Step string

const (
	StepSelectWorker    Step = "select_worker"
	StepSelectField     Step = "select_field"
	StepSelectTaskType  Step = "select_task_type"
	StepSelectCuartel   Step = "select_cuartel"
	StepSelectContainer Step = "select_container"
	StepScanning        Step = "scanning"
)

// today renders a wall-clock time as the calendar-day key used by
// assignments and attendances.
func today(now func() time.Time) string {
	return now().Format("2006-01-02")
}
