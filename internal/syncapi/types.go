// Package syncapi defines the wire contract between field devices and the
// sync backend: the operation envelope pushed by the reconciler, the
// per-operation results returned by the server, and the catalog payload
// pulled at session start. Both sides import this package so the JSON shapes
// cannot drift.
package syncapi

import "encoding/json"

// Entity names accepted by the sync endpoint.
const (
	EntityWorker            = "worker"
	EntityCardAssignment    = "card_assignment"
	EntityAttendance        = "attendance"
	EntityHarvestCollection = "harvest_collection"
	EntityTaskLog           = "task_log"
)

// Actions accepted by the sync endpoint.
const (
	ActionCreate = "create"
	ActionDelete = "delete"
)

// Per-operation result statuses.
const (
	StatusSynced        = "synced"
	StatusAlreadySynced = "already_synced"
	StatusError         = "error"
)

// Operation is a single client-captured change. UUID is the client-generated
// idempotency key; the server applies an operation at most once per UUID.
// Timestamp is the device-local capture time in milliseconds.
type Operation struct {
	UUID      string          `json:"uuid" validate:"required,uuid4"`
	Entity    string          `json:"entity" validate:"required,oneof=worker card_assignment attendance harvest_collection task_log"`
	Action    string          `json:"action" validate:"required,oneof=create delete"`
	Data      json.RawMessage `json:"data" validate:"required"`
	Timestamp int64           `json:"timestamp" validate:"required"`
}

// PushRequest is the batch submitted by a device.
type PushRequest struct {
	Operations []Operation `json:"operations" validate:"required,min=1,dive"`
}

// OperationResult reports the outcome of one operation. Results are matched
// to operations by UUID; order is not guaranteed.
type OperationResult struct {
	UUID    string `json:"uuid"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// PushResponse carries one result per submitted operation.
type PushResponse struct {
	Results []OperationResult `json:"results"`
}

// WorkerData is the payload of a worker create operation.
type WorkerData struct {
	Name         string `json:"name" validate:"required"`
	NationalID   string `json:"national_id" validate:"required"`
	ContractorID *int64 `json:"contractor_id,omitempty"`
	Validated    bool   `json:"validated"`
}

// CardAssignmentData is the payload of a card-assignment create or delete.
// Date is "2006-01-02" in the device's local zone.
type CardAssignmentData struct {
	CardCode   string `json:"card_code" validate:"required"`
	WorkerID   int64  `json:"worker_id"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	FieldID    int64  `json:"field_id,omitempty"`
	TaskTypeID int64  `json:"task_type_id,omitempty"`
	DeletedAt  *int64 `json:"deleted_at,omitempty"`
}

// AttendanceData is the payload of an attendance create.
type AttendanceData struct {
	WorkerID     int64  `json:"worker_id" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	CheckInTime  int64  `json:"check_in_time" validate:"required"`
	CheckOutTime *int64 `json:"check_out_time,omitempty"`
	FieldID      int64  `json:"field_id" validate:"required"`
	TaskTypeID   int64  `json:"task_type_id,omitempty"`
}

// HarvestCollectionData is the payload of a harvest-collection create.
type HarvestCollectionData struct {
	WorkerID       int64   `json:"worker_id" validate:"required"`
	CardCode       string  `json:"card_code" validate:"required"`
	Date           string  `json:"date" validate:"required,datetime=2006-01-02"`
	ContainerID    int64   `json:"container_id" validate:"required"`
	Quantity       int     `json:"quantity" validate:"required,gt=0"`
	FieldID        int64   `json:"field_id" validate:"required"`
	CuartelID      int64   `json:"cuartel_id" validate:"required"`
	SpeciesID      int64   `json:"species_id,omitempty"`
	IsBinCompleted bool    `json:"is_bin_completed"`
	ManualBinUnits *int    `json:"manual_bin_units,omitempty" validate:"omitempty,gt=0"`
	WeightKg       float64 `json:"weight_kg,omitempty"`
}

// TaskLogData is the payload of a task-log create.
type TaskLogData struct {
	TaskID  int64  `json:"task_id" validate:"required"`
	Event   string `json:"event" validate:"required"`
	Comment string `json:"comment,omitempty"`
}

// LoginRequest authenticates a device.
type LoginRequest struct {
	DeviceCode string `json:"device_code" validate:"required"`
	Secret     string `json:"secret" validate:"required"`
}

// LoginResponse carries the session token for subsequent calls.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// Catalog is the reference data pulled into the device mirror at session
// start. Identifiers are server-assigned.
type Catalog struct {
	Workers    []CatalogWorker    `json:"workers"`
	Cards      []CatalogCard      `json:"cards"`
	Fields     []CatalogItem      `json:"fields"`
	Cuarteles  []CatalogCuartel   `json:"cuarteles"`
	Species    []CatalogItem      `json:"species"`
	Containers []CatalogContainer `json:"containers"`
	TaskTypes  []CatalogItem      `json:"task_types"`
	Tasks      []CatalogTask      `json:"tasks"`
}

type CatalogWorker struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	NationalID   string `json:"national_id"`
	ContractorID *int64 `json:"contractor_id,omitempty"`
	Validated    bool   `json:"validated"`
}

type CatalogCard struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Status string `json:"status"`
}

type CatalogItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CatalogCuartel ties a planting unit to its field and species. FieldID may
// be zero when the catalog record is incomplete; capture workflows guard
// against that.
type CatalogCuartel struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	FieldID   int64  `json:"field_id"`
	SpeciesID int64  `json:"species_id"`
}

type CatalogContainer struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	WeightKg float64 `json:"weight_kg"`
}

type CatalogTask struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	FieldID int64  `json:"field_id"`
}
