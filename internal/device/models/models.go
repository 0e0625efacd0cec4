// Package models defines the device-side record types mirrored from the
// server plus the rows captured locally while offline. The mapping from
// loosely-typed query results to these types happens once, at the store
// boundary.
package models

import "time"

// CardStatus is the lifecycle state of a physical card.
type CardStatus string

const (
	CardStatusActive   CardStatus = "active"
	CardStatusInactive CardStatus = "inactive"
	CardStatusLost     CardStatus = "lost"
)

// Worker is a person who can hold a card and produce attendance or harvest
// events. Workers are referenced, never owned, by the capture rows.
type Worker struct {
	ID           int64
	ClientUUID   string
	Name         string
	NationalID   string
	ContractorID *int64
	Validated    bool
	Lifecycle
}

// Card is a physical scannable token. Immutable on the device once pulled,
// except through catalog refresh.
type Card struct {
	ID     int64
	Code   string
	Status CardStatus
}

// CardAssignment links a card to a worker for one calendar day. At most one
// non-tombstoned assignment may exist per (card, date); unassignment
// tombstones the row so the event still propagates through sync.
type CardAssignment struct {
	ID         int64
	ClientUUID string
	CardID     int64
	CardCode   string
	WorkerID   int64
	Date       string
	FieldID    int64
	TaskTypeID int64
	Lifecycle
}

// Attendance is the single daily check-in/out row for a worker.
type Attendance struct {
	ID           int64
	ClientUUID   string
	WorkerID     int64
	Date         string
	CheckInTime  time.Time
	CheckOutTime *time.Time
	FieldID      int64
	TaskTypeID   int64
	Lifecycle
}

// HarvestCollection is an append-only harvest event. CreatedAtMs is the
// device-local millisecond timestamp consumed by the duplicate-scan window;
// it is distinct from the row's server-facing creation time.
type HarvestCollection struct {
	ID             int64
	ClientUUID     string
	WorkerID       int64
	CardCode       string
	Date           string
	ContainerID    int64
	Quantity       int
	FieldID        int64
	CuartelID      int64
	SpeciesID      int64
	IsBinCompleted bool
	ManualBinUnits *int
	WeightKg       float64
	CreatedAtMs    int64
	Lifecycle
}

// Task is a unit of planned work pulled from the server catalog.
type Task struct {
	ID      int64
	Name    string
	FieldID int64
}

// TaskLog is an append-only audit entry tied to a task. ClientUUID doubles
// as the idempotency key for sync.
type TaskLog struct {
	ID         int64
	ClientUUID string
	TaskID     int64
	Event      string
	Comment    string
	CreatedAt  time.Time
	Lifecycle
}

// Field, Cuartel, Species, Container and TaskType are read-only reference
// rows seeded by the catalog pull.

type Field struct {
	ID   int64
	Name string
}

type Cuartel struct {
	ID        int64
	Name      string
	FieldID   int64
	SpeciesID int64
}

type Species struct {
	ID   int64
	Name string
}

type Container struct {
	ID       int64
	Name     string
	WeightKg float64
}

type TaskType struct {
	ID   int64
	Name string
}
