// Package models defines the backend entities. Every row is scoped to a
// company; the scoping id always comes from the device's session token,
// never from a payload.
package models

import "time"

// Device is a registered field terminal. SecretHash is the bcrypt hash of
// the shared secret presented at login.
type Device struct {
	ID         int64
	CompanyID  int64
	Code       string
	SecretHash string
	Name       string
}

// SyncOperation is one applied idempotency token. A uuid present here means
// the operation's effects are already in the database.
type SyncOperation struct {
	ID        int64
	UUID      string
	CompanyID int64
	DeviceID  int64
	Entity    string
	Action    string
	AppliedAt time.Time
}

// Worker is a person employed by a company, directly or via a contractor.
type Worker struct {
	ID           int64
	CompanyID    int64
	Name         string
	NationalID   string
	ContractorID *int64
	Validated    bool
}

// Card is a physical scannable token owned by a company.
type Card struct {
	ID        int64
	CompanyID int64
	Code      string
	Status    string
}

// CardAssignment links a card to a worker for one calendar day. DeletedAt
// set means the card was returned; the row stays for audit.
type CardAssignment struct {
	ID         int64
	UUID       string
	CompanyID  int64
	CardID     int64
	WorkerID   int64
	Date       string
	FieldID    *int64
	TaskTypeID *int64
	DeletedAt  *time.Time
}

// Attendance is the single daily check-in/out row for a worker.
type Attendance struct {
	ID           int64
	UUID         string
	CompanyID    int64
	WorkerID     int64
	Date         string
	CheckInTime  time.Time
	CheckOutTime *time.Time
	FieldID      int64
	TaskTypeID   *int64
}

// HarvestCollection is an append-only harvest event reported by a device.
type HarvestCollection struct {
	ID             int64
	UUID           string
	CompanyID      int64
	WorkerID       int64
	CardCode       string
	Date           string
	ContainerID    int64
	Quantity       int
	FieldID        int64
	CuartelID      int64
	SpeciesID      *int64
	IsBinCompleted bool
	ManualBinUnits *int
	WeightKg       float64
}

// TaskLog is an append-only audit entry tied to a task.
type TaskLog struct {
	ID        int64
	UUID      string
	CompanyID int64
	TaskID    int64
	Event     string
	Comment   string
	CreatedAt time.Time
}

// Reference catalog rows served to devices.

type Field struct {
	ID        int64
	CompanyID int64
	Name      string
}

type Cuartel struct {
	ID        int64
	CompanyID int64
	Name      string
	FieldID   int64
	SpeciesID int64
}

type Species struct {
	ID        int64
	CompanyID int64
	Name      string
}

type Container struct {
	ID        int64
	CompanyID int64
	Name      string
	WeightKg  float64
}

type TaskType struct {
	ID        int64
	CompanyID int64
	Name      string
}

type Task struct {
	ID        int64
	CompanyID int64
	Name      string
	FieldID   int64
}
