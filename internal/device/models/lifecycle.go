package models

import "time"

// Lifecycle is the sync bookkeeping every mirrored row carries: whether the
// row has reached the server, and whether it has been soft-deleted. Deletion
// is a tagged state rather than a nullable-timestamp check scattered through
// queries: a row is either active or tombstoned at a known time.
type Lifecycle struct {
	// Synced reports whether the server has acknowledged this row (or, for
	// a tombstoned row, the deletion itself).
	Synced bool

	// DeletedAt is the device-local tombstone time, nil while active.
	DeletedAt *time.Time
}

// Tombstoned reports whether the row has been soft-deleted.
func (l Lifecycle) Tombstoned() bool {
	return l.DeletedAt != nil
}

// Settled reports whether nothing about this row still needs to reach the
// server: it has synced and, if tombstoned, the tombstone has propagated.
func (l Lifecycle) Settled() bool {
	return l.Synced
}
