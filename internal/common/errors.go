// Package common defines shared constants and sentinel errors used across
// the device and server layers of FieldSync. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrStorage  = errors.New("local storage unavailable")

	// Identity-resolution errors.
	ErrCardNotFound        = errors.New("card not found")
	ErrCardNotAssigned     = errors.New("card not assigned")
	ErrCardAlreadyAssigned = errors.New("card already assigned")

	// Capture-time conflicts. These are warnings at the screen boundary,
	// not failures.
	ErrDuplicateAttendance = errors.New("duplicate attendance")
	ErrDuplicateScan       = errors.New("duplicate scan suppressed")

	// Validation errors caught before any store write.
	ErrValidation = errors.New("validation failure")

	// Service-level errors.
	ErrUnauthorized = errors.New("unauthorized")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
