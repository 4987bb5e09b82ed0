// Package common defines shared constants and sentinel errors used across
// the time capsule server components. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Capsule lifecycle errors.
	ErrorNotYetUnlocked  = errors.New("capsule is not yet unlocked")
	ErrorAlreadyUnlocked = errors.New("capsule is already unlocked")
	ErrorRetired         = errors.New("capsule has expired")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
