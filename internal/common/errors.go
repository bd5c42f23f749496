// Package common defines shared constants and sentinel errors used across
// client and server layers of stockkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal    = errors.New("internal error")
	ErrorUnavailable = errors.New("remote unavailable")

	// Validation errors (malformed records, unknown collections).
	ErrorValidation = errors.New("validation error")
)
