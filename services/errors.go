package services

import "errors"

// Errors shared by the services and mapped to HTTP statuses by the handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed = errors.New("validation failed")

	// ErrConflict means the stored state changed under the request; the client reloads.
	ErrConflict = errors.New("state changed concurrently, reload and retry")

	ErrCategoryNotFound   = errors.New("category not found")
	ErrCompetitorNotFound = errors.New("competitor not found")
	ErrPoolNotFound       = errors.New("pool not found")
	ErrTableNotFound      = errors.New("table not found")

	ErrPoolValidated   = errors.New("pool is validated and frozen")
	ErrPoolNotFinished = errors.New("pool is not finished; force the validation to override")
	ErrPoolsLocked     = errors.New("category has recorded bouts, pools cannot be regenerated")
	ErrNotPaired       = errors.New("competitors are not paired in this pool")
	ErrInvalidLink     = errors.New("invalid or expired table link")
)
