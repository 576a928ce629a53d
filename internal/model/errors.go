package model

import "errors"

// Sentinel errors shared across store, services and API. Store
// implementations map their driver-level "no rows" conditions to
// ErrNotFound; services wrap ErrValidation around rejected input.
// Callers classify with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
)
