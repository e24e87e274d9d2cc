package domain

import "errors"

// ErrNotFound is returned by storage adapters and the façade when the
// requested document does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails structural validation
// (e.g. missing trip name, duplicate activity ids within a stop).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")
