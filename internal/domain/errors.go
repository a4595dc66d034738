package domain

import "errors"

// Sentinel errors for the application. Handlers map these onto HTTP
// status codes; everything else is treated as an internal error.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)
