package domain

import "errors"

// Sentinel errors shared by repositories and services. Wrap them with fmt.Errorf("...: %w")
// so controllers can map them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)
