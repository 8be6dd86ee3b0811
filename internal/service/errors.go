package service

import "errors"

// Failure taxonomy for all service operations. Handlers map these to HTTP
// status codes; anything not matching is treated as an internal failure.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyExists   = errors.New("already exists")
)
