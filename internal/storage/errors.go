package storage

import "errors"

// Sentinel errors every backend maps its driver errors onto, so services
// can branch with errors.Is regardless of the store in use.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidInput covers missing ids and references to absent rows.
	ErrInvalidInput = errors.New("invalid input")
)
