package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("ranking not found")
	ErrEmptyKey      = errors.New("empty ranking key")
	ErrEmptyPath     = errors.New("sqlite store needs a path")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrClosed        = errors.New("store closed")
)
