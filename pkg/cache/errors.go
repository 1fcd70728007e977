package cache

import "errors"

var (
	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("cache: closed")

	// ErrEmptyKey is returned for blank keys.
	ErrEmptyKey = errors.New("cache: empty key")
)
