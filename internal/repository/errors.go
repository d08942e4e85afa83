package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrStale means the guarded update matched no rows because the
	// record already moved past the expected state.
	ErrStale = errors.New("stale state")
)
