package db

import "errors"

var (
	// requested record is not found.
	ErrMissing = errors.New("missing")

	// the change conflicts with existing records (e.g. duplicated username).
	ErrConflict = errors.New("conflict")
)
