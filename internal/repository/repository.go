package repository

import "errors"

var (
	// ErrNotFound is returned when an id does not resolve to a stored record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail surfaces the storage-level uniqueness violation on
	// user emails. It is the authoritative conflict signal; any pre-check a
	// caller performs is advisory only.
	ErrDuplicateEmail = errors.New("email already registered")
)
