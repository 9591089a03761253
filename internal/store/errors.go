package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a record clashes with a unique field of an
// existing one.
var ErrDuplicate = errors.New("duplicate")
