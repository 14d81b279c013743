package repository

import "errors"

// ErrNotFound is returned when an operation targets a thread with no
// matching ticket row.
var ErrNotFound = errors.New("ticket not found")
