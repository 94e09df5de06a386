package repository

import "errors"

// ErrNotFound is returned by targeted updates when the record to update does not exist.
var ErrNotFound = errors.New("record not found")
