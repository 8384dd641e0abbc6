package repository

import "errors"

var (
	// ErrNotFound means no record matched the key or correlation id
	ErrNotFound = errors.New("record not found")

	// ErrAmbiguousCorrelation means a correlation-index lookup matched more
	// than one record; the caller must not pick one silently
	ErrAmbiguousCorrelation = errors.New("correlation id matches multiple records")

	// ErrVersionConflict means a conditional write lost a read-modify-write
	// race; the caller should re-read and re-apply
	ErrVersionConflict = errors.New("record version conflict")
)
