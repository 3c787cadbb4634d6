package domain

import "errors"

var (
	// ErrNotFound is returned when a user, transaction, setting or report does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating a record that must be unique.
	ErrAlreadyExists = errors.New("already exists")

	ErrInvalidInterval    = errors.New("invalid recurring interval")
	ErrInvalidFrequency   = errors.New("invalid report frequency")
	ErrInvalidPeriod      = errors.New("invalid report period")
	ErrInvalidTransaction = errors.New("invalid transaction")
)
