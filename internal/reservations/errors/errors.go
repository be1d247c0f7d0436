package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation request not found")

	ErrInvalidID = errors.New("invalid reservation request ID format")

	ErrSlotConflict = errors.New("requested slot conflicts with an existing reservation")

	ErrSlotLocked = errors.New("requested slot is being claimed by another submission")
)
