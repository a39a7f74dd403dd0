package errors

import "errors"

var (
	ErrNotFound = errors.New("hotel not found")

	ErrInvalidID = errors.New("invalid hotel ID format")

	ErrOwnerTaken = errors.New("owner already has a hotel")
)
