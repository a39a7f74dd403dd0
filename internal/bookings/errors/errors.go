package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrLockHeld means another request holds the room's booking lock.
	ErrLockHeld = errors.New("booking lock is held")

	// ErrNotPending is returned when a conditional status update found the
	// booking in a state other than pending.
	ErrNotPending = errors.New("booking is not pending")

	ErrRoomNotFound = errors.New("room not found")

	ErrHotelNotFound = errors.New("hotel not found")
)
