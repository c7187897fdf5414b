package domain

import "errors"

var (
	// ErrNotFound means the backend has no record for the requested slug or id.
	ErrNotFound = errors.New("not found")

	// ErrUnreachable means the backend could not be contacted at all.
	ErrUnreachable = errors.New("backend unreachable")

	// ErrSlotTaken means the backend rejected a booking because the slot is
	// already reserved.
	ErrSlotTaken = errors.New("time slot already booked")
)
