package appointment

import "errors"

var (
	// ErrNotFound is returned when no appointment matches the given id, or
	// when the appointment is not visible to the caller (reads and cancels
	// deliberately do not distinguish).
	ErrNotFound = errors.New("appointment not found")

	// ErrNotAuthorized is returned when the caller may not act on the
	// target patient's appointments.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrSlotUnavailable is returned when the requested time is not covered
	// by any available schedule slot for the provider on that date.
	ErrSlotUnavailable = errors.New("no available schedule slot covers the requested time")

	// ErrSlotFull is returned when the covering slot has already reached its
	// booking capacity.
	ErrSlotFull = errors.New("schedule slot is fully booked")
)
