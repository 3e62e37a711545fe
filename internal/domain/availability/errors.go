package availability

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidTimeFormat indicates a time string that could not be
	// decomposed into an hour and minute in range.
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrScheduleConflict indicates the candidate interval overlaps an
	// existing slot for the same provider and resolved date.
	ErrScheduleConflict = errors.New("schedule conflict")

	// ErrNotAuthorized indicates the caller does not own the target slot.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound indicates the target slot does not exist, or does not
	// belong to the caller (delete deliberately does not distinguish).
	ErrNotFound = errors.New("schedule slot not found")
)

// ConflictError carries the identity of the stored slot that blocked a
// create or update. It matches ErrScheduleConflict under errors.Is.
type ConflictError struct {
	SlotID      uuid.UUID
	StartMinute int
	EndMinute   int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule conflict with slot %s (%s-%s)",
		e.SlotID, FormatClockTime(e.StartMinute), FormatClockTime(e.EndMinute))
}

func (e *ConflictError) Is(target error) bool { return target == ErrScheduleConflict }
