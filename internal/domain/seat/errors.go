package seat

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNotVacant is returned by MarkSold when a seat was sold concurrently.
var ErrNotVacant = errors.New("seat is no longer vacant")

// NotVacantError names the seats MarkSold could not flip. It matches
// ErrNotVacant.
type NotVacantError struct {
	SeatIDs []uuid.UUID
}

func (e *NotVacantError) Error() string { return ErrNotVacant.Error() }

func (e *NotVacantError) Unwrap() error { return ErrNotVacant }
