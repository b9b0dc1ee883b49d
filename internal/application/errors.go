package application

import "github.com/catchify/service-booking/internal/platform/domain"

var (
	ErrSelectionNotFound = domain.New(domain.ErrNotFound, "SELECTION_NOT_FOUND", "selection not found")
	ErrSeatNotFound      = domain.New(domain.ErrNotFound, "SEAT_NOT_FOUND", "seat not found")
	ErrSeatNotInSchedule = domain.New(domain.ErrValidation, "SEAT_NOT_IN_SCHEDULE", "seat belongs to a different showing")
)
