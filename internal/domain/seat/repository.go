package seat

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the Inventory Store.
type Repository interface {
	// FindBySchedule returns every seat of a showing with current vacancy.
	FindBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*Seat, error)

	// FindByID returns one seat.
	FindByID(ctx context.Context, id uuid.UUID) (*Seat, error)

	// CheckVacant reports vacancy per requested seat id. Seats that do not
	// exist in the schedule are absent from the map. Inside a transaction
	// the rows stay locked until commit or rollback.
	CheckVacant(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID) (map[uuid.UUID]*Seat, error)

	// MarkSold flips exactly the given seats to sold. If any of them was
	// already sold it returns a *NotVacantError naming those seats.
	MarkSold(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID) error

	// Provision inserts seats, skipping positions that already exist.
	Provision(ctx context.Context, seats []*Seat) (int64, error)
}
