package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("booking not found")

// Repository persists bookings. Save must run inside the commit transaction.
type Repository interface {
	Save(ctx context.Context, b *Booking) error
	FindByReference(ctx context.Context, reference string) (*Booking, error)
}

// ShowingCatalog reads schedule, event and venue metadata.
type ShowingCatalog interface {
	FindShowing(ctx context.Context, scheduleID uuid.UUID) (*Showing, error)
}

// Dispatcher delivers confirmations. It is best-effort: an error never
// affects a booking that has already committed.
type Dispatcher interface {
	Send(ctx context.Context, c Confirmation) error
}
