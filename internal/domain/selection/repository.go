package selection

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or abandoned selections.
var ErrNotFound = errors.New("selection not found")

// Store keeps selections between requests.
type Store interface {
	Save(ctx context.Context, s *Selection) error
	Get(ctx context.Context, id uuid.UUID) (*Selection, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
