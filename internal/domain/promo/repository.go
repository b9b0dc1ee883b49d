package promo

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no promo code matches.
var ErrNotFound = errors.New("promo code not found")

// PromoRepository is the Promo Ledger's persistence contract.
type PromoRepository interface {
	Save(ctx context.Context, p *PromoCode) error
	FindByCode(ctx context.Context, code string) (*PromoCode, error)
	FindByID(ctx context.Context, id uuid.UUID) (*PromoCode, error)
}
