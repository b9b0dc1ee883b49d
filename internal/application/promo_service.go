package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/catchify/service-booking/internal/domain/booking"
	promoDomain "github.com/catchify/service-booking/internal/domain/promo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ValidatePromoRequest holds data to preview a promo code.
type ValidatePromoRequest struct {
	Code        string `json:"code" binding:"required"`
	AmountPaise int64  `json:"amount" binding:"required,gt=0"`
}

// PromoDTO is the API response representation of a promo code.
type PromoDTO struct {
	ID         uuid.UUID  `json:"id"`
	Code       string     `json:"code"`
	ValuePaise int64      `json:"value"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// PromoValidationDTO is the result of previewing a promo code.
type PromoValidationDTO struct {
	Valid         bool      `json:"valid"`
	Promo         *PromoDTO `json:"promo,omitempty"`
	Code          string    `json:"code"`
	DiscountPaise int64     `json:"discount"`
	NetPaise      int64     `json:"net_total"`
	Message       string    `json:"message,omitempty"`
}

// PromoService is the Promo Ledger's read side.
type PromoService struct {
	repo   promoDomain.PromoRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewPromoService creates a new PromoService.
func NewPromoService(repo promoDomain.PromoRepository, logger *zap.Logger) *PromoService {
	return &PromoService{repo: repo, logger: logger, now: time.Now}
}

// FindActiveByCode resolves a user-entered code. Unknown and inactive
// codes are both reported as ErrInvalidPromoCode.
func (s *PromoService) FindActiveByCode(ctx context.Context, code string) (*promoDomain.PromoCode, error) {
	p, err := s.repo.FindByCode(ctx, code)
	return s.active(p, err)
}

// FindByID resolves a promo attached to a selection or commit request.
func (s *PromoService) FindByID(ctx context.Context, id uuid.UUID) (*promoDomain.PromoCode, error) {
	p, err := s.repo.FindByID(ctx, id)
	return s.active(p, err)
}

func (s *PromoService) active(p *promoDomain.PromoCode, err error) (*promoDomain.PromoCode, error) {
	if err != nil {
		if errors.Is(err, promoDomain.ErrNotFound) {
			return nil, booking.ErrInvalidPromoCode
		}
		return nil, fmt.Errorf("load promo: %w", err)
	}
	if !p.IsActive(s.now()) {
		return nil, booking.ErrInvalidPromoCode
	}
	return p, nil
}

// ValidatePromo previews the discount a code would give on an amount.
// An unusable code is a normal negative answer, not an error.
func (s *PromoService) ValidatePromo(ctx context.Context, req ValidatePromoRequest) (*PromoValidationDTO, error) {
	p, err := s.FindActiveByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, booking.ErrInvalidPromoCode) {
			return &PromoValidationDTO{
				Valid:    false,
				Code:     promoDomain.NormalizeCode(req.Code),
				NetPaise: req.AmountPaise,
				Message:  booking.ErrInvalidPromoCode.Message,
			}, nil
		}
		return nil, err
	}

	discount := p.Discount(req.AmountPaise)
	return &PromoValidationDTO{
		Valid:         true,
		Promo:         toPromoDTO(p),
		Code:          p.Code(),
		DiscountPaise: discount,
		NetPaise:      req.AmountPaise - discount,
	}, nil
}

func toPromoDTO(p *promoDomain.PromoCode) *PromoDTO {
	return &PromoDTO{
		ID:         p.ID(),
		Code:       p.Code(),
		ValuePaise: p.ValuePaise(),
		ExpiresAt:  p.ExpiresAt(),
	}
}
