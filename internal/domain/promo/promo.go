package promo

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PromoCode is a fixed-value discount code.
type PromoCode struct {
	id         uuid.UUID
	code       string
	valuePaise int64
	active     bool
	expiresAt  *time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

// NormalizeCode canonicalises user-entered codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewPromoCode creates an active promo code.
func NewPromoCode(code string, valuePaise int64, expiresAt *time.Time) (*PromoCode, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, fmt.Errorf("promo code is required")
	}
	if len(code) > 50 {
		return nil, fmt.Errorf("promo code cannot exceed 50 characters")
	}
	if valuePaise <= 0 {
		return nil, fmt.Errorf("discount value must be positive")
	}

	now := time.Now().UTC()
	if expiresAt != nil && !expiresAt.After(now) {
		return nil, fmt.Errorf("expiry must be in the future")
	}
	return &PromoCode{
		id:         uuid.New(),
		code:       code,
		valuePaise: valuePaise,
		active:     true,
		expiresAt:  expiresAt,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a PromoCode from persistence.
func Reconstruct(id uuid.UUID, code string, valuePaise int64, active bool, expiresAt *time.Time, createdAt, updatedAt time.Time) *PromoCode {
	return &PromoCode{
		id: id, code: code, valuePaise: valuePaise, active: active,
		expiresAt: expiresAt, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// IsActive reports whether the code may be applied at the given instant.
func (p *PromoCode) IsActive(at time.Time) bool {
	if !p.active {
		return false
	}
	return p.expiresAt == nil || at.Before(*p.expiresAt)
}

// Discount returns the amount this code takes off a gross total. It never
// exceeds the total, so the net total is never negative.
func (p *PromoCode) Discount(grossPaise int64) int64 {
	if grossPaise <= 0 {
		return 0
	}
	return min(p.valuePaise, grossPaise)
}

// Deactivate switches the code off.
func (p *PromoCode) Deactivate() {
	p.active = false
	p.updatedAt = time.Now().UTC()
}

// Getters.
func (p *PromoCode) ID() uuid.UUID         { return p.id }
func (p *PromoCode) Code() string          { return p.code }
func (p *PromoCode) ValuePaise() int64     { return p.valuePaise }
func (p *PromoCode) Active() bool          { return p.active }
func (p *PromoCode) ExpiresAt() *time.Time { return p.expiresAt }
func (p *PromoCode) CreatedAt() time.Time  { return p.createdAt }
func (p *PromoCode) UpdatedAt() time.Time  { return p.updatedAt }
