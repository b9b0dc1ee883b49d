package repository

import (
	"context"
	"errors"
	"time"

	promoDomain "github.com/catchify/service-booking/internal/domain/promo"
	"github.com/catchify/service-booking/internal/platform/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromoModel is the GORM model for the promo_codes table.
type PromoModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code       string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	ValuePaise int64      `gorm:"not null"`
	Active     bool       `gorm:"not null;default:true"`
	ExpiresAt  *time.Time `gorm:"type:timestamptz"`
	CreatedAt  time.Time  `gorm:"type:timestamptz;not null"`
	UpdatedAt  time.Time  `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (PromoModel) TableName() string { return "promo_codes" }

// GormPromoRepository implements PromoRepository using GORM.
type GormPromoRepository struct {
	db *gorm.DB
}

// NewGormPromoRepository creates a new GormPromoRepository.
func NewGormPromoRepository(db *gorm.DB) *GormPromoRepository {
	return &GormPromoRepository{db: db}
}

// Save persists a new promo code.
func (r *GormPromoRepository) Save(ctx context.Context, p *promoDomain.PromoCode) error {
	model := toPromoModel(p)
	return database.Conn(ctx, r.db).Create(&model).Error
}

// FindByCode returns a promo code by its code string.
func (r *GormPromoRepository) FindByCode(ctx context.Context, code string) (*promoDomain.PromoCode, error) {
	var model PromoModel
	if err := database.Conn(ctx, r.db).Where("code = ?", promoDomain.NormalizeCode(code)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, promoDomain.ErrNotFound
		}
		return nil, err
	}
	return toPromoDomain(&model), nil
}

// FindByID returns a promo code by ID.
func (r *GormPromoRepository) FindByID(ctx context.Context, id uuid.UUID) (*promoDomain.PromoCode, error) {
	var model PromoModel
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, promoDomain.ErrNotFound
		}
		return nil, err
	}
	return toPromoDomain(&model), nil
}

func toPromoModel(p *promoDomain.PromoCode) PromoModel {
	return PromoModel{
		ID:         p.ID(),
		Code:       p.Code(),
		ValuePaise: p.ValuePaise(),
		Active:     p.Active(),
		ExpiresAt:  p.ExpiresAt(),
		CreatedAt:  p.CreatedAt(),
		UpdatedAt:  p.UpdatedAt(),
	}
}

func toPromoDomain(m *PromoModel) *promoDomain.PromoCode {
	return promoDomain.Reconstruct(
		m.ID, m.Code, m.ValuePaise, m.Active,
		m.ExpiresAt, m.CreatedAt, m.UpdatedAt,
	)
}
