package repository

import (
	"context"
	"errors"
	"time"

	"github.com/catchify/service-booking/internal/domain/booking"
	"github.com/catchify/service-booking/internal/platform/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShowingModel is a local projection of schedule, event and venue data
// owned by the catalogue service. It is filled from schedule events.
type ShowingModel struct {
	ScheduleID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID         uuid.UUID `gorm:"type:uuid;not null;index"`
	EventName       string    `gorm:"type:varchar(255);not null"`
	Genre           string    `gorm:"type:varchar(50)"`
	Language        string    `gorm:"type:varchar(50)"`
	DurationMinutes int       `gorm:"not null;default:0"`
	VenueName       string    `gorm:"type:varchar(255);not null"`
	StartsAt        time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt       time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (ShowingModel) TableName() string { return "showings" }

// GormShowingRepository implements booking.ShowingCatalog.
type GormShowingRepository struct {
	db *gorm.DB
}

// NewGormShowingRepository creates a new GormShowingRepository.
func NewGormShowingRepository(db *gorm.DB) *GormShowingRepository {
	return &GormShowingRepository{db: db}
}

// FindShowing returns showing metadata for a schedule.
func (r *GormShowingRepository) FindShowing(ctx context.Context, scheduleID uuid.UUID) (*booking.Showing, error) {
	var m ShowingModel
	if err := database.Conn(ctx, r.db).Where("schedule_id = ?", scheduleID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}
	return &booking.Showing{
		ScheduleID:      m.ScheduleID,
		EventID:         m.EventID,
		EventName:       m.EventName,
		Genre:           m.Genre,
		Language:        m.Language,
		DurationMinutes: m.DurationMinutes,
		VenueName:       m.VenueName,
		StartsAt:        m.StartsAt,
	}, nil
}

// Upsert stores or refreshes showing metadata.
func (r *GormShowingRepository) Upsert(ctx context.Context, s booking.Showing) error {
	m := ShowingModel{
		ScheduleID:      s.ScheduleID,
		EventID:         s.EventID,
		EventName:       s.EventName,
		Genre:           s.Genre,
		Language:        s.Language,
		DurationMinutes: s.DurationMinutes,
		VenueName:       s.VenueName,
		StartsAt:        s.StartsAt,
		UpdatedAt:       time.Now().UTC(),
	}
	return database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "schedule_id"}},
			UpdateAll: true,
		}).
		Create(&m).Error
}
