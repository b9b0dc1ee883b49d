package repository

import (
	"context"
	"errors"
	"time"

	"github.com/catchify/service-booking/internal/domain/booking"
	"github.com/catchify/service-booking/internal/platform/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingReferenceModel is the booking header. The reference is the primary
// key, which is what makes references unique.
type BookingReferenceModel struct {
	Reference     string     `gorm:"type:varchar(32);primaryKey"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	ScheduleID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	PaymentMethod string     `gorm:"type:varchar(20);not null"`
	PromoCodeID   *uuid.UUID `gorm:"type:uuid"`
	PromoCode     string     `gorm:"type:varchar(50)"`
	GrossTotal    int64      `gorm:"not null"`
	Discount      int64      `gorm:"not null;default:0"`
	NetTotal      int64      `gorm:"not null"`
	CreatedAt     time.Time  `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (BookingReferenceModel) TableName() string { return "booking_references" }

// BookingModel is one booking row per purchased seat. seat_id is unique so
// a seat can never be booked twice even if vacancy handling were bypassed.
type BookingModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Reference     string     `gorm:"type:varchar(32);not null;index"`
	SeatID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	ScheduleID    uuid.UUID  `gorm:"type:uuid;not null"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null"`
	SeatType      string     `gorm:"type:varchar(50);not null"`
	RowLabel      string     `gorm:"type:varchar(10);not null;default:''"`
	Column        int        `gorm:"column:seat_column;not null;default:0"`
	Location      string     `gorm:"type:varchar(20);not null"`
	GrossPrice    int64      `gorm:"not null"`
	NetPrice      int64      `gorm:"not null"`
	PaymentMethod string     `gorm:"type:varchar(20);not null"`
	PromoCodeID   *uuid.UUID `gorm:"type:uuid"`
	LineNo        int        `gorm:"not null"`
	CreatedAt     time.Time  `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (BookingModel) TableName() string { return "bookings" }

// GormBookingRepository implements booking.Repository using GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Save writes the header and every row. It must run inside the commit
// transaction; on its own it would not be atomic.
func (r *GormBookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	conn := database.Conn(ctx, r.db)

	header := BookingReferenceModel{
		Reference:     b.Reference(),
		UserID:        b.UserID(),
		ScheduleID:    b.ScheduleID(),
		PaymentMethod: string(b.PaymentMethod()),
		PromoCodeID:   b.PromoCodeID(),
		PromoCode:     b.PromoCode(),
		GrossTotal:    b.GrossTotal(),
		Discount:      b.Discount(),
		NetTotal:      b.NetTotal(),
		CreatedAt:     b.CreatedAt(),
	}
	if err := conn.Create(&header).Error; err != nil {
		return err
	}

	rows := toBookingModels(b)
	return conn.Create(&rows).Error
}

// FindByReference returns a booking with its rows in line order.
func (r *GormBookingRepository) FindByReference(ctx context.Context, reference string) (*booking.Booking, error) {
	conn := database.Conn(ctx, r.db)

	var header BookingReferenceModel
	if err := conn.Where("reference = ?", reference).First(&header).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}

	var rows []BookingModel
	if err := conn.Where("reference = ?", reference).Order("line_no").Find(&rows).Error; err != nil {
		return nil, err
	}

	lines := make([]booking.Line, len(rows))
	for i := range rows {
		lines[i] = toBookingLine(&rows[i])
	}

	return booking.Reconstruct(
		header.Reference, header.UserID, header.ScheduleID,
		booking.PaymentMethod(header.PaymentMethod),
		header.PromoCodeID, header.PromoCode, lines,
		header.GrossTotal, header.Discount, header.NetTotal,
		header.CreatedAt,
	), nil
}

// CountByReference returns the number of booking rows under a reference.
func (r *GormBookingRepository) CountByReference(ctx context.Context, reference string) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&BookingModel{}).Where("reference = ?", reference).Count(&n).Error
	return n, err
}

func toBookingModels(b *booking.Booking) []BookingModel {
	rows := make([]BookingModel, len(b.Lines()))
	for i, l := range b.Lines() {
		rows[i] = BookingModel{
			ID:            l.ID,
			Reference:     b.Reference(),
			SeatID:        l.SeatID,
			ScheduleID:    b.ScheduleID(),
			UserID:        b.UserID(),
			SeatType:      l.SeatType,
			RowLabel:      l.Row,
			Column:        l.Column,
			Location:      l.Location,
			GrossPrice:    l.GrossPaise,
			NetPrice:      l.NetPaise,
			PaymentMethod: string(b.PaymentMethod()),
			PromoCodeID:   b.PromoCodeID(),
			LineNo:        i,
			CreatedAt:     b.CreatedAt(),
		}
	}
	return rows
}

func toBookingLine(m *BookingModel) booking.Line {
	return booking.Line{
		ID:         m.ID,
		SeatID:     m.SeatID,
		SeatType:   m.SeatType,
		Row:        m.RowLabel,
		Column:     m.Column,
		Location:   m.Location,
		GrossPaise: m.GrossPrice,
		NetPaise:   m.NetPrice,
	}
}
