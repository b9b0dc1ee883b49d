package repository

import (
	"context"
	"errors"
	"time"

	"github.com/catchify/service-booking/internal/domain/seat"
	"github.com/catchify/service-booking/internal/platform/database"
	"github.com/catchify/service-booking/internal/platform/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeatModel is the GORM model for the seats table.
type SeatModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ScheduleID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_seats_position,priority:1"`
	EventID    uuid.UUID `gorm:"type:uuid;not null;index"`
	SeatType   string    `gorm:"type:varchar(50);not null"`
	PricePaise int64     `gorm:"not null"`
	RowLabel   string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_seats_position,priority:2"`
	Column     int       `gorm:"column:seat_column;not null;uniqueIndex:idx_seats_position,priority:3"`
	Location   string    `gorm:"type:varchar(20);not null"`
	Vacant     bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt  time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (SeatModel) TableName() string { return "seats" }

// GormSeatRepository implements seat.Repository using GORM.
type GormSeatRepository struct {
	db *gorm.DB
}

// NewGormSeatRepository creates a new GormSeatRepository.
func NewGormSeatRepository(db *gorm.DB) *GormSeatRepository {
	return &GormSeatRepository{db: db}
}

// FindBySchedule returns every seat of a schedule ordered by row then column.
func (r *GormSeatRepository) FindBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*seat.Seat, error) {
	var models []SeatModel
	if err := database.Conn(ctx, r.db).
		Where("schedule_id = ?", scheduleID).
		Order("length(row_label), row_label, seat_column").
		Find(&models).Error; err != nil {
		return nil, err
	}

	seats := make([]*seat.Seat, len(models))
	for i := range models {
		seats[i] = toSeatDomain(&models[i])
	}
	return seats, nil
}

// FindByID returns a seat by ID.
func (r *GormSeatRepository) FindByID(ctx context.Context, id uuid.UUID) (*seat.Seat, error) {
	var model SeatModel
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Seat", id.String())
		}
		return nil, err
	}
	return toSeatDomain(&model), nil
}

// CheckVacant reads the requested seats. Inside a transaction the rows are
// locked FOR UPDATE in id order so concurrent commits queue on them
// without deadlocking.
func (r *GormSeatRepository) CheckVacant(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID) (map[uuid.UUID]*seat.Seat, error) {
	out := make(map[uuid.UUID]*seat.Seat, len(seatIDs))
	if len(seatIDs) == 0 {
		return out, nil
	}

	q := database.Conn(ctx, r.db).
		Where("schedule_id = ? AND id IN ?", scheduleID, seatIDs).
		Order("id")
	if database.InTx(ctx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var models []SeatModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	for i := range models {
		out[models[i].ID] = toSeatDomain(&models[i])
	}
	return out, nil
}

// MarkSold flips the seats with one conditional update. Seats that were not
// vacant are missing from the returned ids and come back in a
// *seat.NotVacantError; the caller must roll back.
func (r *GormSeatRepository) MarkSold(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID) error {
	if len(seatIDs) == 0 {
		return nil
	}
	var flipped []SeatModel
	res := database.Conn(ctx, r.db).
		Model(&flipped).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("schedule_id = ? AND id IN ? AND vacant = ?", scheduleID, seatIDs, true).
		Updates(map[string]any{"vacant": false, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if len(flipped) == len(seatIDs) {
		return nil
	}

	sold := make(map[uuid.UUID]bool, len(flipped))
	for _, m := range flipped {
		sold[m.ID] = true
	}
	var taken []uuid.UUID
	for _, id := range seatIDs {
		if !sold[id] {
			taken = append(taken, id)
		}
	}
	return &seat.NotVacantError{SeatIDs: taken}
}

// Provision inserts seats, skipping any (schedule, row, column) that exists.
func (r *GormSeatRepository) Provision(ctx context.Context, seats []*seat.Seat) (int64, error) {
	if len(seats) == 0 {
		return 0, nil
	}
	models := make([]SeatModel, len(seats))
	for i, s := range seats {
		models[i] = toSeatModel(s)
	}
	res := database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&models, 200)
	return res.RowsAffected, res.Error
}

func toSeatModel(s *seat.Seat) SeatModel {
	return SeatModel{
		ID:         s.ID(),
		ScheduleID: s.ScheduleID(),
		EventID:    s.EventID(),
		SeatType:   s.SeatType(),
		PricePaise: s.PricePaise(),
		RowLabel:   s.Row(),
		Column:     s.Column(),
		Location:   s.Location(),
		Vacant:     s.IsVacant(),
		CreatedAt:  s.CreatedAt(),
		UpdatedAt:  s.UpdatedAt(),
	}
}

func toSeatDomain(m *SeatModel) *seat.Seat {
	return seat.Reconstruct(
		m.ID, m.ScheduleID, m.EventID,
		m.SeatType, m.PricePaise,
		m.RowLabel, m.Column, m.Location,
		m.Vacant, m.CreatedAt, m.UpdatedAt,
	)
}
