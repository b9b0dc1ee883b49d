package seat

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Seat is one sellable ticket of a scheduled showing. The vacancy flag is
// the only source of truth for availability.
type Seat struct {
	id         uuid.UUID
	scheduleID uuid.UUID
	eventID    uuid.UUID
	seatType   string
	pricePaise int64
	row        string
	column     int
	location   string
	vacant     bool
	createdAt  time.Time
	updatedAt  time.Time
}

// NewSeat creates a vacant seat for a showing.
func NewSeat(scheduleID, eventID uuid.UUID, seatType string, pricePaise int64, row string, column int, location string) (*Seat, error) {
	seatType = strings.TrimSpace(seatType)
	row = strings.ToUpper(strings.TrimSpace(row))
	if scheduleID == uuid.Nil || eventID == uuid.Nil {
		return nil, fmt.Errorf("schedule and event are required")
	}
	if seatType == "" {
		return nil, fmt.Errorf("seat type is required")
	}
	if pricePaise <= 0 {
		return nil, fmt.Errorf("seat price must be positive")
	}
	if row == "" || column <= 0 {
		return nil, fmt.Errorf("seat position %q/%d is invalid", row, column)
	}
	if location == "" {
		location = fmt.Sprintf("%s%d", row, column)
	}

	now := time.Now().UTC()
	return &Seat{
		id:         uuid.New(),
		scheduleID: scheduleID,
		eventID:    eventID,
		seatType:   seatType,
		pricePaise: pricePaise,
		row:        row,
		column:     column,
		location:   location,
		vacant:     true,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a Seat from persistence.
func Reconstruct(id, scheduleID, eventID uuid.UUID, seatType string, pricePaise int64, row string, column int, location string, vacant bool, createdAt, updatedAt time.Time) *Seat {
	return &Seat{
		id: id, scheduleID: scheduleID, eventID: eventID,
		seatType: seatType, pricePaise: pricePaise,
		row: row, column: column, location: location,
		vacant: vacant, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Position returns the seat's grid key.
func (s *Seat) Position() Position { return Position{Row: s.row, Column: s.column} }

// Getters.
func (s *Seat) ID() uuid.UUID         { return s.id }
func (s *Seat) ScheduleID() uuid.UUID { return s.scheduleID }
func (s *Seat) EventID() uuid.UUID    { return s.eventID }
func (s *Seat) SeatType() string      { return s.seatType }
func (s *Seat) PricePaise() int64     { return s.pricePaise }
func (s *Seat) Row() string           { return s.row }
func (s *Seat) Column() int           { return s.column }
func (s *Seat) Location() string      { return s.location }
func (s *Seat) IsVacant() bool        { return s.vacant }
func (s *Seat) CreatedAt() time.Time  { return s.createdAt }
func (s *Seat) UpdatedAt() time.Time  { return s.updatedAt }
