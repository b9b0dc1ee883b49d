package selection

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// SelectedSeat is a seat snapshot taken when the user picked it.
type SelectedSeat struct {
	SeatID     uuid.UUID `json:"seat_id"`
	SeatType   string    `json:"seat_type"`
	PricePaise int64     `json:"price"`
	Row        string    `json:"row"`
	Column     int       `json:"column"`
	Location   string    `json:"location"`
	AddedAt    time.Time `json:"added_at"`
}

// Selection is a user's tentative pick of seats for one showing. It
// reserves nothing; the committer re-checks every seat.
type Selection struct {
	ID          uuid.UUID                  `json:"id"`
	UserID      uuid.UUID                  `json:"user_id"`
	ScheduleID  uuid.UUID                  `json:"schedule_id"`
	Seats       map[uuid.UUID]SelectedSeat `json:"seats"`
	PromoCodeID *uuid.UUID                 `json:"promo_code_id,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// New starts an empty selection.
func New(userID, scheduleID uuid.UUID) *Selection {
	now := time.Now().UTC()
	return &Selection{
		ID:         uuid.New(),
		UserID:     userID,
		ScheduleID: scheduleID,
		Seats:      make(map[uuid.UUID]SelectedSeat),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AddSeat adds a seat. Re-adding a seat already present is a no-op and
// keeps the original snapshot.
func (s *Selection) AddSeat(seat SelectedSeat) bool {
	if s.Seats == nil {
		s.Seats = make(map[uuid.UUID]SelectedSeat)
	}
	if _, ok := s.Seats[seat.SeatID]; ok {
		return false
	}
	now := time.Now().UTC()
	if seat.AddedAt.IsZero() {
		seat.AddedAt = now
	}
	s.Seats[seat.SeatID] = seat
	s.UpdatedAt = now
	return true
}

// RemoveSeat removes a seat; removing an absent seat is a no-op.
func (s *Selection) RemoveSeat(seatID uuid.UUID) bool {
	if _, ok := s.Seats[seatID]; !ok {
		return false
	}
	delete(s.Seats, seatID)
	s.UpdatedAt = time.Now().UTC()
	return true
}

// Total sums the snapshotted prices.
func (s *Selection) Total() int64 {
	var total int64
	for _, seat := range s.Seats {
		total += seat.PricePaise
	}
	return total
}

// AttachPromo sets the promo code, replacing any earlier one.
func (s *Selection) AttachPromo(promoID uuid.UUID) {
	s.PromoCodeID = &promoID
	s.UpdatedAt = time.Now().UTC()
}

// DetachPromo clears the promo code.
func (s *Selection) DetachPromo() {
	s.PromoCodeID = nil
	s.UpdatedAt = time.Now().UTC()
}

// IsEmpty reports whether no seat is selected.
func (s *Selection) IsEmpty() bool { return len(s.Seats) == 0 }

// OwnedBy reports whether the selection belongs to userID.
func (s *Selection) OwnedBy(userID uuid.UUID) bool { return s.UserID == userID }

// Ordered returns the seats in pick order, ties broken by location.
func (s *Selection) Ordered() []SelectedSeat {
	out := make([]SelectedSeat, 0, len(s.Seats))
	for _, seat := range s.Seats {
		out = append(out, seat)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].Location < out[j].Location
	})
	return out
}
