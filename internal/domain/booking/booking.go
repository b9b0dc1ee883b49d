package booking

import (
	"fmt"
	"time"

	"github.com/catchify/service-booking/internal/domain/promo"
	"github.com/google/uuid"
)

// Purchaser is the verified identity supplied by the auth layer.
type Purchaser struct {
	UserID uuid.UUID
	Email  string
}

// SeatRequest is one seat of a commit request with the price and type the
// client saw when it was picked.
type SeatRequest struct {
	SeatID             uuid.UUID
	SnapshotPricePaise int64
	SeatType           string
}

// CommitRequest is everything the committer needs. It carries no session
// state; the same request always revalidates against the database.
type CommitRequest struct {
	Purchaser     Purchaser
	ScheduleID    uuid.UUID
	Seats         []SeatRequest
	PromoCodeID   *uuid.UUID
	PaymentMethod string
}

// SeatIDs returns the requested seat ids with duplicates collapsed,
// keeping first-seen order.
func (r CommitRequest) SeatIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(r.Seats))
	ids := make([]uuid.UUID, 0, len(r.Seats))
	for _, s := range r.Seats {
		if _, ok := seen[s.SeatID]; ok {
			continue
		}
		seen[s.SeatID] = struct{}{}
		ids = append(ids, s.SeatID)
	}
	return ids
}

// Charge is the authoritative price of one seat, read under lock.
type Charge struct {
	SeatID     uuid.UUID
	SeatType   string
	Row        string
	Column     int
	Location   string
	GrossPaise int64
}

// Line is one booking row: one purchased seat.
type Line struct {
	ID         uuid.UUID
	SeatID     uuid.UUID
	SeatType   string
	Row        string
	Column     int
	Location   string
	GrossPaise int64
	NetPaise   int64
}

// Booking groups the rows written under one reference.
type Booking struct {
	reference     string
	userID        uuid.UUID
	scheduleID    uuid.UUID
	paymentMethod PaymentMethod
	promoCodeID   *uuid.UUID
	promoCode     string
	lines         []Line
	grossTotal    int64
	discount      int64
	netTotal      int64
	createdAt     time.Time
}

// NewBooking prices the charges and builds the booking. The promo, when
// given, must already be known to be active. A booking whose net total is
// zero is refused with ErrZeroTotalBooking.
func NewBooking(reference string, userID, scheduleID uuid.UUID, method PaymentMethod, charges []Charge, p *promo.PromoCode) (*Booking, error) {
	if len(charges) == 0 {
		return nil, ErrEmptySelection
	}
	if reference == "" {
		return nil, fmt.Errorf("booking reference is required")
	}

	gross := make([]int64, len(charges))
	var grossTotal int64
	for i, c := range charges {
		gross[i] = c.GrossPaise
		grossTotal += c.GrossPaise
	}

	var discount int64
	b := &Booking{
		reference:     reference,
		userID:        userID,
		scheduleID:    scheduleID,
		paymentMethod: method,
		createdAt:     time.Now().UTC(),
	}
	if p != nil {
		discount = p.Discount(grossTotal)
		id := p.ID()
		b.promoCodeID = &id
		b.promoCode = p.Code()
	}
	if grossTotal-discount <= 0 {
		return nil, ErrZeroTotalBooking
	}

	shares, err := AllocateDiscount(gross, discount)
	if err != nil {
		return nil, fmt.Errorf("allocate discount: %w", err)
	}

	b.lines = make([]Line, len(charges))
	for i, c := range charges {
		b.lines[i] = Line{
			ID:         uuid.New(),
			SeatID:     c.SeatID,
			SeatType:   c.SeatType,
			Row:        c.Row,
			Column:     c.Column,
			Location:   c.Location,
			GrossPaise: c.GrossPaise,
			NetPaise:   c.GrossPaise - shares[i],
		}
	}
	b.grossTotal = grossTotal
	b.discount = discount
	b.netTotal = grossTotal - discount
	return b, nil
}

// Reconstruct rebuilds a Booking from persistence.
func Reconstruct(reference string, userID, scheduleID uuid.UUID, method PaymentMethod, promoCodeID *uuid.UUID, promoCode string, lines []Line, grossTotal, discount, netTotal int64, createdAt time.Time) *Booking {
	return &Booking{
		reference: reference, userID: userID, scheduleID: scheduleID,
		paymentMethod: method, promoCodeID: promoCodeID, promoCode: promoCode,
		lines: lines, grossTotal: grossTotal, discount: discount, netTotal: netTotal,
		createdAt: createdAt,
	}
}

// SeatIDs returns the purchased seat ids in line order.
func (b *Booking) SeatIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(b.lines))
	for i, l := range b.lines {
		ids[i] = l.SeatID
	}
	return ids
}

// Getters.
func (b *Booking) Reference() string            { return b.reference }
func (b *Booking) UserID() uuid.UUID            { return b.userID }
func (b *Booking) ScheduleID() uuid.UUID        { return b.scheduleID }
func (b *Booking) PaymentMethod() PaymentMethod { return b.paymentMethod }
func (b *Booking) PromoCodeID() *uuid.UUID      { return b.promoCodeID }
func (b *Booking) PromoCode() string            { return b.promoCode }
func (b *Booking) Lines() []Line                { return b.lines }
func (b *Booking) GrossTotal() int64            { return b.grossTotal }
func (b *Booking) Discount() int64              { return b.discount }
func (b *Booking) NetTotal() int64              { return b.netTotal }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
