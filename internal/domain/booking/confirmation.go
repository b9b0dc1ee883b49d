package booking

import (
	"time"

	"github.com/google/uuid"
)

// Showing is the event, venue and schedule metadata of a booking.
type Showing struct {
	ScheduleID      uuid.UUID `json:"schedule_id"`
	EventID         uuid.UUID `json:"event_id"`
	EventName       string    `json:"event_name"`
	Genre           string    `json:"genre"`
	Language        string    `json:"language"`
	DurationMinutes int       `json:"duration_minutes"`
	VenueName       string    `json:"venue_name"`
	StartsAt        time.Time `json:"starts_at"`
}

// ConfirmedSeat is one line of a confirmation.
type ConfirmedSeat struct {
	SeatID     uuid.UUID `json:"seat_id"`
	SeatType   string    `json:"seat_type"`
	Location   string    `json:"location"`
	GrossPaise int64     `json:"gross_price"`
	NetPaise   int64     `json:"net_price"`
}

// Confirmation is the read view handed to the notification dispatcher and
// returned to the purchaser. It is derived from the booking rows and never
// stored on its own.
type Confirmation struct {
	Reference     string          `json:"booking_ref"`
	UserID        uuid.UUID       `json:"user_id"`
	Email         string          `json:"email,omitempty"`
	Showing       *Showing        `json:"showing,omitempty"`
	Seats         []ConfirmedSeat `json:"seats"`
	GrossTotal    int64           `json:"gross_total"`
	Discount      int64           `json:"discount"`
	NetTotal      int64           `json:"net_total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PromoCode     string          `json:"promo_code,omitempty"`
	BookedAt      time.Time       `json:"booked_at"`
}

// NewConfirmation builds the view. showing may be nil when the metadata
// lookup failed; the booking itself is unaffected.
func NewConfirmation(b *Booking, email string, showing *Showing) Confirmation {
	seats := make([]ConfirmedSeat, len(b.lines))
	for i, l := range b.lines {
		seats[i] = ConfirmedSeat{
			SeatID:     l.SeatID,
			SeatType:   l.SeatType,
			Location:   l.Location,
			GrossPaise: l.GrossPaise,
			NetPaise:   l.NetPaise,
		}
	}
	return Confirmation{
		Reference:     b.reference,
		UserID:        b.userID,
		Email:         email,
		Showing:       showing,
		Seats:         seats,
		GrossTotal:    b.grossTotal,
		Discount:      b.discount,
		NetTotal:      b.netTotal,
		PaymentMethod: b.paymentMethod,
		PromoCode:     b.promoCode,
		BookedAt:      b.createdAt,
	}
}
