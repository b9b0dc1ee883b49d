package booking

import (
	"errors"

	"github.com/catchify/service-booking/internal/platform/domain"
	"github.com/google/uuid"
)

// Commit failures. All are returned to the caller; none is retried here.
var (
	ErrEmptySelection           = domain.New(domain.ErrValidation, "EMPTY_SELECTION", "no seats selected")
	ErrUnsupportedPaymentMethod = domain.New(domain.ErrValidation, "UNSUPPORTED_PAYMENT_METHOD", "payment method is not supported")
	ErrInvalidPromoCode         = domain.New(domain.ErrUnprocessable, "INVALID_PROMO_CODE", "invalid or expired promo code")
	ErrSeatsNoLongerAvailable   = domain.New(domain.ErrConflict, "SEATS_NO_LONGER_AVAILABLE", "some selected seats are no longer available")
	ErrZeroTotalBooking         = domain.New(domain.ErrUnprocessable, "ZERO_TOTAL_BOOKING", "the discount covers the whole order; free bookings are not allowed")
	ErrStorageFailure           = domain.New(domain.ErrUnavailable, "STORAGE_FAILURE", "the booking could not be saved, please retry")
	ErrBookingNotFound          = domain.New(domain.ErrNotFound, "BOOKING_NOT_FOUND", "booking not found")
)

// UnavailableSeats is the detail payload of ErrSeatsNoLongerAvailable.
type UnavailableSeats struct {
	SeatIDs []uuid.UUID `json:"seat_ids"`
}

// SeatsNoLongerAvailable reports which seats were lost.
func SeatsNoLongerAvailable(seatIDs []uuid.UUID) error {
	return ErrSeatsNoLongerAvailable.WithDetails(UnavailableSeats{SeatIDs: seatIDs})
}

// StorageFailure wraps an infrastructure error. Retrying the whole commit
// is safe because nothing survives a rollback.
func StorageFailure(cause error) error {
	return ErrStorageFailure.WithCause(cause)
}

// LostSeats returns the seat ids carried by a SeatsNoLongerAvailable error.
func LostSeats(err error) []uuid.UUID {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return nil
	}
	if d, ok := de.Details.(UnavailableSeats); ok {
		return d.SeatIDs
	}
	return nil
}

// IsRetryable reports whether the identical request may be resent blindly.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}
