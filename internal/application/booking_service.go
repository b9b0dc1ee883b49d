package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/catchify/service-booking/internal/domain/booking"
	"github.com/catchify/service-booking/internal/domain/promo"
	"github.com/catchify/service-booking/internal/domain/seat"
	"github.com/catchify/service-booking/internal/platform/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TxManager runs fn inside one database transaction, committing when fn
// returns nil and rolling back otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Soft warnings attached to a successful commit.
const (
	WarningNotificationFailed = "confirmation could not be delivered; the booking is confirmed"
	WarningShowingUnavailable = "showing details are temporarily unavailable"
)

// CommitResult is a committed booking plus any post-commit warnings.
type CommitResult struct {
	Confirmation booking.Confirmation
	Warnings     []string
}

// BookingService is the Booking Committer.
type BookingService struct {
	tx              TxManager
	seats           seat.Repository
	promos          *PromoService
	bookings        booking.Repository
	showings        booking.ShowingCatalog
	dispatcher      booking.Dispatcher
	dispatchTimeout time.Duration
	logger          *zap.Logger
	now             func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	tx TxManager,
	seats seat.Repository,
	promos *PromoService,
	bookings booking.Repository,
	showings booking.ShowingCatalog,
	dispatcher booking.Dispatcher,
	dispatchTimeout time.Duration,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:              tx,
		seats:           seats,
		promos:          promos,
		bookings:        bookings,
		showings:        showings,
		dispatcher:      dispatcher,
		dispatchTimeout: dispatchTimeout,
		logger:          logger,
		now:             time.Now,
	}
}

// Commit validates and books the requested seats in one transaction.
//
// Cheap checks (empty selection, payment method) run before the
// transaction opens. Inside it every seat is re-read under a row lock,
// the promo is resolved, prices are computed, the rows are written and
// the seats flipped to sold. Any failure rolls everything back. The
// confirmation is dispatched only after the commit and a dispatch failure
// is reported as a warning.
func (s *BookingService) Commit(ctx context.Context, req booking.CommitRequest) (*CommitResult, error) {
	seatIDs := req.SeatIDs()
	if len(seatIDs) == 0 {
		return nil, booking.ErrEmptySelection
	}
	method, err := booking.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	snapshots := make(map[uuid.UUID]booking.SeatRequest, len(req.Seats))
	for _, sr := range req.Seats {
		if _, ok := snapshots[sr.SeatID]; !ok {
			snapshots[sr.SeatID] = sr
		}
	}

	var committed *booking.Booking
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.seats.CheckVacant(ctx, req.ScheduleID, seatIDs)
		if err != nil {
			return fmt.Errorf("lock seats: %w", err)
		}

		var lost []uuid.UUID
		for _, id := range seatIDs {
			if st, ok := locked[id]; !ok || !st.IsVacant() {
				lost = append(lost, id)
			}
		}
		if len(lost) > 0 {
			return booking.SeatsNoLongerAvailable(lost)
		}

		var p *promo.PromoCode
		if req.PromoCodeID != nil {
			if p, err = s.promos.FindByID(ctx, *req.PromoCodeID); err != nil {
				return err
			}
		}

		charges := make([]booking.Charge, len(seatIDs))
		for i, id := range seatIDs {
			st := locked[id]
			if snap := snapshots[id]; snap.SnapshotPricePaise != 0 && snap.SnapshotPricePaise != st.PricePaise() {
				s.logger.Warn("seat price changed since selection",
					zap.String("seat_id", id.String()),
					zap.Int64("snapshot", snap.SnapshotPricePaise),
					zap.Int64("current", st.PricePaise()),
				)
			}
			charges[i] = booking.Charge{
				SeatID:     id,
				SeatType:   st.SeatType(),
				Row:        st.Row(),
				Column:     st.Column(),
				Location:   st.Location(),
				GrossPaise: st.PricePaise(),
			}
		}

		b, err := booking.NewBooking(
			booking.NewReference(s.now()),
			req.Purchaser.UserID, req.ScheduleID, method, charges, p,
		)
		if err != nil {
			return err
		}

		if err := s.bookings.Save(ctx, b); err != nil {
			return fmt.Errorf("save booking rows: %w", err)
		}
		if err := s.seats.MarkSold(ctx, req.ScheduleID, b.SeatIDs()); err != nil {
			var nv *seat.NotVacantError
			if errors.As(err, &nv) {
				return booking.SeatsNoLongerAvailable(nv.SeatIDs)
			}
			return fmt.Errorf("mark seats sold: %w", err)
		}

		committed = b
		return nil
	})
	if err != nil {
		return nil, s.rejected(req, err)
	}

	s.logger.Info("booking committed",
		zap.String("booking_ref", committed.Reference()),
		zap.String("user_id", committed.UserID().String()),
		zap.String("schedule_id", committed.ScheduleID().String()),
		zap.Int("seats", len(committed.Lines())),
		zap.Int64("net_total", committed.NetTotal()),
	)

	return s.afterCommit(ctx, committed, req.Purchaser.Email), nil
}

// rejected logs a failed commit and makes sure the caller only ever sees
// a typed error. Anything that is not a domain error is an infrastructure
// failure, which includes a reference collision on the primary key.
func (s *BookingService) rejected(req booking.CommitRequest, err error) error {
	fields := []zap.Field{
		zap.String("user_id", req.Purchaser.UserID.String()),
		zap.String("schedule_id", req.ScheduleID.String()),
		zap.Error(err),
	}
	if _, ok := domain.As(err); ok {
		s.logger.Info("booking rejected", fields...)
		return err
	}
	s.logger.Error("booking transaction failed", fields...)
	return booking.StorageFailure(err)
}

// afterCommit builds the confirmation and hands it to the dispatcher. The
// booking is already durable so nothing here can fail the request.
func (s *BookingService) afterCommit(ctx context.Context, b *booking.Booking, email string) *CommitResult {
	result := &CommitResult{}
	ctx = context.WithoutCancel(ctx)

	showing, err := s.showings.FindShowing(ctx, b.ScheduleID())
	if err != nil {
		s.logger.Warn("showing lookup failed",
			zap.String("booking_ref", b.Reference()),
			zap.Error(err),
		)
		result.Warnings = append(result.Warnings, WarningShowingUnavailable)
	}

	result.Confirmation = booking.NewConfirmation(b, email, showing)

	dctx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()
	if err := s.dispatcher.Send(dctx, result.Confirmation); err != nil {
		s.logger.Warn("confirmation dispatch failed",
			zap.String("booking_ref", b.Reference()),
			zap.Error(err),
		)
		result.Warnings = append(result.Warnings, WarningNotificationFailed)
	}
	return result
}

// GetBooking returns a confirmation for its purchaser. Bookings of other
// users are reported as not found.
func (s *BookingService) GetBooking(ctx context.Context, userID uuid.UUID, reference string) (*booking.Confirmation, error) {
	b, err := s.bookings.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if b.UserID() != userID {
		return nil, booking.ErrBookingNotFound
	}

	showing, err := s.showings.FindShowing(ctx, b.ScheduleID())
	if err != nil {
		s.logger.Debug("showing lookup failed", zap.String("booking_ref", reference), zap.Error(err))
		showing = nil
	}
	c := booking.NewConfirmation(b, "", showing)
	return &c, nil
}
