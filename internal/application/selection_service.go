package application

import (
	"context"
	"errors"

	"github.com/catchify/service-booking/internal/domain/booking"
	"github.com/catchify/service-booking/internal/domain/selection"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SelectionService is the Selection Holder. Selections reserve nothing;
// every seat is checked again when the selection is checked out.
type SelectionService struct {
	store    selection.Store
	seats    *SeatService
	promos   *PromoService
	bookings *BookingService
	logger   *zap.Logger
}

// NewSelectionService creates a new SelectionService.
func NewSelectionService(store selection.Store, seats *SeatService, promos *PromoService, bookings *BookingService, logger *zap.Logger) *SelectionService {
	return &SelectionService{store: store, seats: seats, promos: promos, bookings: bookings, logger: logger}
}

// Start opens an empty selection for a showing.
func (s *SelectionService) Start(ctx context.Context, userID, scheduleID uuid.UUID) (*selection.Selection, error) {
	sel := selection.New(userID, scheduleID)
	if err := s.store.Save(ctx, sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// Get returns a selection owned by userID.
func (s *SelectionService) Get(ctx context.Context, userID, id uuid.UUID) (*selection.Selection, error) {
	sel, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, selection.ErrNotFound) {
			return nil, ErrSelectionNotFound
		}
		return nil, err
	}
	if !sel.OwnedBy(userID) {
		return nil, ErrSelectionNotFound
	}
	return sel, nil
}

// AddSeat snapshots a seat's type and price into the selection. Adding a
// seat twice is a no-op. Seats already sold are refused up front since
// they could never be committed.
func (s *SelectionService) AddSeat(ctx context.Context, userID, id, seatID uuid.UUID) (*selection.Selection, error) {
	sel, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if _, ok := sel.Seats[seatID]; ok {
		return sel, nil
	}

	st, err := s.seats.FindSeat(ctx, seatID)
	if err != nil {
		return nil, err
	}
	if st.ScheduleID() != sel.ScheduleID {
		return nil, ErrSeatNotInSchedule
	}
	if !st.IsVacant() {
		return nil, booking.SeatsNoLongerAvailable([]uuid.UUID{seatID})
	}

	sel.AddSeat(selection.SelectedSeat{
		SeatID:     st.ID(),
		SeatType:   st.SeatType(),
		PricePaise: st.PricePaise(),
		Row:        st.Row(),
		Column:     st.Column(),
		Location:   st.Location(),
	})
	if err := s.store.Save(ctx, sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// RemoveSeat drops a seat from the selection.
func (s *SelectionService) RemoveSeat(ctx context.Context, userID, id, seatID uuid.UUID) (*selection.Selection, error) {
	sel, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !sel.RemoveSeat(seatID) {
		return sel, nil
	}
	if err := s.store.Save(ctx, sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// ApplyPromoCode attaches a code, replacing any earlier one.
func (s *SelectionService) ApplyPromoCode(ctx context.Context, userID, id uuid.UUID, code string) (*selection.Selection, error) {
	sel, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	p, err := s.promos.FindActiveByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	sel.AttachPromo(p.ID())
	if err := s.store.Save(ctx, sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// ClearPromo detaches the promo code.
func (s *SelectionService) ClearPromo(ctx context.Context, userID, id uuid.UUID) (*selection.Selection, error) {
	sel, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	sel.DetachPromo()
	if err := s.store.Save(ctx, sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// Abandon discards a selection.
func (s *SelectionService) Abandon(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Checkout commits the selection. On success the selection is cleared.
// When seats were lost to another buyer they are dropped from the
// selection so the user can pick replacements.
func (s *SelectionService) Checkout(ctx context.Context, purchaser booking.Purchaser, id uuid.UUID, paymentMethod string) (*CommitResult, error) {
	sel, err := s.Get(ctx, purchaser.UserID, id)
	if err != nil {
		return nil, err
	}
	if sel.IsEmpty() {
		return nil, booking.ErrEmptySelection
	}

	ordered := sel.Ordered()
	req := booking.CommitRequest{
		Purchaser:     purchaser,
		ScheduleID:    sel.ScheduleID,
		Seats:         make([]booking.SeatRequest, len(ordered)),
		PromoCodeID:   sel.PromoCodeID,
		PaymentMethod: paymentMethod,
	}
	for i, st := range ordered {
		req.Seats[i] = booking.SeatRequest{
			SeatID:             st.SeatID,
			SnapshotPricePaise: st.PricePaise,
			SeatType:           st.SeatType,
		}
	}

	result, err := s.bookings.Commit(ctx, req)
	if err != nil {
		if lost := booking.LostSeats(err); len(lost) > 0 {
			s.dropSeats(ctx, sel, lost)
		}
		return nil, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to clear selection after checkout",
			zap.String("selection_id", id.String()),
			zap.Error(err),
		)
	}
	return result, nil
}

func (s *SelectionService) dropSeats(ctx context.Context, sel *selection.Selection, lost []uuid.UUID) {
	for _, id := range lost {
		sel.RemoveSeat(id)
	}
	if err := s.store.Save(ctx, sel); err != nil {
		s.logger.Warn("failed to drop lost seats from selection",
			zap.String("selection_id", sel.ID.String()),
			zap.Error(err),
		)
	}
}
