package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/catchify/service-booking/internal/domain/booking"
	"github.com/catchify/service-booking/internal/domain/seat"
	"github.com/catchify/service-booking/internal/platform/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeatDTO is the API representation of a seat.
type SeatDTO struct {
	ID         uuid.UUID `json:"id"`
	ScheduleID uuid.UUID `json:"schedule_id"`
	SeatType   string    `json:"seat_type"`
	PricePaise int64     `json:"price"`
	Row        string    `json:"row"`
	Column     int       `json:"column"`
	Location   string    `json:"location"`
	Vacant     bool      `json:"vacant"`
}

// SeatBlock describes a rectangular block of identically priced seats.
type SeatBlock struct {
	SeatType   string   `json:"seat_type"`
	PricePaise int64    `json:"price"`
	Rows       []string `json:"rows"`
	Columns    int      `json:"columns"`
}

// ProvisionRequest is a showing's metadata plus its seat layout.
type ProvisionRequest struct {
	Showing booking.Showing
	Blocks  []SeatBlock
}

// ShowingWriter stores showing metadata.
type ShowingWriter interface {
	Upsert(ctx context.Context, s booking.Showing) error
}

// SeatService is the Inventory Store's application surface.
type SeatService struct {
	tx       TxManager
	repo     seat.Repository
	showings ShowingWriter
	logger   *zap.Logger
}

// NewSeatService creates a new SeatService.
func NewSeatService(tx TxManager, repo seat.Repository, showings ShowingWriter, logger *zap.Logger) *SeatService {
	return &SeatService{tx: tx, repo: repo, showings: showings, logger: logger}
}

// GetSeats returns every seat of a schedule with current vacancy.
func (s *SeatService) GetSeats(ctx context.Context, scheduleID uuid.UUID) ([]SeatDTO, error) {
	seats, err := s.repo.FindBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("load seats: %w", err)
	}
	dtos := make([]SeatDTO, len(seats))
	for i, st := range seats {
		dtos[i] = toSeatDTO(st)
	}
	return dtos, nil
}

// SeatMap returns the grouped view model of a schedule.
func (s *SeatService) SeatMap(ctx context.Context, scheduleID uuid.UUID) (seat.SeatMap, error) {
	seats, err := s.repo.FindBySchedule(ctx, scheduleID)
	if err != nil {
		return seat.SeatMap{}, fmt.Errorf("load seats: %w", err)
	}
	return seat.BuildSeatMap(scheduleID, seats), nil
}

// CheckVacant is a point-in-time vacancy read. Seats unknown to the
// schedule are reported as not vacant.
func (s *SeatService) CheckVacant(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	found, err := s.repo.CheckVacant(ctx, scheduleID, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("check vacancy: %w", err)
	}
	out := make(map[uuid.UUID]bool, len(seatIDs))
	for _, id := range seatIDs {
		st, ok := found[id]
		out[id] = ok && st.IsVacant()
	}
	return out, nil
}

// FindSeat returns one seat.
func (s *SeatService) FindSeat(ctx context.Context, id uuid.UUID) (*seat.Seat, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrSeatNotFound
		}
		return nil, fmt.Errorf("load seat: %w", err)
	}
	return st, nil
}

// ProvisionSeats stores the showing and creates its seats. Replaying the
// same layout creates nothing new.
func (s *SeatService) ProvisionSeats(ctx context.Context, req ProvisionRequest) (int64, error) {
	sh := req.Showing
	var seats []*seat.Seat
	for _, b := range req.Blocks {
		for _, row := range b.Rows {
			for col := 1; col <= b.Columns; col++ {
				st, err := seat.NewSeat(sh.ScheduleID, sh.EventID, b.SeatType, b.PricePaise, row, col, "")
				if err != nil {
					return 0, domain.NewValidationError(err.Error())
				}
				seats = append(seats, st)
			}
		}
	}

	var created int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.showings.Upsert(ctx, sh); err != nil {
			return fmt.Errorf("upsert showing: %w", err)
		}
		n, err := s.repo.Provision(ctx, seats)
		if err != nil {
			return fmt.Errorf("provision seats: %w", err)
		}
		created = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("seats provisioned",
		zap.String("schedule_id", sh.ScheduleID.String()),
		zap.Int("requested", len(seats)),
		zap.Int64("created", created),
		zap.Time("starts_at", sh.StartsAt),
	)
	return created, nil
}

func toSeatDTO(st *seat.Seat) SeatDTO {
	return SeatDTO{
		ID:         st.ID(),
		ScheduleID: st.ScheduleID(),
		SeatType:   st.SeatType(),
		PricePaise: st.PricePaise(),
		Row:        st.Row(),
		Column:     st.Column(),
		Location:   st.Location(),
		Vacant:     st.IsVacant(),
	}
}
