package handler

import (
	"context"

	"github.com/catchify/service-booking/internal/application"
	"github.com/catchify/service-booking/internal/domain/seat"
	"github.com/catchify/service-booking/internal/platform/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SeatReader is the seat query surface used by the handler.
type SeatReader interface {
	GetSeats(ctx context.Context, scheduleID uuid.UUID) ([]application.SeatDTO, error)
	SeatMap(ctx context.Context, scheduleID uuid.UUID) (seat.SeatMap, error)
}

// SeatHandler serves seat availability. Seat reads are public.
type SeatHandler struct {
	service SeatReader
}

// NewSeatHandler creates a new SeatHandler.
func NewSeatHandler(service SeatReader) *SeatHandler {
	return &SeatHandler{service: service}
}

// RegisterRoutes registers all seat routes.
func (h *SeatHandler) RegisterRoutes(r *gin.RouterGroup) {
	schedules := r.Group("/schedules/:scheduleId")
	{
		schedules.GET("/seats", h.GetSeats)
		schedules.GET("/seat-map", h.GetSeatMap)
	}
}

// GetSeats handles GET /api/v1/schedules/:scheduleId/seats
func (h *SeatHandler) GetSeats(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("scheduleId"))
	if err != nil {
		response.BadRequest(c, "invalid schedule ID")
		return
	}

	seats, err := h.service.GetSeats(c.Request.Context(), scheduleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, seats)
}

// GetSeatMap handles GET /api/v1/schedules/:scheduleId/seat-map
func (h *SeatHandler) GetSeatMap(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("scheduleId"))
	if err != nil {
		response.BadRequest(c, "invalid schedule ID")
		return
	}

	seatMap, err := h.service.SeatMap(c.Request.Context(), scheduleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, seatMap)
}
