package handler

import (
	"context"
	"time"

	"github.com/catchify/service-booking/internal/application"
	"github.com/catchify/service-booking/internal/domain/booking"
	"github.com/catchify/service-booking/internal/platform/auth"
	"github.com/catchify/service-booking/internal/platform/middleware"
	"github.com/catchify/service-booking/internal/platform/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BookingCommitter is the booking use-case surface used by the handler.
type BookingCommitter interface {
	Commit(ctx context.Context, req booking.CommitRequest) (*application.CommitResult, error)
	GetBooking(ctx context.Context, userID uuid.UUID, reference string) (*booking.Confirmation, error)
}

// CommitSeat is one seat of a commit request.
type CommitSeat struct {
	SeatID        uuid.UUID `json:"seatId" binding:"required"`
	SnapshotPrice int64     `json:"snapshotPrice"`
	Type          string    `json:"type"`
}

// CommitBookingRequest is the body of POST /bookings/commit.
type CommitBookingRequest struct {
	ScheduleID    uuid.UUID    `json:"scheduleId" binding:"required"`
	Seats         []CommitSeat `json:"seats" binding:"dive"`
	PromoCodeID   *uuid.UUID   `json:"promoCodeId"`
	PaymentMethod string       `json:"paymentMethod"`
}

// CommittedSeat is one seat of a commit response.
type CommittedSeat struct {
	SeatID   uuid.UUID `json:"seatId"`
	Type     string    `json:"type"`
	Location string    `json:"location"`
	Gross    int64     `json:"grossPrice"`
	Net      int64     `json:"netPrice"`
}

// CommittedShowing is the showing metadata of a commit response.
type CommittedShowing struct {
	ScheduleID      uuid.UUID `json:"scheduleId"`
	EventName       string    `json:"eventName"`
	Genre           string    `json:"genre,omitempty"`
	Language        string    `json:"language,omitempty"`
	DurationMinutes int       `json:"durationMinutes,omitempty"`
	VenueName       string    `json:"venueName"`
	StartsAt        time.Time `json:"startsAt"`
}

// CommitBookingResponse is the body returned by a successful commit.
type CommitBookingResponse struct {
	BookingRef    string            `json:"bookingRef"`
	GrossTotal    int64             `json:"grossTotal"`
	Discount      int64             `json:"discount"`
	NetTotal      int64             `json:"netTotal"`
	PaymentMethod string            `json:"paymentMethod"`
	PromoCode     string            `json:"promoCode,omitempty"`
	Seats         []CommittedSeat   `json:"seats"`
	Showing       *CommittedShowing `json:"showing,omitempty"`
	BookedAt      time.Time         `json:"bookedAt"`
	Warnings      []string          `json:"warnings,omitempty"`
}

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service BookingCommitter
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service BookingCommitter) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	{
		bookings.POST("/commit", h.Commit)
		bookings.GET("/:reference", h.GetBooking)
	}
}

// Commit handles POST /api/v1/bookings/commit
func (h *BookingHandler) Commit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req CommitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	commit := booking.CommitRequest{
		Purchaser:     booking.Purchaser{UserID: userID, Email: middleware.GetEmail(c)},
		ScheduleID:    req.ScheduleID,
		Seats:         make([]booking.SeatRequest, len(req.Seats)),
		PromoCodeID:   req.PromoCodeID,
		PaymentMethod: req.PaymentMethod,
	}
	for i, s := range req.Seats {
		commit.Seats[i] = booking.SeatRequest{
			SeatID:             s.SeatID,
			SnapshotPricePaise: s.SnapshotPrice,
			SeatType:           s.Type,
		}
	}

	result, err := h.service.Commit(c.Request.Context(), commit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toCommitResponse(result))
}

// GetBooking handles GET /api/v1/bookings/:reference
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	confirmation, err := h.service.GetBooking(c.Request.Context(), userID, c.Param("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, confirmation)
}

func toCommitResponse(r *application.CommitResult) CommitBookingResponse {
	conf := r.Confirmation
	seats := make([]CommittedSeat, len(conf.Seats))
	for i, s := range conf.Seats {
		seats[i] = CommittedSeat{
			SeatID:   s.SeatID,
			Type:     s.SeatType,
			Location: s.Location,
			Gross:    s.GrossPaise,
			Net:      s.NetPaise,
		}
	}
	var showing *CommittedShowing
	if sh := conf.Showing; sh != nil {
		showing = &CommittedShowing{
			ScheduleID:      sh.ScheduleID,
			EventName:       sh.EventName,
			Genre:           sh.Genre,
			Language:        sh.Language,
			DurationMinutes: sh.DurationMinutes,
			VenueName:       sh.VenueName,
			StartsAt:        sh.StartsAt,
		}
	}
	return CommitBookingResponse{
		BookingRef:    conf.Reference,
		GrossTotal:    conf.GrossTotal,
		Discount:      conf.Discount,
		NetTotal:      conf.NetTotal,
		PaymentMethod: string(conf.PaymentMethod),
		PromoCode:     conf.PromoCode,
		Seats:         seats,
		Showing:       showing,
		BookedAt:      conf.BookedAt,
		Warnings:      r.Warnings,
	}
}
