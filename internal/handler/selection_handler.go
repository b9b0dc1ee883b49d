package handler

import (
	"context"

	"github.com/catchify/service-booking/internal/application"
	"github.com/catchify/service-booking/internal/domain/booking"
	"github.com/catchify/service-booking/internal/domain/selection"
	"github.com/catchify/service-booking/internal/platform/auth"
	"github.com/catchify/service-booking/internal/platform/middleware"
	"github.com/catchify/service-booking/internal/platform/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SelectionManager is the selection use-case surface used by the handler.
type SelectionManager interface {
	Start(ctx context.Context, userID, scheduleID uuid.UUID) (*selection.Selection, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*selection.Selection, error)
	AddSeat(ctx context.Context, userID, id, seatID uuid.UUID) (*selection.Selection, error)
	RemoveSeat(ctx context.Context, userID, id, seatID uuid.UUID) (*selection.Selection, error)
	ApplyPromoCode(ctx context.Context, userID, id uuid.UUID, code string) (*selection.Selection, error)
	ClearPromo(ctx context.Context, userID, id uuid.UUID) (*selection.Selection, error)
	Abandon(ctx context.Context, userID, id uuid.UUID) error
	Checkout(ctx context.Context, purchaser booking.Purchaser, id uuid.UUID, paymentMethod string) (*application.CommitResult, error)
}

// StartSelectionRequest is the body of POST /selections.
type StartSelectionRequest struct {
	ScheduleID uuid.UUID `json:"schedule_id" binding:"required"`
}

// AddSeatRequest is the body of POST /selections/:id/seats.
type AddSeatRequest struct {
	SeatID uuid.UUID `json:"seat_id" binding:"required"`
}

// ApplyPromoRequest is the body of PUT /selections/:id/promo.
type ApplyPromoRequest struct {
	Code string `json:"code" binding:"required"`
}

// CheckoutRequest is the body of POST /selections/:id/checkout.
type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// SelectionView is a selection as returned to the client: seats in pick
// order plus the running total.
type SelectionView struct {
	ID          uuid.UUID                `json:"id"`
	ScheduleID  uuid.UUID                `json:"schedule_id"`
	Seats       []selection.SelectedSeat `json:"seats"`
	TotalPaise  int64                    `json:"total"`
	PromoCodeID *uuid.UUID               `json:"promo_code_id,omitempty"`
}

// SelectionHandler handles HTTP requests for seat selections.
type SelectionHandler struct {
	service SelectionManager
}

// NewSelectionHandler creates a new SelectionHandler.
func NewSelectionHandler(service SelectionManager) *SelectionHandler {
	return &SelectionHandler{service: service}
}

// RegisterRoutes registers all selection routes.
func (h *SelectionHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	selections := r.Group("/selections")
	selections.Use(middleware.AuthMiddleware(jwtManager))
	{
		selections.POST("", h.Start)
		selections.GET("/:id", h.Get)
		selections.DELETE("/:id", h.Abandon)
		selections.POST("/:id/seats", h.AddSeat)
		selections.DELETE("/:id/seats/:seatId", h.RemoveSeat)
		selections.PUT("/:id/promo", h.ApplyPromo)
		selections.DELETE("/:id/promo", h.ClearPromo)
		selections.POST("/:id/checkout", h.Checkout)
	}
}

// Start handles POST /api/v1/selections
func (h *SelectionHandler) Start(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req StartSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sel, err := h.service.Start(c.Request.Context(), userID, req.ScheduleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toSelectionView(sel))
}

// Get handles GET /api/v1/selections/:id
func (h *SelectionHandler) Get(c *gin.Context) {
	userID, id, ok := selectionParams(c)
	if !ok {
		return
	}

	sel, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toSelectionView(sel))
}

// AddSeat handles POST /api/v1/selections/:id/seats
func (h *SelectionHandler) AddSeat(c *gin.Context) {
	userID, id, ok := selectionParams(c)
	if !ok {
		return
	}

	var req AddSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sel, err := h.service.AddSeat(c.Request.Context(), userID, id, req.SeatID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toSelectionView(sel))
}

// RemoveSeat handles DELETE /api/v1/selections/:id/seats/:seatId
func (h *SelectionHandler) RemoveSeat(c *gin.Context) {
	userID, id, ok := selectionParams(c)
	if !ok {
		return
	}
	seatID, err := uuid.Parse(c.Param("seatId"))
	if err != nil {
		response.BadRequest(c, "invalid seat ID")
		return
	}

	sel, err := h.service.RemoveSeat(c.Request.Context(), userID, id, seatID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toSelectionView(sel))
}

// ApplyPromo handles PUT /api/v1/selections/:id/promo
func (h *SelectionHandler) ApplyPromo(c *gin.Context) {
	userID, id, ok := selectionParams(c)
	if !ok {
		return
	}

	var req ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sel, err := h.service.ApplyPromoCode(c.Request.Context(), userID, id, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toSelectionView(sel))
}

// ClearPromo handles DELETE /api/v1/selections/:id/promo
func (h *SelectionHandler) ClearPromo(c *gin.Context) {
	userID, id, ok := selectionParams(c)
	if !ok {
		return
	}

	sel, err := h.service.ClearPromo(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toSelectionView(sel))
}

// Abandon handles DELETE /api/v1/selections/:id
func (h *SelectionHandler) Abandon(c *gin.Context) {
	userID, id, ok := selectionParams(c)
	if !ok {
		return
	}

	if err := h.service.Abandon(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Checkout handles POST /api/v1/selections/:id/checkout
func (h *SelectionHandler) Checkout(c *gin.Context) {
	userID, id, ok := selectionParams(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	purchaser := booking.Purchaser{UserID: userID, Email: middleware.GetEmail(c)}
	result, err := h.service.Checkout(c.Request.Context(), purchaser, id, req.PaymentMethod)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toCommitResponse(result))
}

// selectionParams reads the caller and the :id path parameter. It writes
// the error response itself and reports false when either is missing.
func selectionParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid selection ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func toSelectionView(s *selection.Selection) SelectionView {
	return SelectionView{
		ID:          s.ID,
		ScheduleID:  s.ScheduleID,
		Seats:       s.Ordered(),
		TotalPaise:  s.Total(),
		PromoCodeID: s.PromoCodeID,
	}
}
