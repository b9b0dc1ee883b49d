package handler

import (
	"context"

	"github.com/catchify/service-booking/internal/application"
	"github.com/catchify/service-booking/internal/platform/auth"
	"github.com/catchify/service-booking/internal/platform/middleware"
	"github.com/catchify/service-booking/internal/platform/response"
	"github.com/gin-gonic/gin"
)

// PromoValidator checks promo codes against an amount.
type PromoValidator interface {
	ValidatePromo(ctx context.Context, req application.ValidatePromoRequest) (*application.PromoValidationDTO, error)
}

// PromoHandler handles HTTP requests for promo code operations.
type PromoHandler struct {
	service PromoValidator
}

// NewPromoHandler creates a new PromoHandler.
func NewPromoHandler(service PromoValidator) *PromoHandler {
	return &PromoHandler{service: service}
}

// RegisterRoutes registers all promo routes.
func (h *PromoHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	promos := r.Group("/promos")
	promos.Use(middleware.AuthMiddleware(jwtManager))
	{
		promos.POST("/validate", h.ValidatePromo)
	}
}

// ValidatePromo handles POST /api/v1/promos/validate.
func (h *PromoHandler) ValidatePromo(c *gin.Context) {
	var req application.ValidatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ValidatePromo(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
