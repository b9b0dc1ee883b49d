package response

import (
	"errors"
	"net/http"

	"github.com/catchify/service-booking/internal/platform/domain"
	"github.com/gin-gonic/gin"
)

// Body is the JSON envelope for every API response.
type Body struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failure to the client.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent writes a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Body{Error: &ErrorBody{Code: "BAD_REQUEST", Message: message}})
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Body{Error: &ErrorBody{Code: "UNAUTHORIZED", Message: message}})
}

// Error maps err to a status. Domain errors keep their code and message;
// anything else becomes an opaque 500 so internals never leak.
func Error(c *gin.Context, err error) {
	de, ok := domain.As(err)
	if !ok {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, Body{Error: &ErrorBody{
			Code:    "INTERNAL_ERROR",
			Message: "an unexpected error occurred",
		}})
		return
	}
	if de.Cause != nil {
		_ = c.Error(de.Cause)
	}
	c.JSON(StatusFor(de), Body{Error: &ErrorBody{
		Code:    de.Code,
		Message: de.Message,
		Details: de.Details,
	}})
}

// StatusFor returns the HTTP status for a domain error kind.
func StatusFor(de *domain.DomainError) int {
	switch {
	case errors.Is(de.Err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(de.Err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(de.Err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(de.Err, domain.ErrUnprocessable):
		return http.StatusUnprocessableEntity
	case errors.Is(de.Err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(de.Err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
