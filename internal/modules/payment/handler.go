package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"courtops/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/:id/payments", h.ProcessPayment)
	rg.POST("/bookings/:id/cancel", h.CancelWithRefund)
}

func (h *Handler) ProcessPayment(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount" binding:"required"`
		Method string  `json:"method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	clubID := c.GetString("club_id")
	actingUser := c.GetString("user_email")

	result, err := h.service.ProcessPayment(c.Request.Context(), clubID, c.Param("id"), req.Amount, req.Method, actingUser)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) CancelWithRefund(c *gin.Context) {
	clubID := c.GetString("club_id")
	actingUser := c.GetString("user_email")

	result, err := h.service.CancelWithRefund(c.Request.Context(), clubID, c.Param("id"), actingUser)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// writeError maps domain errors to their own codes; everything else
// collapses to a generic processing error with the cause kept out of
// the response body.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidIdentifier):
		response.Error(c, http.StatusBadRequest, "INVALID_IDENTIFIER", "invalid booking identifier")
	case errors.Is(err, ErrInvalidAmount):
		response.Error(c, http.StatusBadRequest, "INVALID_AMOUNT", "amount must be a positive number")
	case errors.Is(err, ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "booking not found")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "PROCESSING_ERROR", "error processing the payment")
	}
}
