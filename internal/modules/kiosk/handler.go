package kiosk

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
	rg.GET("/kiosk/products", h.Products)
	rg.POST("/kiosk/checkout", h.Checkout)
}

func (h *Handler) Products(c *gin.Context) {
	products, err := h.service.Products(c.Request.Context(), c.GetString("club_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "PROCESSING_ERROR", "could not list products")
		return
	}
	response.Success(c, http.StatusOK, products)
}

func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.service.Checkout(c.Request.Context(), c.GetString("club_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptySale), errors.Is(err, ErrInvalidPayment):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrProductNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, ErrInsufficientStock):
			response.Error(c, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "PROCESSING_ERROR", "could not process sale")
		}
		return
	}
	response.Success(c, http.StatusCreated, result)
}
