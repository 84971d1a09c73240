package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

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
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings", h.ListByDay)
	rg.GET("/bookings/:id", h.GetDetails)
	rg.PATCH("/bookings/:id/schedule", h.Reschedule)
	rg.POST("/bookings/:id/items", h.AddItem)
	rg.DELETE("/bookings/items/:itemID", h.RemoveItem)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.service.Create(c.Request.Context(), c.GetString("club_id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

func (h *Handler) ListByDay(c *gin.Context) {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	bookings, err := h.service.ListByDay(c.Request.Context(), c.GetString("club_id"), day)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, bookings)
}

func (h *Handler) GetDetails(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_IDENTIFIER", "booking id must be a positive integer")
		return
	}

	booking, err := h.service.GetDetails(c.Request.Context(), c.GetString("club_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, booking)
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_IDENTIFIER", "booking id must be a positive integer")
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	booking, err := h.service.Reschedule(c.Request.Context(), c.GetString("club_id"), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, booking)
}

func (h *Handler) AddItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_IDENTIFIER", "booking id must be a positive integer")
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), c.GetString("club_id"), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

func (h *Handler) RemoveItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("itemID"), 10, 64)
	if err != nil || itemID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_IDENTIFIER", "item id must be a positive integer")
		return
	}

	if err := h.service.RemoveItem(c.Request.Context(), c.GetString("club_id"), itemID); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": itemID})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrOutsideOpeningHours):
		response.Error(c, http.StatusUnprocessableEntity, "OUTSIDE_OPENING_HOURS", err.Error())
	case errors.Is(err, ErrSlotTaken):
		response.Error(c, http.StatusConflict, "SLOT_TAKEN", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		response.Error(c, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrClubNotFound),
		errors.Is(err, ErrProductNotFound), errors.Is(err, ErrItemNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "PROCESSING_ERROR", "could not process booking request")
	}
}
