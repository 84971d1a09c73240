package waitinglist

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"courtops/internal/domain"
	"courtops/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/waiting-list", h.Join)
	rg.GET("/waiting-list", h.ListForDate)
	rg.POST("/waiting-list/:id/resolve", h.Resolve)
}

func (h *Handler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	entry, err := h.service.Join(c.Request.Context(), c.GetString("club_id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, entry)
}

func (h *Handler) ListForDate(c *gin.Context) {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	entries, err := h.service.ListForDate(c.Request.Context(), c.GetString("club_id"), day)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries)
}

func (h *Handler) Resolve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_IDENTIFIER", "entry id must be a positive integer")
		return
	}

	var req struct {
		Status domain.WaitingStatus `json:"status" binding:"required,oneof=FULFILLED DISMISSED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	entry, err := h.service.Resolve(c.Request.Context(), c.GetString("club_id"), id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entry)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrEntryNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "PROCESSING_ERROR", "could not process waiting list request")
	}
}
