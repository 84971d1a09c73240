package client

import (
	"errors"
	"net/http"
	"strconv"

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
	rg.GET("/clients", h.List)
	rg.GET("/clients/:id", h.Get)
	rg.PUT("/clients/:id", h.Update)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	clients, total, err := h.service.List(c.Request.Context(), c.GetString("club_id"), c.Query("search"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "PROCESSING_ERROR", "could not list clients")
		return
	}
	response.Paginated(c, http.StatusOK, clients, total, limit, offset)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_IDENTIFIER", "client id must be a positive integer")
		return
	}

	client, err := h.service.Get(c.Request.Context(), c.GetString("club_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, client)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_IDENTIFIER", "client id must be a positive integer")
		return
	}

	var req struct {
		Name  string  `json:"name"`
		Phone string  `json:"phone"`
		Email *string `json:"email,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	client, err := h.service.Update(c.Request.Context(), c.GetString("club_id"), id, req.Name, req.Phone, req.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, client)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrClientNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "PROCESSING_ERROR", "could not process client request")
	}
}
