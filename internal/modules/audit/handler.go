package audit

import (
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
	rg.GET("/audit-logs", h.List)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, total, err := h.service.List(c.Request.Context(), c.GetString("club_id"), ListFilter{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "PROCESSING_ERROR", "could not list audit entries")
		return
	}
	response.Paginated(c, http.StatusOK, entries, total, limit, offset)
}
