package report

import (
	"errors"
	"fmt"
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
	rg.GET("/reports/daily", h.Daily)
	rg.GET("/reports/register/:id/csv", h.RegisterCSV)
	rg.GET("/reports/register/:id/xlsx", h.RegisterXLSX)
}

func (h *Handler) Daily(c *gin.Context) {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	report, err := h.service.DailyFinancials(c.Request.Context(), c.GetString("club_id"), day)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "PROCESSING_ERROR", "could not build daily report")
		return
	}
	response.Success(c, http.StatusOK, report)
}

func (h *Handler) RegisterCSV(c *gin.Context) {
	id, ok := h.registerID(c)
	if !ok {
		return
	}

	data, err := h.service.ExportRegisterCSV(c.Request.Context(), c.GetString("club_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="register-%d.csv"`, id))
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *Handler) RegisterXLSX(c *gin.Context) {
	id, ok := h.registerID(c)
	if !ok {
		return
	}

	data, err := h.service.ExportRegisterXLSX(c.Request.Context(), c.GetString("club_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="register-%d.xlsx"`, id))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *Handler) registerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_IDENTIFIER", "register id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, ErrRegisterNotFound) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	response.Error(c, http.StatusInternalServerError, "PROCESSING_ERROR", "could not export register")
}
