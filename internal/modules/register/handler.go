package register

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
	rg.GET("/register/today", h.Today)
	rg.GET("/register/stats", h.Stats)
	rg.POST("/register/transactions", h.RecordTransaction)
	rg.GET("/register/:id/transactions", h.ListTransactions)
	rg.POST("/register/:id/close", h.Close)
}

func (h *Handler) Today(c *gin.Context) {
	register, err := h.service.ResolveToday(c.Request.Context(), c.GetString("club_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to resolve register")
		return
	}
	response.Success(c, http.StatusOK, register)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.GetString("club_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to compute register stats")
		return
	}
	response.Success(c, http.StatusOK, stats)
}

func (h *Handler) RecordTransaction(c *gin.Context) {
	var input ManualTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tx, err := h.service.RecordManualTransaction(c.Request.Context(), c.GetString("club_id"), input)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			response.Error(c, http.StatusBadRequest, "INVALID_AMOUNT", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to record transaction")
		return
	}
	response.Success(c, http.StatusCreated, tx)
}

func (h *Handler) ListTransactions(c *gin.Context) {
	registerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_IDENTIFIER", "invalid register id")
		return
	}

	txs, err := h.service.ListTransactions(c.Request.Context(), c.GetString("club_id"), registerID)
	if err != nil {
		if errors.Is(err, ErrRegisterNotFound) {
			response.Error(c, http.StatusNotFound, "REGISTER_NOT_FOUND", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list transactions")
		return
	}
	response.Success(c, http.StatusOK, txs)
}

func (h *Handler) Close(c *gin.Context) {
	registerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_IDENTIFIER", "invalid register id")
		return
	}

	var req CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	register, err := h.service.Close(c.Request.Context(), c.GetString("club_id"), registerID, req.RealCash, req.RealTransfer)
	if err != nil {
		switch {
		case errors.Is(err, ErrRegisterNotFound):
			response.Error(c, http.StatusNotFound, "REGISTER_NOT_FOUND", err.Error())
		case errors.Is(err, ErrAlreadyClosed):
			response.Error(c, http.StatusConflict, "REGISTER_CLOSED", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to close register")
		}
		return
	}
	response.Success(c, http.StatusOK, register)
}
