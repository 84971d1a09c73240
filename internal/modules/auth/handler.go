package auth

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
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			response.Error(c, http.StatusConflict, "EMAIL_TAKEN", err.Error())
		case errors.Is(err, ErrClubNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "PROCESSING_ERROR", "could not register user")
		}
		return
	}
	response.Success(c, http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "PROCESSING_ERROR", "could not log in")
		return
	}
	response.Success(c, http.StatusOK, result)
}
