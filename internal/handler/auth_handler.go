package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/quadramall/seller-api/internal/service"
	"github.com/quadramall/seller-api/internal/utils"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidCreds):
			utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid email or password")
		case errors.Is(err, utils.ErrAccountInactive):
			utils.Error(c, 403, "ACCOUNT_INACTIVE", "Account is deactivated")
		default:
			log.Error().Err(err).Msg("Login failed")
			utils.Error(c, 500, "INTERNAL_ERROR", "Login failed")
		}
		return
	}

	utils.Success(c, 200, "Login successful", result)
}
