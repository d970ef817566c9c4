package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pos/internal/middleware"
	"github.com/GTDGit/gtd_pos/internal/service"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

// AuthHandler handles staff sign-in and the caller's own account.
type AuthHandler struct {
	authService  *service.AuthService
	staffService *service.StaffService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, staffService *service.StaffService) *AuthHandler {
	return &AuthHandler{authService: authService, staffService: staffService}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bind(c, &req) {
		return
	}
	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Login successful", result)
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	staff, err := h.staffService.Get(c.Request.Context(), middleware.GetActor(c).StaffID)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Profile retrieved", staff)
}

// ChangePassword handles PUT /v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.staffService.ChangePassword(c.Request.Context(), middleware.GetActor(c), &req); err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Password changed", nil)
}
