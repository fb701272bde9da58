package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"publishing-backend/internal/domains/account"
	"publishing-backend/internal/shared/middleware"
	"publishing-backend/internal/shared/response"
)

// AccountHandler xử lý HTTP requests cho /auth và /users.
// Stateless - chỉ chứa dependencies.
type AccountHandler struct {
	service account.Service
}

func NewAccountHandler(service account.Service) *AccountHandler {
	return &AccountHandler{service: service}
}

// ========================================
// AUTHENTICATION ENDPOINTS
// ========================================

// Register xử lý POST /auth/register
func (h *AccountHandler) Register(c *gin.Context) {
	// STEP 1: PARSE REQUEST BODY
	var req account.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	// STEP 2: CALL SERVICE LAYER (validate + hash + persist + tokens)
	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	// STEP 3: SUCCESS RESPONSE
	c.Header("Location", "/api/v1/users/me")
	response.Success(c, http.StatusCreated, "User registered successfully", resp)
}

// Login xử lý POST /auth/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req account.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Login successful", resp)
}

// RefreshToken xử lý POST /auth/refresh
func (h *AccountHandler) RefreshToken(c *gin.Context) {
	var req account.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.RefreshToken(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Token refreshed", resp)
}

// Logout xử lý POST /auth/logout
func (h *AccountHandler) Logout(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req account.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.Logout(c.Request.Context(), actor, req); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Logged out successfully", nil)
}

// ========================================
// PROFILE ENDPOINTS
// ========================================

// GetProfile xử lý GET /users/me
func (h *AccountHandler) GetProfile(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// UpdateProfile xử lý PUT /users/me
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req account.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile updated successfully", profile)
}

// ChangePassword xử lý PUT /users/change-password
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req account.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), actor, req); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Password changed successfully", nil)
}

// bindJSON chỉ kiểm tra JSON format, validate nghiệp vụ nằm ở service
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return false
	}
	return true
}
