// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twoem/portal/internal/app/models/dto"
	"github.com/twoem/portal/internal/app/services"
	"github.com/twoem/portal/internal/middleware"
	"github.com/twoem/portal/internal/pkg/logger"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// AdminLogin handles back-office login
// @Summary Log in as an admin
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Admin credentials"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse}
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/admin/login [post]
func (c *AuthController) AdminLogin(ctx *gin.Context) {
	var req dto.AdminLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	token, err := c.authService.LoginAdmin(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(token))
}

// StudentLogin handles student portal login
// @Summary Log in as a student
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.StudentLoginRequest true "Registration number and password"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse}
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account deactivated"
// @Router /auth/student/login [post]
func (c *AuthController) StudentLogin(ctx *gin.Context) {
	var req dto.StudentLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	token, err := c.authService.LoginStudent(ctx.Request.Context(), req.RegistrationNumber, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(token))
}

// ChangePassword handles a student changing their own password
// @Summary Change the authenticated student's password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 401 {object} dto.ErrorResponse "Wrong current password"
// @Router /me/password [put]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	studentID := middleware.SubjectID(ctx)
	if err := c.authService.ChangeStudentPassword(ctx.Request.Context(), studentID, req.CurrentPassword, req.NewPassword); err != nil {
		logger.Warn().Err(err).Int64("studentID", studentID).Msg("Password change rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Password changed successfully"}))
}
