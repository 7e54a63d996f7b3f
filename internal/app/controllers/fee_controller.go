package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/app/models/dto"
	"github.com/twoem/portal/internal/app/services"
	"github.com/twoem/portal/internal/middleware"
)

// FeeController handles the fee ledger endpoints.
type FeeController struct {
	feeService  *services.FeeService
	authService *services.AuthService
}

// NewFeeController creates a new FeeController
func NewFeeController(feeService *services.FeeService, authService *services.AuthService) *FeeController {
	return &FeeController{
		feeService:  feeService,
		authService: authService,
	}
}

// Log appends one fee ledger line for a student
// @Summary Log a fee entry
// @Description Appends a charge and/or payment line; the balance is derived, never edited.
// @Tags fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.LogFeeRequest true "Fee entry"
// @Success 201 {object} dto.APIResponse{data=models.Fee}
// @Failure 400 {object} dto.ErrorResponse "Invalid amounts"
// @Router /students/{id}/fees [post]
func (c *FeeController) Log(ctx *gin.Context) {
	studentID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.LogFeeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	actor, err := c.authService.Actor(ctx.Request.Context(), middleware.SubjectID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	fee := &models.Fee{
		Description:   req.Description,
		TotalAmount:   req.TotalAmount,
		AmountPaid:    req.AmountPaid,
		PaymentDate:   req.PaymentDate,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
	logged, err := c.feeService.LogFee(ctx.Request.Context(), studentID, fee, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(logged))
}

// Statement returns a student's ledger with the derived balance
// @Summary Get a student's fee statement
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.FeeStatementResponse}
// @Router /students/{id}/fees [get]
func (c *FeeController) Statement(ctx *gin.Context) {
	studentID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	statement, err := c.feeService.Statement(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(statement))
}

// MyStatement returns the authenticated student's own ledger
// @Summary Get the authenticated student's fee statement
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.FeeStatementResponse}
// @Router /me/fees [get]
func (c *FeeController) MyStatement(ctx *gin.Context) {
	statement, err := c.feeService.Statement(ctx.Request.Context(), middleware.SubjectID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(statement))
}
