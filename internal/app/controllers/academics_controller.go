package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twoem/portal/internal/app/models/dto"
	"github.com/twoem/portal/internal/app/services"
	"github.com/twoem/portal/internal/middleware"
)

// AcademicsController handles marks entry and result views.
type AcademicsController struct {
	academicsService *services.AcademicsService
	authService      *services.AuthService
}

// NewAcademicsController creates a new AcademicsController
func NewAcademicsController(academicsService *services.AcademicsService, authService *services.AuthService) *AcademicsController {
	return &AcademicsController{
		academicsService: academicsService,
		authService:      authService,
	}
}

// Get returns the marks-entry view for one enrollment
// @Summary Get academics for an enrollment
// @Description Returns every catalog unit with its recorded mark, the exam scores and the final grade.
// @Tags academics
// @Produce json
// @Security BearerAuth
// @Param enrollmentId path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=dto.AcademicsResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /enrollments/{enrollmentId}/academics [get]
func (c *AcademicsController) Get(ctx *gin.Context) {
	enrollmentID, ok := parseIDParam(ctx, "enrollmentId")
	if !ok {
		return
	}

	view, err := c.academicsService.GetAcademics(ctx.Request.Context(), enrollmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(view))
}

// Save applies one grade-save batch for an enrollment
// @Summary Save academic marks
// @Description Upserts and clears unit marks, stores the exam scores, then recomputes the average and the final grade. All or nothing.
// @Tags academics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param enrollmentId path int true "Enrollment ID"
// @Param request body dto.SaveAcademicMarksRequest true "Marks batch"
// @Success 200 {object} dto.APIResponse{data=dto.AcademicsResponse}
// @Failure 400 {object} dto.ErrorResponse "Mark out of range"
// @Failure 422 {object} dto.ErrorResponse "Unit outside the course"
// @Router /enrollments/{enrollmentId}/academics [put]
func (c *AcademicsController) Save(ctx *gin.Context) {
	enrollmentID, ok := parseIDParam(ctx, "enrollmentId")
	if !ok {
		return
	}

	var req dto.SaveAcademicMarksRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	actor, err := c.authService.Actor(ctx.Request.Context(), middleware.SubjectID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.academicsService.SaveAcademicMarks(ctx.Request.Context(), enrollmentID, req.Marks(), req.Theory, req.Practical, actor); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	view, err := c.academicsService.GetAcademics(ctx.Request.Context(), enrollmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(view))
}

// My returns the authenticated student's results
// @Summary Get the authenticated student's academics
// @Tags academics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StudentAcademicsResponse}
// @Router /me/academics [get]
func (c *AcademicsController) My(ctx *gin.Context) {
	view, err := c.academicsService.StudentAcademics(ctx.Request.Context(), middleware.SubjectID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(view))
}
