package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twoem/portal/internal/app/models/dto"
	"github.com/twoem/portal/internal/app/services"
	"github.com/twoem/portal/internal/middleware"
	"github.com/twoem/portal/internal/pkg/auth"
)

// CertificateController handles certificate eligibility and issuance.
type CertificateController struct {
	certificateService *services.CertificateService
}

// NewCertificateController creates a new CertificateController
func NewCertificateController(certificateService *services.CertificateService) *CertificateController {
	return &CertificateController{certificateService: certificateService}
}

// MyStatus reports the certificate gate for each of the student's enrollments
// @Summary Get the authenticated student's certificate status
// @Description Eligibility is recomputed on every call from the current grade and fee balance.
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.CertificateStatusResponse}
// @Router /me/certificates [get]
func (c *CertificateController) MyStatus(ctx *gin.Context) {
	statuses, err := c.certificateService.StatusForStudent(ctx.Request.Context(), middleware.SubjectID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(statuses))
}

// Status reports the certificate gate for any student (admin view)
// @Summary Get a student's certificate status
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CertificateStatusResponse}
// @Router /students/{id}/certificates [get]
func (c *CertificateController) Status(ctx *gin.Context) {
	studentID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	statuses, err := c.certificateService.StatusForStudent(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(statuses))
}

// Issue records certificate issuance for an eligible enrollment
// @Summary Issue a certificate
// @Description First issue wins; repeat calls fail with CERT_002 and keep the original timestamp. Students may only issue for their own enrollments.
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param enrollmentId path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=models.Enrollment}
// @Failure 409 {object} dto.ErrorResponse "Not eligible or already issued"
// @Router /enrollments/{enrollmentId}/certificate [post]
func (c *CertificateController) Issue(ctx *gin.Context) {
	enrollmentID, ok := parseIDParam(ctx, "enrollmentId")
	if !ok {
		return
	}

	// Admins issue without an ownership check; students only for themselves.
	var ownerID int64
	if ctx.GetString(middleware.ContextRole) == auth.RoleStudent {
		ownerID = middleware.SubjectID(ctx)
	}

	enrollment, err := c.certificateService.IssueCertificate(ctx.Request.Context(), enrollmentID, ownerID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(enrollment))
}
