package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/twoem/portal/internal/app/models/dto"
	"github.com/twoem/portal/internal/app/repositories"
	"github.com/twoem/portal/internal/pkg/apperrors"
	"github.com/twoem/portal/internal/pkg/logger"
)

// HandleAPIError maps service and repository errors onto HTTP status
// codes and the standard error envelope. Unrecognized errors become an
// opaque 500 so internals never leak to clients.
func HandleAPIError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Request validation failed")
		if len(validationErrs) > 0 {
			detail = detail.WithField(validationErrs[0].Field())
		}
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token has expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token is invalid")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		respond(c, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "This account has been deactivated")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respond(c, http.StatusForbidden, dto.ErrorCodeForbidden, "You do not have access to this resource")

	case errors.Is(err, apperrors.ErrInvalidMark), errors.Is(err, repositories.ErrMarkOutOfRange):
		respond(c, http.StatusBadRequest, dto.ErrorCodeInvalidMark, "Marks must be between 0 and 100")
	case errors.Is(err, apperrors.ErrUnitNotInCourse):
		respond(c, http.StatusUnprocessableEntity, dto.ErrorCodeValidationFailed, "Unit does not belong to the enrollment's course")
	case errors.Is(err, apperrors.ErrInvalidFeeAmount):
		respond(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Fee amounts must be non-negative and at least one must be greater than zero")

	case errors.Is(err, apperrors.ErrNotEligible):
		respond(c, http.StatusConflict, dto.ErrorCodeNotEligible, "Certificate requirements are not met")
	case errors.Is(err, apperrors.ErrAlreadyIssued):
		respond(c, http.StatusConflict, dto.ErrorCodeAlreadyIssued, "Certificate has already been issued")

	case errors.Is(err, apperrors.ErrAllocationConflict), errors.Is(err, apperrors.ErrAllocationExhausted):
		respond(c, http.StatusServiceUnavailable, dto.ErrorCodeAllocationFailed, "Could not allocate a registration number, please retry")

	case errors.Is(err, apperrors.ErrEmailAlreadyExists),
		errors.Is(err, repositories.ErrStudentEmailExists),
		errors.Is(err, repositories.ErrAlreadyEnrolled),
		errors.Is(err, repositories.ErrUnitAlreadyExists),
		errors.Is(err, repositories.ErrRegistrationNumberExists):
		respond(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, err.Error())

	case errors.Is(err, repositories.ErrNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound),
		errors.Is(err, apperrors.ErrStudentNotFound),
		errors.Is(err, apperrors.ErrCourseNotFound),
		errors.Is(err, apperrors.ErrEnrollmentNotFound):
		respond(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found")

	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		respond(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, err.Error())

	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
		respond(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "An unexpected error occurred")
	}
}

func respond(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}
