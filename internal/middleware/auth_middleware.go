package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twoem/portal/internal/app/models/dto"
	"github.com/twoem/portal/internal/pkg/auth"
)

// Context keys set by JWTAuth for downstream handlers.
const (
	ContextSubjectID          = "subjectID"
	ContextRegistrationNumber = "registrationNumber"
	ContextRole               = "role"
)

// JWTAuth validates the bearer token and stores the subject identity in
// the request context.
func JWTAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header is missing or malformed")
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			if err == auth.ErrExpiredToken {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Token is invalid")
			return
		}

		c.Set(ContextSubjectID, claims.SubjectID)
		c.Set(ContextRegistrationNumber, claims.RegistrationNumber)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RoleRequired rejects requests whose token does not carry the given role.
// It must run after JWTAuth.
func RoleRequired(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeForbidden, "You do not have access to this resource")))
			return
		}
		c.Next()
	}
}

// SubjectID returns the authenticated subject's ID from the context.
func SubjectID(c *gin.Context) int64 {
	value, ok := c.Get(ContextSubjectID)
	if !ok {
		return 0
	}
	id, _ := value.(int64)
	return id
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}
