package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/app/models/dto"
	"github.com/twoem/portal/internal/app/repositories"
	"github.com/twoem/portal/internal/pkg/apperrors"
	"github.com/twoem/portal/internal/pkg/auth"
	"github.com/twoem/portal/internal/pkg/logger"
)

// AuthService handles admin and student authentication.
type AuthService struct {
	adminRepo   *repositories.AdminRepository
	studentRepo *repositories.StudentRepository
	jwtService  *auth.JWTService
}

// NewAuthService creates a new authentication service instance
func NewAuthService(adminRepo *repositories.AdminRepository, studentRepo *repositories.StudentRepository, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		adminRepo:   adminRepo,
		studentRepo: studentRepo,
		jwtService:  jwtService,
	}
}

// LoginAdmin authenticates an admin by email and password.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error fetching admin: %w", err)
	}

	if !auth.CheckPassword(admin.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateToken(admin.ID, "", auth.RoleAdmin)
	if err != nil {
		logger.Error().Err(err).Int64("adminID", admin.ID).Msg("Error generating admin token")
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	logger.Info().Int64("adminID", admin.ID).Msg("Admin logged in")
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	}, nil
}

// LoginStudent authenticates a student by registration number and
// password. Deactivated accounts are rejected even with a correct
// password. The response flags whether a password change is still owed.
func (s *AuthService) LoginStudent(ctx context.Context, registrationNumber, password string) (*dto.TokenResponse, error) {
	student, err := s.studentRepo.GetByRegistrationNumber(ctx, registrationNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error fetching student: %w", err)
	}

	if !auth.CheckPassword(student.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !student.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	token, expiresIn, err := s.jwtService.GenerateToken(student.ID, student.RegistrationNumber, auth.RoleStudent)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", student.ID).Msg("Error generating student token")
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	if err := s.studentRepo.StampLastLogin(ctx, student.ID); err != nil {
		// Login still succeeds; the stamp is bookkeeping.
		logger.Warn().Err(err).Int64("studentID", student.ID).Msg("Failed to stamp last login")
	}

	logger.Info().Int64("studentID", student.ID).Str("registrationNumber", student.RegistrationNumber).Msg("Student logged in")
	return &dto.TokenResponse{
		AccessToken:            token,
		TokenType:              "Bearer",
		ExpiresIn:              expiresIn,
		RequiresPasswordChange: student.RequiresPasswordChange,
	}, nil
}

// Actor resolves an admin ID into the audit identity stamped onto marks
// and fee entries.
func (s *AuthService) Actor(ctx context.Context, adminID int64) (models.Actor, error) {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return models.Actor{}, err
	}
	return models.Actor{ID: admin.ID, Name: admin.Name}, nil
}

// ChangeStudentPassword verifies the current password and stores a new
// hash, clearing the forced-change flag.
func (s *AuthService) ChangeStudentPassword(ctx context.Context, studentID int64, currentPassword, newPassword string) error {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(student.PasswordHash, currentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing new password: %w", err)
	}

	if err := s.studentRepo.UpdatePassword(ctx, studentID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	logger.Info().Int64("studentID", studentID).Msg("Student password changed")
	return nil
}
