package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/app/repositories"
	"github.com/twoem/portal/internal/pkg/apperrors"
	"github.com/twoem/portal/internal/pkg/auth"
	"github.com/twoem/portal/internal/pkg/logger"
)

// StudentCreator is the slice of the student store the registration
// service needs.
type StudentCreator interface {
	Create(ctx context.Context, student *models.Student) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
}

// RegistrationService issues registration numbers and registers students.
type RegistrationService struct {
	counters        repositories.CounterUnitOfWork
	students        StudentCreator
	prefix          string
	maxAttempts     int
	defaultPassword string
}

// NewRegistrationService creates a new registration service instance
func NewRegistrationService(counters repositories.CounterUnitOfWork, students StudentCreator, prefix string, maxAttempts int, defaultPassword string) *RegistrationService {
	return &RegistrationService{
		counters:        counters,
		students:        students,
		prefix:          prefix,
		maxAttempts:     maxAttempts,
		defaultPassword: defaultPassword,
	}
}

// AllocateRegistrationNumber issues the next registration number, e.g.
// TWOEM001. The read-increment-write runs inside one transaction with the
// counter row locked, so no two calls can ever return the same value. A
// defensive uniqueness re-check guards against a counter that has fallen
// out of sync with the students table; when it trips, the transaction
// rolls back and the allocation is retried up to the configured budget.
func (s *RegistrationService) AllocateRegistrationNumber(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		registrationNumber, err := s.tryAllocate(ctx)
		if err == nil {
			return registrationNumber, nil
		}
		if !errors.Is(err, apperrors.ErrAllocationConflict) {
			return "", err
		}
		logger.Warn().Int("attempt", attempt).Msg("Registration number collision, retrying allocation")
	}

	return "", apperrors.ErrAllocationExhausted
}

func (s *RegistrationService) tryAllocate(ctx context.Context) (string, error) {
	var registrationNumber string

	err := s.counters.WithinTransaction(ctx, func(ctx context.Context, tx repositories.CounterTx) error {
		value, found, err := tx.CounterValue(ctx, repositories.StudentRegSuffixCounter)
		if err != nil {
			return err
		}
		if !found {
			// Self-heal a missing counter row before incrementing.
			if err := tx.InitCounter(ctx, repositories.StudentRegSuffixCounter); err != nil {
				return err
			}
			value = 0
		}

		next := value + 1
		candidate := fmt.Sprintf("%s%03d", s.prefix, next)

		taken, err := tx.RegistrationNumberExists(ctx, candidate)
		if err != nil {
			return err
		}
		if taken {
			logger.Error().Str("registrationNumber", candidate).Msg("Generated registration number already exists; counter out of sync")
			return apperrors.ErrAllocationConflict
		}

		if err := tx.SetCounter(ctx, repositories.StudentRegSuffixCounter, next); err != nil {
			return err
		}

		registrationNumber = candidate
		return nil
	})
	if err != nil {
		return "", err
	}

	return registrationNumber, nil
}

// RegisterStudent allocates a registration number and creates the student
// with the institute's default password, forcing a change on first login.
func (s *RegistrationService) RegisterStudent(ctx context.Context, student *models.Student) (*models.Student, error) {
	registrationNumber, err := s.AllocateRegistrationNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("error allocating registration number: %w", err)
	}

	passwordHash, err := auth.HashPassword(s.defaultPassword)
	if err != nil {
		return nil, fmt.Errorf("error hashing default password: %w", err)
	}

	student.RegistrationNumber = registrationNumber
	student.PasswordHash = passwordHash
	student.RequiresPasswordChange = true
	student.IsProfileComplete = false
	student.IsActive = true

	id, err := s.students.Create(ctx, student)
	if err != nil {
		if errors.Is(err, repositories.ErrStudentEmailExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		if errors.Is(err, repositories.ErrRegistrationNumberExists) {
			// The constraint fired even after the in-transaction check; a
			// competing writer must have slipped in.
			return nil, apperrors.ErrAllocationConflict
		}
		return nil, fmt.Errorf("error creating student: %w", err)
	}
	student.ID = id

	logger.Info().Int64("studentID", id).Str("registrationNumber", registrationNumber).Msg("Student registered")
	return student, nil
}
