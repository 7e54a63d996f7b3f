package services

import (
	"context"
	"fmt"
	"time"

	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/app/models/dto"
	"github.com/twoem/portal/internal/pkg/apperrors"
	"github.com/twoem/portal/internal/pkg/logger"
)

// EnrollmentStore is the slice of the enrollment repository the
// certificate service needs.
type EnrollmentStore interface {
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error)
	MarkCertificateIssued(ctx context.Context, enrollmentID int64, issuedAt time.Time) (bool, error)
}

// BalanceProvider derives a student's outstanding fee balance.
type BalanceProvider interface {
	OutstandingBalance(ctx context.Context, studentID int64) (float64, error)
}

// CertificateService gates certificate issuance on the two-part
// eligibility rule: a Pass final grade and a fully settled fee ledger.
// Eligibility is always recomputed at decision time, never cached.
type CertificateService struct {
	enrollments EnrollmentStore
	balances    BalanceProvider
	now         func() time.Time
}

// NewCertificateService creates a new certificate service instance
func NewCertificateService(enrollments EnrollmentStore, balances BalanceProvider) *CertificateService {
	return &CertificateService{
		enrollments: enrollments,
		balances:    balances,
		now:         time.Now,
	}
}

func (s *CertificateService) eligible(ctx context.Context, enrollment *models.Enrollment) (bool, error) {
	if enrollment.FinalGrade == nil || *enrollment.FinalGrade != models.GradePass {
		return false, nil
	}

	balance, err := s.balances.OutstandingBalance(ctx, enrollment.StudentID)
	if err != nil {
		return false, err
	}

	// Zero or credit both settle the ledger; any positive cent blocks.
	return balance <= 0, nil
}

// IsEligible recomputes the eligibility gate for one enrollment.
func (s *CertificateService) IsEligible(ctx context.Context, enrollmentID int64) (bool, error) {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return false, err
	}
	return s.eligible(ctx, enrollment)
}

// IssueCertificate records the issuance for an eligible enrollment. When
// ownerID is non-zero the enrollment must belong to that student. Issuing
// twice fails with ErrAlreadyIssued and leaves the first timestamp intact.
func (s *CertificateService) IssueCertificate(ctx context.Context, enrollmentID, ownerID int64) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if ownerID != 0 && enrollment.StudentID != ownerID {
		return nil, apperrors.ErrPermissionDenied
	}
	if enrollment.CertificateIssuedAt != nil {
		return nil, apperrors.ErrAlreadyIssued
	}

	eligible, err := s.eligible(ctx, enrollment)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, apperrors.ErrNotEligible
	}

	issuedAt := s.now()
	issued, err := s.enrollments.MarkCertificateIssued(ctx, enrollmentID, issuedAt)
	if err != nil {
		return nil, fmt.Errorf("error marking certificate issued: %w", err)
	}
	if !issued {
		// A concurrent call won the conditional update.
		return nil, apperrors.ErrAlreadyIssued
	}

	enrollment.CertificateIssuedAt = &issuedAt
	logger.Info().Int64("enrollmentID", enrollmentID).Int64("studentID", enrollment.StudentID).Msg("Certificate issued")
	return enrollment, nil
}

// StatusForStudent reports the certificate gate for every enrollment a
// student holds.
func (s *CertificateService) StatusForStudent(ctx context.Context, studentID int64) ([]dto.CertificateStatusResponse, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	statuses := []dto.CertificateStatusResponse{}
	for _, enrollment := range enrollments {
		eligible, err := s.eligible(ctx, enrollment)
		if err != nil {
			return nil, err
		}

		status := dto.CertificateStatusResponse{
			EnrollmentID: enrollment.ID,
			Eligible:     eligible,
			IssuedAt:     enrollment.CertificateIssuedAt,
		}
		if enrollment.Course != nil {
			status.CourseName = enrollment.Course.Name
		}
		if enrollment.FinalGrade != nil {
			grade := string(*enrollment.FinalGrade)
			status.FinalGrade = &grade
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}
