package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/app/repositories"
	"github.com/twoem/portal/internal/pkg/apperrors"
)

type fakeEnrollmentStore struct {
	enrollments map[int64]*models.Enrollment
	issueCalls  int
}

func (f *fakeEnrollmentStore) GetByID(_ context.Context, id int64) (*models.Enrollment, error) {
	enrollment, ok := f.enrollments[id]
	if !ok {
		return nil, repositories.ErrEnrollmentNotFound
	}
	e := *enrollment
	return &e, nil
}

func (f *fakeEnrollmentStore) ListByStudent(_ context.Context, studentID int64) ([]*models.Enrollment, error) {
	out := []*models.Enrollment{}
	for _, enrollment := range f.enrollments {
		if enrollment.StudentID == studentID {
			out = append(out, enrollment)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentStore) MarkCertificateIssued(_ context.Context, enrollmentID int64, issuedAt time.Time) (bool, error) {
	f.issueCalls++
	enrollment, ok := f.enrollments[enrollmentID]
	if !ok || enrollment.CertificateIssuedAt != nil {
		return false, nil
	}
	enrollment.CertificateIssuedAt = &issuedAt
	return true, nil
}

type fakeBalanceProvider struct {
	balances map[int64]float64
}

func (f *fakeBalanceProvider) OutstandingBalance(_ context.Context, studentID int64) (float64, error) {
	return f.balances[studentID], nil
}

func gradePtr(g models.FinalGrade) *models.FinalGrade { return &g }

func TestIsEligible(t *testing.T) {
	tests := []struct {
		name    string
		grade   *models.FinalGrade
		balance float64
		want    bool
	}{
		{"pass and zero balance", gradePtr(models.GradePass), 0, true},
		{"pass and credit balance", gradePtr(models.GradePass), -250, true},
		{"pass but one cent owed", gradePtr(models.GradePass), 0.01, false},
		{"fail with clear ledger", gradePtr(models.GradeFail), 0, false},
		{"fail with credit balance", gradePtr(models.GradeFail), -100, false},
		{"ungraded with clear ledger", nil, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			enrollments := &fakeEnrollmentStore{enrollments: map[int64]*models.Enrollment{
				10: {ID: 10, StudentID: 1, FinalGrade: tc.grade},
			}}
			balances := &fakeBalanceProvider{balances: map[int64]float64{1: tc.balance}}
			service := NewCertificateService(enrollments, balances)

			got, err := service.IsEligible(context.Background(), 10)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("eligible = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIssueCertificate(t *testing.T) {
	enrollments := &fakeEnrollmentStore{enrollments: map[int64]*models.Enrollment{
		10: {ID: 10, StudentID: 1, FinalGrade: gradePtr(models.GradePass)},
	}}
	balances := &fakeBalanceProvider{balances: map[int64]float64{1: 0}}
	service := NewCertificateService(enrollments, balances)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	issued, err := service.IssueCertificate(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issued.CertificateIssuedAt == nil || !issued.CertificateIssuedAt.Equal(fixed) {
		t.Errorf("issuedAt = %v, want %v", issued.CertificateIssuedAt, fixed)
	}

	// Second issue fails and keeps the original timestamp.
	_, err = service.IssueCertificate(context.Background(), 10, 1)
	if !errors.Is(err, apperrors.ErrAlreadyIssued) {
		t.Fatalf("second issue error = %v, want ErrAlreadyIssued", err)
	}
	if got := enrollments.enrollments[10].CertificateIssuedAt; got == nil || !got.Equal(fixed) {
		t.Errorf("stored issuedAt = %v, want untouched %v", got, fixed)
	}
}

func TestIssueCertificateNotEligible(t *testing.T) {
	tests := []struct {
		name    string
		grade   *models.FinalGrade
		balance float64
	}{
		{"outstanding balance", gradePtr(models.GradePass), 500},
		{"fail grade", gradePtr(models.GradeFail), 0},
		{"ungraded", nil, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			enrollments := &fakeEnrollmentStore{enrollments: map[int64]*models.Enrollment{
				10: {ID: 10, StudentID: 1, FinalGrade: tc.grade},
			}}
			balances := &fakeBalanceProvider{balances: map[int64]float64{1: tc.balance}}
			service := NewCertificateService(enrollments, balances)

			_, err := service.IssueCertificate(context.Background(), 10, 1)
			if !errors.Is(err, apperrors.ErrNotEligible) {
				t.Fatalf("error = %v, want ErrNotEligible", err)
			}
			if enrollments.issueCalls != 0 {
				t.Error("ineligible issue should never reach the store")
			}
		})
	}
}

func TestIssueCertificateOwnership(t *testing.T) {
	enrollments := &fakeEnrollmentStore{enrollments: map[int64]*models.Enrollment{
		10: {ID: 10, StudentID: 1, FinalGrade: gradePtr(models.GradePass)},
	}}
	balances := &fakeBalanceProvider{balances: map[int64]float64{1: 0}}
	service := NewCertificateService(enrollments, balances)

	if _, err := service.IssueCertificate(context.Background(), 10, 2); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("error = %v, want ErrPermissionDenied", err)
	}

	// ownerID zero means an admin acting without an ownership check.
	if _, err := service.IssueCertificate(context.Background(), 10, 0); err != nil {
		t.Fatalf("admin issue: unexpected error: %v", err)
	}
}

// racingEnrollmentStore simulates another issuer winning between the
// eligibility read and the conditional update.
type racingEnrollmentStore struct {
	*fakeEnrollmentStore
}

func (r *racingEnrollmentStore) MarkCertificateIssued(_ context.Context, _ int64, _ time.Time) (bool, error) {
	return false, nil
}

func TestIssueCertificateLosesRace(t *testing.T) {
	enrollments := &racingEnrollmentStore{fakeEnrollmentStore: &fakeEnrollmentStore{
		enrollments: map[int64]*models.Enrollment{
			10: {ID: 10, StudentID: 1, FinalGrade: gradePtr(models.GradePass)},
		},
	}}
	balances := &fakeBalanceProvider{balances: map[int64]float64{1: 0}}
	service := NewCertificateService(enrollments, balances)

	_, err := service.IssueCertificate(context.Background(), 10, 1)
	if !errors.Is(err, apperrors.ErrAlreadyIssued) {
		t.Fatalf("error = %v, want ErrAlreadyIssued on lost race", err)
	}
}

func TestStatusForStudent(t *testing.T) {
	passGrade := models.GradePass
	issued := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	enrollments := &fakeEnrollmentStore{enrollments: map[int64]*models.Enrollment{
		10: {ID: 10, StudentID: 1, FinalGrade: &passGrade, CertificateIssuedAt: &issued,
			Course: &models.Course{Name: "Computer Packages"}},
		11: {ID: 11, StudentID: 1},
	}}
	balances := &fakeBalanceProvider{balances: map[int64]float64{1: 0}}
	service := NewCertificateService(enrollments, balances)

	statuses, err := service.StatusForStudent(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("statuses = %d, want 2", len(statuses))
	}

	byID := map[int64]int{}
	for i, status := range statuses {
		byID[status.EnrollmentID] = i
	}
	graded := statuses[byID[10]]
	if !graded.Eligible || graded.IssuedAt == nil || graded.CourseName != "Computer Packages" {
		t.Errorf("graded status = %+v, want eligible with issue date and course name", graded)
	}
	if ungraded := statuses[byID[11]]; ungraded.Eligible {
		t.Error("ungraded enrollment should not be eligible")
	}
}
