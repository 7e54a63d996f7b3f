package services

import (
	"context"
	"errors"
	"testing"

	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/app/repositories"
	"github.com/twoem/portal/internal/pkg/apperrors"
)

type fakeFeeStore struct {
	fees []*models.Fee
}

func (f *fakeFeeStore) Create(_ context.Context, fee *models.Fee) (int64, error) {
	f.fees = append(f.fees, fee)
	return int64(len(f.fees)), nil
}

func (f *fakeFeeStore) ListByStudent(_ context.Context, studentID int64) ([]*models.Fee, error) {
	out := []*models.Fee{}
	for _, fee := range f.fees {
		if fee.StudentID == studentID {
			out = append(out, fee)
		}
	}
	return out, nil
}

type fakeStudentGetter struct {
	students map[int64]*models.Student
}

func (f *fakeStudentGetter) GetByID(_ context.Context, id int64) (*models.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, repositories.ErrStudentNotFound
	}
	return student, nil
}

func newFeeFixture() (*FeeService, *fakeFeeStore) {
	store := &fakeFeeStore{}
	students := &fakeStudentGetter{students: map[int64]*models.Student{
		1: {ID: 1, RegistrationNumber: "TWOEM001"},
	}}
	return NewFeeService(store, students), store
}

func TestLogFee(t *testing.T) {
	service, store := newFeeFixture()
	actor := models.Actor{ID: 7, Name: "Admin User"}

	fee, err := service.LogFee(context.Background(), 1, &models.Fee{
		Description: "Course fee",
		TotalAmount: 5000,
		AmountPaid:  2000,
	}, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fee.ID == 0 {
		t.Error("fee ID should be set from the store")
	}
	if fee.StudentID != 1 {
		t.Errorf("studentID = %d, want 1", fee.StudentID)
	}
	if fee.LoggedByAdminID == nil || *fee.LoggedByAdminID != 7 {
		t.Errorf("loggedByAdminID = %v, want 7", fee.LoggedByAdminID)
	}
	if len(store.fees) != 1 {
		t.Fatalf("stored fees = %d, want 1", len(store.fees))
	}
}

func TestLogFeeInvalidAmounts(t *testing.T) {
	service, store := newFeeFixture()

	tests := []struct {
		name  string
		total float64
		paid  float64
	}{
		{"negative charge", -100, 0},
		{"negative payment", 100, -1},
		{"both zero", 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.LogFee(context.Background(), 1, &models.Fee{
				Description: "bad entry",
				TotalAmount: tc.total,
				AmountPaid:  tc.paid,
			}, models.Actor{ID: 7})
			if !errors.Is(err, apperrors.ErrInvalidFeeAmount) {
				t.Fatalf("error = %v, want ErrInvalidFeeAmount", err)
			}
		})
	}
	if len(store.fees) != 0 {
		t.Errorf("stored fees = %d, want 0 after rejected entries", len(store.fees))
	}
}

func TestLogFeeUnknownStudent(t *testing.T) {
	service, _ := newFeeFixture()

	_, err := service.LogFee(context.Background(), 404, &models.Fee{
		Description: "Course fee",
		TotalAmount: 100,
	}, models.Actor{ID: 7})
	if !errors.Is(err, repositories.ErrStudentNotFound) {
		t.Fatalf("error = %v, want ErrStudentNotFound", err)
	}
}

func TestStatement(t *testing.T) {
	service, store := newFeeFixture()
	store.fees = []*models.Fee{
		{StudentID: 1, TotalAmount: 5000, AmountPaid: 2000},
		{StudentID: 1, TotalAmount: 0, AmountPaid: 1500},
		{StudentID: 2, TotalAmount: 9999, AmountPaid: 0},
	}

	statement, err := service.Statement(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statement.Fees) != 2 {
		t.Fatalf("fees = %d, want 2 (other students excluded)", len(statement.Fees))
	}
	if statement.Balance != 1500 {
		t.Errorf("balance = %v, want 1500", statement.Balance)
	}
}

func TestLedgerBalanceOrderIndependent(t *testing.T) {
	fees := []*models.Fee{
		{TotalAmount: 5000, AmountPaid: 0},
		{TotalAmount: 0, AmountPaid: 2000},
		{TotalAmount: 1200, AmountPaid: 1200},
		{TotalAmount: 0, AmountPaid: 3500},
	}
	want := -500.0

	if got := LedgerBalance(fees); got != want {
		t.Fatalf("balance = %v, want %v", got, want)
	}

	reversed := make([]*models.Fee, len(fees))
	for i, fee := range fees {
		reversed[len(fees)-1-i] = fee
	}
	if got := LedgerBalance(reversed); got != want {
		t.Errorf("reversed balance = %v, want %v", got, want)
	}

	if got := LedgerBalance(nil); got != 0 {
		t.Errorf("empty ledger balance = %v, want 0", got)
	}
}
