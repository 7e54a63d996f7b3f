package services

import (
	"context"
	"fmt"

	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/app/models/dto"
	"github.com/twoem/portal/internal/pkg/apperrors"
	"github.com/twoem/portal/internal/pkg/logger"
)

// FeeStore is the slice of the fee repository the service needs.
type FeeStore interface {
	Create(ctx context.Context, fee *models.Fee) (int64, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Fee, error)
}

// StudentGetter resolves a student by ID.
type StudentGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Student, error)
}

// FeeService manages the append-only fee ledger.
type FeeService struct {
	fees     FeeStore
	students StudentGetter
}

// NewFeeService creates a new fee service instance
func NewFeeService(fees FeeStore, students StudentGetter) *FeeService {
	return &FeeService{
		fees:     fees,
		students: students,
	}
}

// LogFee appends one ledger line for a student. Amounts must be
// non-negative and at least one of charge or payment must be positive.
func (s *FeeService) LogFee(ctx context.Context, studentID int64, fee *models.Fee, actor models.Actor) (*models.Fee, error) {
	if fee.TotalAmount < 0 || fee.AmountPaid < 0 {
		return nil, fmt.Errorf("amounts must not be negative: %w", apperrors.ErrInvalidFeeAmount)
	}
	if fee.TotalAmount == 0 && fee.AmountPaid == 0 {
		return nil, fmt.Errorf("fee entry must carry a charge or a payment: %w", apperrors.ErrInvalidFeeAmount)
	}

	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return nil, err
	}

	fee.StudentID = studentID
	fee.LoggedByAdminID = &actor.ID
	fee.LoggedByAdminName = &actor.Name

	id, err := s.fees.Create(ctx, fee)
	if err != nil {
		return nil, fmt.Errorf("error logging fee: %w", err)
	}
	fee.ID = id

	logger.Info().Int64("studentID", studentID).Int64("feeID", id).
		Float64("totalAmount", fee.TotalAmount).Float64("amountPaid", fee.AmountPaid).
		Msg("Fee entry logged")
	return fee, nil
}

// Statement returns a student's full ledger with the derived balance.
func (s *FeeService) Statement(ctx context.Context, studentID int64) (*dto.FeeStatementResponse, error) {
	fees, err := s.fees.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return &dto.FeeStatementResponse{
		Fees:    fees,
		Balance: LedgerBalance(fees),
	}, nil
}

// LedgerBalance derives the outstanding balance from ledger lines: total
// charged minus total paid. Purely additive, so the order of the lines
// never matters.
func LedgerBalance(fees []*models.Fee) float64 {
	balance := 0.0
	for _, fee := range fees {
		balance += fee.Balance()
	}
	return balance
}
