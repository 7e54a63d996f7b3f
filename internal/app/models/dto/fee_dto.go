package dto

import (
	"time"

	"github.com/twoem/portal/internal/app/models"
)

// LogFeeRequest represents an admin appending one fee ledger line.
type LogFeeRequest struct {
	Description   string     `json:"description" binding:"required"`
	TotalAmount   float64    `json:"totalAmount" binding:"min=0"`
	AmountPaid    float64    `json:"amountPaid" binding:"min=0"`
	PaymentDate   *time.Time `json:"paymentDate,omitempty"`
	PaymentMethod *string    `json:"paymentMethod,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// FeeStatementResponse is a student's full ledger plus derived balance.
type FeeStatementResponse struct {
	Fees    []*models.Fee `json:"fees"`
	Balance float64       `json:"balance"`
}

// CertificateStatusResponse reports one enrollment's certificate gate.
type CertificateStatusResponse struct {
	EnrollmentID int64      `json:"enrollmentId"`
	CourseName   string     `json:"courseName,omitempty"`
	FinalGrade   *string    `json:"finalGrade,omitempty"`
	Eligible     bool       `json:"eligible"`
	IssuedAt     *time.Time `json:"issuedAt,omitempty"`
}
