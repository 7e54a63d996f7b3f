package models

import "time"

// Fee is one append-only ledger line per charge/payment event for a
// student. The outstanding balance is never stored; it is always derived
// as sum(total_amount) - sum(amount_paid) over all of a student's rows.
type Fee struct {
	ID                int64      `json:"id" db:"id"`
	StudentID         int64      `json:"studentId" db:"student_id"`
	Description       string     `json:"description" db:"description"`
	TotalAmount       float64    `json:"totalAmount" db:"total_amount"`
	AmountPaid        float64    `json:"amountPaid" db:"amount_paid"`
	PaymentDate       *time.Time `json:"paymentDate,omitempty" db:"payment_date"`
	PaymentMethod     *string    `json:"paymentMethod,omitempty" db:"payment_method"`
	Notes             *string    `json:"notes,omitempty" db:"notes"`
	LoggedByAdminID   *int64     `json:"loggedByAdminId,omitempty" db:"logged_by_admin_id"`
	LoggedByAdminName *string    `json:"loggedByAdminName,omitempty" db:"logged_by_admin_name"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
}

// Balance returns this single line's remaining amount.
func (f *Fee) Balance() float64 {
	return f.TotalAmount - f.AmountPaid
}
