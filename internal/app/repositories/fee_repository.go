package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/pkg/logger"
)

// FeeRepository handles the append-only fee ledger. Rows are never
// mutated after insert; the balance is always derived from the full set.
type FeeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFeeRepository creates a new FeeRepository
func NewFeeRepository(db *pgxpool.Pool) *FeeRepository {
	return &FeeRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create appends one fee ledger line for a student.
func (r *FeeRepository) Create(ctx context.Context, fee *models.Fee) (int64, error) {
	sql, args, err := r.sb.Insert("fees").
		Columns("student_id", "description", "total_amount", "amount_paid",
			"payment_date", "payment_method", "notes", "logged_by_admin_id", "logged_by_admin_name").
		Values(fee.StudentID, fee.Description, fee.TotalAmount, fee.AmountPaid,
			fee.PaymentDate, fee.PaymentMethod, fee.Notes, fee.LoggedByAdminID, fee.LoggedByAdminName).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create fee SQL")
		return 0, fmt.Errorf("failed to build create fee query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing create fee query")
		return 0, fmt.Errorf("error creating fee: %w", err)
	}

	return id, nil
}

// ListByStudent retrieves a student's full ledger, newest first.
func (r *FeeRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Fee, error) {
	sql, args, err := r.sb.Select("id", "student_id", "description", "total_amount", "amount_paid",
		"payment_date", "payment_method", "notes", "logged_by_admin_id", "logged_by_admin_name", "created_at").
		From("fees").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("payment_date DESC NULLS LAST", "created_at DESC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list fees SQL")
		return nil, fmt.Errorf("failed to build list fees query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing list fees query")
		return nil, fmt.Errorf("error querying fees: %w", err)
	}
	defer rows.Close()

	fees := []*models.Fee{}
	for rows.Next() {
		fee := &models.Fee{}
		err := rows.Scan(&fee.ID, &fee.StudentID, &fee.Description, &fee.TotalAmount, &fee.AmountPaid,
			&fee.PaymentDate, &fee.PaymentMethod, &fee.Notes, &fee.LoggedByAdminID, &fee.LoggedByAdminName, &fee.CreatedAt)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning fee row")
			return nil, fmt.Errorf("error scanning fee row: %w", err)
		}
		fees = append(fees, fee)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating fee rows")
		return nil, fmt.Errorf("error iterating fee rows: %w", err)
	}

	return fees, nil
}

// OutstandingBalance derives the student's balance from the whole ledger:
// sum of charges minus sum of payments, missing amounts counted as zero.
// Never cached; each call recomputes from the source rows.
func (r *FeeRepository) OutstandingBalance(ctx context.Context, studentID int64) (float64, error) {
	sql, args, err := r.sb.Select("COALESCE(SUM(total_amount), 0) - COALESCE(SUM(amount_paid), 0)").
		From("fees").
		Where(squirrel.Eq{"student_id": studentID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building balance SQL")
		return 0, fmt.Errorf("failed to build balance query: %w", err)
	}

	var balance float64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&balance); err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error computing fee balance")
		return 0, fmt.Errorf("error computing fee balance: %w", err)
	}

	return balance, nil
}
