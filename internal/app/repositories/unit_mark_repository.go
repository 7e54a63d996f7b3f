package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/pkg/logger"
)

// UnitMarkRepository handles read access to stored unit marks. All writes
// go through the grade-save transaction in AcademicsRepository so a reader
// never observes a partially applied batch.
type UnitMarkRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUnitMarkRepository creates a new UnitMarkRepository
func NewUnitMarkRepository(db *pgxpool.Pool) *UnitMarkRepository {
	return &UnitMarkRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListByEnrollment retrieves all stored marks for an enrollment.
func (r *UnitMarkRepository) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]*models.UnitMark, error) {
	sql, args, err := r.sb.Select("id", "enrollment_id", "unit_id", "marks",
		"logged_by_admin_id", "logged_by_admin_name", "updated_at").
		From("student_unit_marks").
		Where(squirrel.Eq{"enrollment_id": enrollmentID}).
		OrderBy("unit_id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list unit marks SQL")
		return nil, fmt.Errorf("failed to build list unit marks query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("enrollmentID", enrollmentID).Msg("Error executing list unit marks query")
		return nil, fmt.Errorf("error querying unit marks: %w", err)
	}
	defer rows.Close()

	marks := []*models.UnitMark{}
	for rows.Next() {
		mark := &models.UnitMark{}
		err := rows.Scan(&mark.ID, &mark.EnrollmentID, &mark.UnitID, &mark.Marks,
			&mark.LoggedByAdminID, &mark.LoggedByAdminName, &mark.UpdatedAt)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning unit mark row")
			return nil, fmt.Errorf("error scanning unit mark row: %w", err)
		}
		marks = append(marks, mark)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating unit mark rows")
		return nil, fmt.Errorf("error iterating unit mark rows: %w", err)
	}

	return marks, nil
}

// MapByEnrollment returns recorded marks keyed by unit ID.
func (r *UnitMarkRepository) MapByEnrollment(ctx context.Context, enrollmentID int64) (map[int64]int, error) {
	marks, err := r.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	byUnit := make(map[int64]int, len(marks))
	for _, mark := range marks {
		byUnit[mark.UnitID] = mark.Marks
	}
	return byUnit, nil
}
