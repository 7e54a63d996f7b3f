package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/db"
	"github.com/twoem/portal/internal/pkg/dberrors"
	"github.com/twoem/portal/internal/pkg/logger"
)

// ErrMarkOutOfRange surfaces the database CHECK on stored marks. Callers
// validate before writing, so this firing means a validation gap.
var ErrMarkOutOfRange = errors.New("marks value violates the allowed range")

// AcademicsTx is the set of operations available inside one grade-save
// transaction. The whole batch (mark upserts/deletes, average
// recomputation, result write) commits or rolls back as a unit, so a
// concurrent reader never observes a partially updated enrollment.
type AcademicsTx interface {
	EnrollmentByID(ctx context.Context, id int64) (*models.Enrollment, error)
	CourseUnits(ctx context.Context, courseID int64) ([]models.Unit, error)
	UpsertUnitMark(ctx context.Context, enrollmentID, unitID int64, marks int, actor models.Actor) error
	DeleteUnitMark(ctx context.Context, enrollmentID, unitID int64) error
	UnitMarksByEnrollment(ctx context.Context, enrollmentID int64) (map[int64]int, error)
	UpdateAcademicResults(ctx context.Context, enrollmentID int64, average *float64, theory, practical *int, grade *models.FinalGrade) error
}

// AcademicsUnitOfWork runs a grade-save batch inside a single transaction.
type AcademicsUnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx AcademicsTx) error) error
}

// AcademicsRepository is the PostgreSQL AcademicsUnitOfWork.
type AcademicsRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAcademicsRepository creates a new AcademicsRepository
func NewAcademicsRepository(pool *pgxpool.Pool) *AcademicsRepository {
	return &AcademicsRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithinTransaction implements AcademicsUnitOfWork.
func (r *AcademicsRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx AcademicsTx) error) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &academicsTx{tx: tx, sb: r.sb})
	})
}

// academicsTx binds grade-save operations to one open transaction.
type academicsTx struct {
	tx pgx.Tx
	sb squirrel.StatementBuilderType
}

func (t *academicsTx) EnrollmentByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	// Locked for the duration of the batch so two concurrent saves for the
	// same enrollment serialize.
	sql, args, err := t.sb.Select(enrollmentColumns).
		From("enrollments").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building enrollment lock SQL")
		return nil, fmt.Errorf("failed to build enrollment lock query: %w", err)
	}

	enrollment, err := scanEnrollment(t.tx.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("enrollmentID", id).Msg("Error scanning enrollment row in transaction")
		return nil, fmt.Errorf("error getting enrollment in transaction: %w", err)
	}

	return enrollment, nil
}

func (t *academicsTx) CourseUnits(ctx context.Context, courseID int64) ([]models.Unit, error) {
	sql, args, err := t.sb.Select("id", "course_id", "unit_name", "description").
		From("units").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building course units SQL")
		return nil, fmt.Errorf("failed to build course units query: %w", err)
	}

	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error querying course units in transaction")
		return nil, fmt.Errorf("error querying course units: %w", err)
	}
	defer rows.Close()

	units := []models.Unit{}
	for rows.Next() {
		unit := models.Unit{}
		if err := rows.Scan(&unit.ID, &unit.CourseID, &unit.Name, &unit.Description); err != nil {
			logger.Error().Err(err).Msg("Error scanning unit row in transaction")
			return nil, fmt.Errorf("error scanning unit row: %w", err)
		}
		units = append(units, unit)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating unit rows in transaction")
		return nil, fmt.Errorf("error iterating unit rows: %w", err)
	}

	return units, nil
}

func (t *academicsTx) UpsertUnitMark(ctx context.Context, enrollmentID, unitID int64, marks int, actor models.Actor) error {
	sql, args, err := t.sb.Insert("student_unit_marks").
		Columns("enrollment_id", "unit_id", "marks", "logged_by_admin_id", "logged_by_admin_name").
		Values(enrollmentID, unitID, marks, actor.ID, actor.Name).
		Suffix("ON CONFLICT (enrollment_id, unit_id) DO UPDATE SET " +
			"marks = EXCLUDED.marks, logged_by_admin_id = EXCLUDED.logged_by_admin_id, " +
			"logged_by_admin_name = EXCLUDED.logged_by_admin_name, updated_at = NOW()").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert unit mark SQL")
		return fmt.Errorf("failed to build upsert unit mark query: %w", err)
	}

	if _, err := t.tx.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsCheckViolationError(err) {
			return ErrMarkOutOfRange
		}
		logger.Error().Err(err).Int64("enrollmentID", enrollmentID).Int64("unitID", unitID).Msg("Error upserting unit mark")
		return fmt.Errorf("error upserting unit mark: %w", err)
	}

	return nil
}

func (t *academicsTx) DeleteUnitMark(ctx context.Context, enrollmentID, unitID int64) error {
	// An ungraded unit has no row at all; deleting a row that does not
	// exist is a no-op.
	sql, args, err := t.sb.Delete("student_unit_marks").
		Where(squirrel.Eq{"enrollment_id": enrollmentID, "unit_id": unitID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete unit mark SQL")
		return fmt.Errorf("failed to build delete unit mark query: %w", err)
	}

	if _, err := t.tx.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("enrollmentID", enrollmentID).Int64("unitID", unitID).Msg("Error deleting unit mark")
		return fmt.Errorf("error deleting unit mark: %w", err)
	}

	return nil
}

func (t *academicsTx) UnitMarksByEnrollment(ctx context.Context, enrollmentID int64) (map[int64]int, error) {
	sql, args, err := t.sb.Select("unit_id", "marks").
		From("student_unit_marks").
		Where(squirrel.Eq{"enrollment_id": enrollmentID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building unit marks by enrollment SQL")
		return nil, fmt.Errorf("failed to build unit marks query: %w", err)
	}

	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("enrollmentID", enrollmentID).Msg("Error querying unit marks in transaction")
		return nil, fmt.Errorf("error querying unit marks: %w", err)
	}
	defer rows.Close()

	marks := map[int64]int{}
	for rows.Next() {
		var unitID int64
		var mark int
		if err := rows.Scan(&unitID, &mark); err != nil {
			logger.Error().Err(err).Msg("Error scanning unit mark row in transaction")
			return nil, fmt.Errorf("error scanning unit mark row: %w", err)
		}
		marks[unitID] = mark
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating unit mark rows in transaction")
		return nil, fmt.Errorf("error iterating unit mark rows: %w", err)
	}

	return marks, nil
}

func (t *academicsTx) UpdateAcademicResults(ctx context.Context, enrollmentID int64, average *float64, theory, practical *int, grade *models.FinalGrade) error {
	// The four result fields always move together; a nil grade clears any
	// previously stored one rather than leaving it stale.
	var gradeValue *string
	if grade != nil {
		g := string(*grade)
		gradeValue = &g
	}

	sql, args, err := t.sb.Update("enrollments").
		SetMap(map[string]interface{}{
			"average_unit_marks":        average,
			"main_exam_theory_marks":    theory,
			"main_exam_practical_marks": practical,
			"final_grade":               gradeValue,
			"updated_at":                squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": enrollmentID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update academic results SQL")
		return fmt.Errorf("failed to build update academic results query: %w", err)
	}

	cmdTag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("enrollmentID", enrollmentID).Msg("Error updating academic results")
		return fmt.Errorf("error updating academic results: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrEnrollmentNotFound
	}

	return nil
}
