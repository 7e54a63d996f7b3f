package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/pkg/dberrors"
	"github.com/twoem/portal/internal/pkg/logger"
)

// Enrollment error types
var (
	ErrEnrollmentNotFound = ErrNotFound
	ErrAlreadyEnrolled    = errors.New("student is already enrolled in this course")
)

const enrollmentColumns = "id, student_id, course_id, enrollment_date, average_unit_marks, " +
	"main_exam_theory_marks, main_exam_practical_marks, final_grade, certificate_issued_at, created_at, updated_at"

// EnrollmentRepository handles enrollment database operations
type EnrollmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanEnrollment(row pgx.Row) (*models.Enrollment, error) {
	enrollment := &models.Enrollment{}
	var grade *string
	err := row.Scan(
		&enrollment.ID, &enrollment.StudentID, &enrollment.CourseID, &enrollment.EnrollmentDate,
		&enrollment.AverageUnitMarks, &enrollment.MainExamTheoryMarks, &enrollment.MainExamPracticalMarks,
		&grade, &enrollment.CertificateIssuedAt, &enrollment.CreatedAt, &enrollment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if grade != nil {
		fg := models.FinalGrade(*grade)
		enrollment.FinalGrade = &fg
	}
	return enrollment, nil
}

// Create enrolls a student into a course.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) (int64, error) {
	sql, args, err := r.sb.Insert("enrollments").
		Columns("student_id", "course_id").
		Values(enrollment.StudentID, enrollment.CourseID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create enrollment SQL")
		return 0, fmt.Errorf("failed to build create enrollment query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return 0, ErrAlreadyEnrolled
		}
		logger.Error().Err(err).Msg("Error executing create enrollment query")
		return 0, fmt.Errorf("error creating enrollment: %w", err)
	}

	return id, nil
}

// GetByID retrieves an enrollment by ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	sql, args, err := r.sb.Select(enrollmentColumns).
		From("enrollments").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get enrollment by ID SQL")
		return nil, fmt.Errorf("failed to build get enrollment query: %w", err)
	}

	enrollment, err := scanEnrollment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("enrollmentID", id).Msg("Error scanning enrollment row")
		return nil, fmt.Errorf("error getting enrollment by ID: %w", err)
	}

	return enrollment, nil
}

// ListByStudent retrieves all of a student's enrollments with their courses.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error) {
	sql, args, err := r.sb.Select(
		"e.id", "e.student_id", "e.course_id", "e.enrollment_date", "e.average_unit_marks",
		"e.main_exam_theory_marks", "e.main_exam_practical_marks", "e.final_grade",
		"e.certificate_issued_at", "e.created_at", "e.updated_at",
		"c.name", "c.description").
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		Where(squirrel.Eq{"e.student_id": studentID}).
		OrderBy("c.name ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list enrollments SQL")
		return nil, fmt.Errorf("failed to build list enrollments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing list enrollments query")
		return nil, fmt.Errorf("error querying enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := []*models.Enrollment{}
	for rows.Next() {
		enrollment := &models.Enrollment{}
		var grade *string
		course := &models.Course{}
		err := rows.Scan(
			&enrollment.ID, &enrollment.StudentID, &enrollment.CourseID, &enrollment.EnrollmentDate,
			&enrollment.AverageUnitMarks, &enrollment.MainExamTheoryMarks, &enrollment.MainExamPracticalMarks,
			&grade, &enrollment.CertificateIssuedAt, &enrollment.CreatedAt, &enrollment.UpdatedAt,
			&course.Name, &course.Description,
		)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning enrollment row during list")
			return nil, fmt.Errorf("error scanning enrollment row: %w", err)
		}
		if grade != nil {
			fg := models.FinalGrade(*grade)
			enrollment.FinalGrade = &fg
		}
		course.ID = enrollment.CourseID
		enrollment.Course = course
		enrollments = append(enrollments, enrollment)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating enrollment rows")
		return nil, fmt.Errorf("error iterating enrollment rows: %w", err)
	}

	return enrollments, nil
}

// MarkCertificateIssued stamps certificate_issued_at if it is not already
// set. Returns true when this call performed the first issue; false means
// the certificate was already issued and nothing changed.
func (r *EnrollmentRepository) MarkCertificateIssued(ctx context.Context, enrollmentID int64, issuedAt time.Time) (bool, error) {
	sql, args, err := r.sb.Update("enrollments").
		SetMap(map[string]interface{}{
			"certificate_issued_at": issuedAt,
			"updated_at":            squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": enrollmentID}).
		Where("certificate_issued_at IS NULL").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building mark certificate issued SQL")
		return false, fmt.Errorf("failed to build mark certificate issued query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("enrollmentID", enrollmentID).Msg("Error executing mark certificate issued query")
		return false, fmt.Errorf("error marking certificate issued: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}
