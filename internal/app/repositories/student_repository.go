package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/pkg/dberrors"
	"github.com/twoem/portal/internal/pkg/logger"
)

// Student error types
var (
	// ErrStudentNotFound is returned when a student is not found.
	ErrStudentNotFound = ErrNotFound
	// ErrStudentEmailExists is returned when the email is already registered.
	ErrStudentEmailExists = errors.New("a student with this email already exists")
	// ErrRegistrationNumberExists is returned when the registration number
	// collides with an existing student; the allocator retries on it.
	ErrRegistrationNumberExists = errors.New("registration number already exists")
)

const studentColumns = "id, registration_number, first_name, second_name, last_name, email, phone_number, " +
	"password_hash, requires_password_change, is_profile_complete, is_active, last_login_at, created_at, updated_at"

// StudentRepository handles student database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	student := &models.Student{}
	err := row.Scan(
		&student.ID, &student.RegistrationNumber, &student.FirstName, &student.SecondName,
		&student.LastName, &student.Email, &student.PhoneNumber, &student.PasswordHash,
		&student.RequiresPasswordChange, &student.IsProfileComplete, &student.IsActive,
		&student.LastLoginAt, &student.CreatedAt, &student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return student, nil
}

// Create inserts a new student row and returns its ID.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (int64, error) {
	sql, args, err := r.sb.Insert("students").
		Columns("registration_number", "first_name", "second_name", "last_name", "email",
			"phone_number", "password_hash", "requires_password_change", "is_profile_complete", "is_active").
		Values(student.RegistrationNumber, student.FirstName, student.SecondName, student.LastName,
			student.Email, student.PhoneNumber, student.PasswordHash,
			student.RequiresPasswordChange, student.IsProfileComplete, student.IsActive).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return 0, fmt.Errorf("failed to build create student query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_email_key") {
			return 0, ErrStudentEmailExists
		}
		if dberrors.IsDuplicateConstraintError(err, "students_registration_number_key") {
			return 0, ErrRegistrationNumberExists
		}
		logger.Error().Err(err).Msg("Error executing create student query")
		return 0, fmt.Errorf("error creating student: %w", err)
	}

	return id, nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns).
		From("students").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get student by ID SQL")
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student by ID: %w", err)
	}

	return student, nil
}

// GetByRegistrationNumber retrieves a student by registration number
func (r *StudentRepository) GetByRegistrationNumber(ctx context.Context, registrationNumber string) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns).
		From("students").
		Where(squirrel.Eq{"registration_number": registrationNumber}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get student by registration number SQL")
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		logger.Error().Err(err).Str("registrationNumber", registrationNumber).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student by registration number: %w", err)
	}

	return student, nil
}

// UpdatePassword replaces the stored password hash and clears the
// forced-change flag.
func (r *StudentRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	sql, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"password_hash":            passwordHash,
			"requires_password_change": false,
			"updated_at":               squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update password SQL")
		return fmt.Errorf("failed to build update password query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing update password query")
		return fmt.Errorf("error updating password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrStudentNotFound
	}

	return nil
}

// StampLastLogin records a successful login time.
func (r *StudentRepository) StampLastLogin(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"last_login_at": squirrel.Expr("NOW()"),
			"updated_at":    squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building stamp last login SQL")
		return fmt.Errorf("failed to build stamp last login query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error stamping last login")
		return fmt.Errorf("error stamping last login: %w", err)
	}

	return nil
}

// SetActive soft-activates or soft-deactivates a student. Deactivated
// students keep their enrollments and fees but cannot log in.
func (r *StudentRepository) SetActive(ctx context.Context, id int64, active bool) error {
	sql, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"is_active":  active,
			"updated_at": squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building set active SQL")
		return fmt.Errorf("failed to build set active query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing set active query")
		return fmt.Errorf("error setting student active state: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrStudentNotFound
	}

	return nil
}
