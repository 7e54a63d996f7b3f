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

// Course error types
var (
	ErrCourseNotFound      = ErrNotFound
	ErrCourseAlreadyExists = errors.New("a course with this name already exists")
	ErrUnitAlreadyExists   = errors.New("a unit with this name already exists in the course")
)

// CourseRepository handles course and unit catalog database operations.
// The unit catalog is fixed once provisioned; there is no unit update path.
type CourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) (int64, error) {
	sql, args, err := r.sb.Insert("courses").
		Columns("name", "description").
		Values(course.Name, course.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create course SQL")
		return 0, fmt.Errorf("failed to build create course query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return 0, ErrCourseAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create course query")
		return 0, fmt.Errorf("error creating course: %w", err)
	}

	return id, nil
}

// AddUnit appends a unit to a course's catalog.
func (r *CourseRepository) AddUnit(ctx context.Context, unit *models.Unit) (int64, error) {
	sql, args, err := r.sb.Insert("units").
		Columns("course_id", "unit_name", "description").
		Values(unit.CourseID, unit.Name, unit.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building add unit SQL")
		return 0, fmt.Errorf("failed to build add unit query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return 0, ErrUnitAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing add unit query")
		return 0, fmt.Errorf("error adding unit: %w", err)
	}

	return id, nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := r.sb.Select("id", "name", "description").
		From("courses").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get course by ID SQL")
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course := &models.Course{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&course.ID, &course.Name, &course.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}

	return course, nil
}

// GetByName retrieves a course by its unique name
func (r *CourseRepository) GetByName(ctx context.Context, name string) (*models.Course, error) {
	sql, args, err := r.sb.Select("id", "name", "description").
		From("courses").
		Where(squirrel.Eq{"name": name}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get course by name SQL")
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course := &models.Course{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&course.ID, &course.Name, &course.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		logger.Error().Err(err).Str("name", name).Msg("Error scanning course row")
		return nil, fmt.Errorf("error getting course by name: %w", err)
	}

	return course, nil
}

// GetUnits retrieves the full unit catalog for a course, in catalog order.
func (r *CourseRepository) GetUnits(ctx context.Context, courseID int64) ([]models.Unit, error) {
	sql, args, err := r.sb.Select("id", "course_id", "unit_name", "description").
		From("units").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get units SQL")
		return nil, fmt.Errorf("failed to build get units query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error executing get units query")
		return nil, fmt.Errorf("error querying units: %w", err)
	}
	defer rows.Close()

	units := []models.Unit{}
	for rows.Next() {
		unit := models.Unit{}
		if err := rows.Scan(&unit.ID, &unit.CourseID, &unit.Name, &unit.Description); err != nil {
			logger.Error().Err(err).Msg("Error scanning unit row")
			return nil, fmt.Errorf("error scanning unit row: %w", err)
		}
		units = append(units, unit)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating unit rows")
		return nil, fmt.Errorf("error iterating unit rows: %w", err)
	}

	return units, nil
}
