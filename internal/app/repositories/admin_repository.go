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

// Admin error types
var (
	ErrAdminNotFound      = ErrNotFound
	ErrAdminAlreadyExists = errors.New("an admin with this email already exists")
)

// AdminRepository handles admin account database operations
type AdminRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new admin account.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) (int64, error) {
	sql, args, err := r.sb.Insert("admins").
		Columns("name", "email", "password_hash").
		Values(admin.Name, admin.Email, admin.PasswordHash).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create admin SQL")
		return 0, fmt.Errorf("failed to build create admin query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return 0, ErrAdminAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create admin query")
		return 0, fmt.Errorf("error creating admin: %w", err)
	}

	return id, nil
}

// GetByEmail retrieves an admin by email
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	sql, args, err := r.sb.Select("id", "name", "email", "password_hash", "created_at").
		From("admins").
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get admin by email SQL")
		return nil, fmt.Errorf("failed to build get admin query: %w", err)
	}

	admin := &models.Admin{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&admin.ID, &admin.Name, &admin.Email, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		logger.Error().Err(err).Str("email", email).Msg("Error scanning admin row")
		return nil, fmt.Errorf("error getting admin by email: %w", err)
	}

	return admin, nil
}

// GetByID retrieves an admin by ID
func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	sql, args, err := r.sb.Select("id", "name", "email", "password_hash", "created_at").
		From("admins").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get admin by ID SQL")
		return nil, fmt.Errorf("failed to build get admin query: %w", err)
	}

	admin := &models.Admin{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&admin.ID, &admin.Name, &admin.Email, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		logger.Error().Err(err).Int64("adminID", id).Msg("Error scanning admin row")
		return nil, fmt.Errorf("error getting admin by ID: %w", err)
	}

	return admin, nil
}
