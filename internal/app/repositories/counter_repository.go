package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twoem/portal/internal/db"
	"github.com/twoem/portal/internal/pkg/logger"
)

// StudentRegSuffixCounter is the named counter holding the last-issued
// registration number suffix. It is owned exclusively by the allocator.
const StudentRegSuffixCounter = "student_reg_suffix"

// CounterTx is the set of counter operations available inside one
// allocation transaction. Implementations must bind every call to the
// same transaction so the read-increment-write is serialized against
// concurrent allocators.
type CounterTx interface {
	// CounterValue reads the current value with a row lock; found is
	// false when the counter row does not exist yet.
	CounterValue(ctx context.Context, name string) (value int64, found bool, err error)
	// InitCounter creates the counter row at zero.
	InitCounter(ctx context.Context, name string) error
	// SetCounter writes the new counter value.
	SetCounter(ctx context.Context, name string, value int64) error
	// RegistrationNumberExists checks whether a student already holds the
	// candidate number (defensive double-check, not the primary guard).
	RegistrationNumberExists(ctx context.Context, registrationNumber string) (bool, error)
}

// CounterUnitOfWork runs counter operations inside a single transaction;
// any error from fn rolls the whole transaction back.
type CounterUnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx CounterTx) error) error
}

// CounterRepository is the PostgreSQL CounterUnitOfWork.
type CounterRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCounterRepository creates a new CounterRepository
func NewCounterRepository(pool *pgxpool.Pool) *CounterRepository {
	return &CounterRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithinTransaction implements CounterUnitOfWork.
func (r *CounterRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx CounterTx) error) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &counterTx{tx: tx, sb: r.sb})
	})
}

// counterTx binds counter operations to one open transaction.
type counterTx struct {
	tx pgx.Tx
	sb squirrel.StatementBuilderType
}

func (t *counterTx) CounterValue(ctx context.Context, name string) (int64, bool, error) {
	sql, args, err := t.sb.Select("current_value").
		From("app_counters").
		Where(squirrel.Eq{"counter_name": name}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building counter value SQL")
		return 0, false, fmt.Errorf("failed to build counter value query: %w", err)
	}

	var value int64
	err = t.tx.QueryRow(ctx, sql, args...).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		logger.Error().Err(err).Str("counter", name).Msg("Error reading counter value")
		return 0, false, fmt.Errorf("error reading counter value: %w", err)
	}

	return value, true, nil
}

func (t *counterTx) InitCounter(ctx context.Context, name string) error {
	sql, args, err := t.sb.Insert("app_counters").
		Columns("counter_name", "current_value").
		Values(name, 0).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building init counter SQL")
		return fmt.Errorf("failed to build init counter query: %w", err)
	}

	if _, err := t.tx.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("counter", name).Msg("Error initializing counter")
		return fmt.Errorf("error initializing counter: %w", err)
	}

	return nil
}

func (t *counterTx) SetCounter(ctx context.Context, name string, value int64) error {
	sql, args, err := t.sb.Update("app_counters").
		Set("current_value", value).
		Where(squirrel.Eq{"counter_name": name}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building set counter SQL")
		return fmt.Errorf("failed to build set counter query: %w", err)
	}

	cmdTag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("counter", name).Msg("Error writing counter value")
		return fmt.Errorf("error writing counter value: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("counter %s vanished during allocation", name)
	}

	return nil
}

func (t *counterTx) RegistrationNumberExists(ctx context.Context, registrationNumber string) (bool, error) {
	sql, args, err := t.sb.Select("1").
		From("students").
		Where(squirrel.Eq{"registration_number": registrationNumber}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building registration number exists SQL")
		return false, fmt.Errorf("failed to build registration number existence query: %w", err)
	}

	var exists bool
	if err := t.tx.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Str("registrationNumber", registrationNumber).Msg("Error checking registration number existence")
		return false, fmt.Errorf("error checking registration number existence: %w", err)
	}

	return exists, nil
}
