// Package seed creates the default data a fresh installation needs.
package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	appModels "github.com/twoem/portal/internal/app/models"
	appRepos "github.com/twoem/portal/internal/app/repositories"
	"github.com/twoem/portal/internal/config"
	"github.com/twoem/portal/internal/pkg/auth"
	"github.com/twoem/portal/internal/pkg/logger"
)

func strPtr(s string) *string { return &s }

// defaultCourseName is the flagship program most students enroll in.
const defaultCourseName = "Computer Packages"

var defaultUnits = []appModels.Unit{
	{Name: "Introduction to Computers", Description: strPtr("Computer fundamentals and hardware basics")},
	{Name: "Microsoft Word", Description: strPtr("Word processing and document formatting")},
	{Name: "Microsoft Excel", Description: strPtr("Spreadsheets, formulas and charts")},
	{Name: "Microsoft PowerPoint", Description: strPtr("Presentations and slide design")},
	{Name: "Microsoft Access", Description: strPtr("Databases, tables and queries")},
	{Name: "Microsoft Publisher", Description: strPtr("Desktop publishing and layouts")},
	{Name: "Internet and Email", Description: strPtr("Browsing, search and electronic mail")},
	{Name: "Printing and Scanning", Description: strPtr("Document output and digitization")},
}

// CreateDefaultData seeds the default course with its unit catalog and,
// when configured, the first admin account. Every step is idempotent.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config) error {
	courseRepo := appRepos.NewCourseRepository(dbPool)
	adminRepo := appRepos.NewAdminRepository(dbPool)

	logger.Info().Msg("Checking/Creating default data...")
	var finalErr error

	course := &appModels.Course{
		Name:        defaultCourseName,
		Description: strPtr("Hands-on training across the core office computer packages"),
	}
	courseID, err := courseRepo.Create(ctx, course)
	if err != nil && !errors.Is(err, appRepos.ErrCourseAlreadyExists) {
		logger.Error().Err(err).Msg("Error creating default course")
		finalErr = errors.Join(finalErr, err)
	} else if errors.Is(err, appRepos.ErrCourseAlreadyExists) {
		existing, errGet := courseRepo.GetByName(ctx, defaultCourseName)
		if errGet != nil {
			logger.Error().Err(errGet).Msg("Error looking up existing default course")
			finalErr = errors.Join(finalErr, errGet)
		} else {
			courseID = existing.ID
		}
	}

	if courseID > 0 {
		for _, unit := range defaultUnits {
			u := unit
			u.CourseID = courseID
			if _, err := courseRepo.AddUnit(ctx, &u); err != nil && !errors.Is(err, appRepos.ErrUnitAlreadyExists) {
				logger.Error().Err(err).Str("unit", u.Name).Msg("Error creating default unit")
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	// The first admin is only seeded when a password is configured, so a
	// production deployment never ships a known credential by accident.
	if cfg.Seed.AdminPassword != "" {
		hash, err := auth.HashPassword(cfg.Seed.AdminPassword)
		if err != nil {
			logger.Error().Err(err).Msg("Error hashing seed admin password")
			return errors.Join(finalErr, err)
		}

		admin := &appModels.Admin{
			Name:         cfg.Seed.AdminName,
			Email:        cfg.Seed.AdminEmail,
			PasswordHash: hash,
		}
		if _, err := adminRepo.Create(ctx, admin); err != nil && !errors.Is(err, appRepos.ErrAdminAlreadyExists) {
			logger.Error().Err(err).Msg("Error creating seed admin")
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}
