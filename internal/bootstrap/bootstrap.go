// Package bootstrap wires configuration, storage and the HTTP layer together.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	appControllers "github.com/twoem/portal/internal/app/controllers"
	appMigrations "github.com/twoem/portal/internal/app/migrations"
	appRepos "github.com/twoem/portal/internal/app/repositories"
	appRoutes "github.com/twoem/portal/internal/app/routes"
	appServices "github.com/twoem/portal/internal/app/services"
	"github.com/twoem/portal/internal/config"
	"github.com/twoem/portal/internal/db"
	pkgAuth "github.com/twoem/portal/internal/pkg/auth"
	"github.com/twoem/portal/internal/pkg/helpers"
	"github.com/twoem/portal/internal/pkg/logger"
	"github.com/twoem/portal/internal/pkg/validation"
	"github.com/twoem/portal/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos *appRepos.Repositories

	JWTService *pkgAuth.JWTService

	AuthService         *appServices.AuthService
	RegistrationService *appServices.RegistrationService
	StudentService      *appServices.StudentService
	AcademicsService    *appServices.AcademicsService
	FeeService          *appServices.FeeService
	CertificateService  *appServices.CertificateService

	AuthController        *appControllers.AuthController
	StudentController     *appControllers.StudentController
	AcademicsController   *appControllers.AcademicsController
	FeeController         *appControllers.FeeController
	CertificateController *appControllers.CertificateController
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, err
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	logger.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds default data.
func SetupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	logger.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}

	logger.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		logger.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}
	if err := migrator.MigrateFromDirectory(context.Background(), migrationsDir); err != nil {
		logger.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	if err := seed.CreateDefaultData(context.Background(), dbPool, cfg); err != nil {
		logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.AdminRepository,
		deps.Repos.StudentRepository,
		deps.JWTService,
	)
	deps.RegistrationService = appServices.NewRegistrationService(
		deps.Repos.CounterRepository,
		deps.Repos.StudentRepository,
		cfg.Registration.Prefix,
		cfg.Registration.MaxAttempts,
		cfg.Students.DefaultPassword,
	)
	deps.StudentService = appServices.NewStudentService(
		deps.Repos.StudentRepository,
		deps.Repos.CourseRepository,
		deps.Repos.EnrollmentRepository,
	)
	deps.AcademicsService = appServices.NewAcademicsService(
		deps.Repos.AcademicsRepository,
		deps.Repos.EnrollmentRepository,
		deps.Repos.CourseRepository,
		deps.Repos.UnitMarkRepository,
		cfg.Academics.PassingGrade,
	)
	deps.FeeService = appServices.NewFeeService(
		deps.Repos.FeeRepository,
		deps.Repos.StudentRepository,
	)
	deps.CertificateService = appServices.NewCertificateService(
		deps.Repos.EnrollmentRepository,
		deps.Repos.FeeRepository,
	)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.StudentController = appControllers.NewStudentController(deps.RegistrationService, deps.StudentService)
	deps.AcademicsController = appControllers.NewAcademicsController(deps.AcademicsService, deps.AuthService)
	deps.FeeController = appControllers.NewFeeController(deps.FeeService, deps.AuthService)
	deps.CertificateController = appControllers.NewCertificateController(deps.CertificateService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	if err := validation.RegisterCustomValidators(); err != nil {
		return nil, fmt.Errorf("failed to register custom validators: %w", err)
	}

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.StudentController,
		deps.AcademicsController,
		deps.FeeController,
		deps.CertificateController,
		deps.JWTService,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}
