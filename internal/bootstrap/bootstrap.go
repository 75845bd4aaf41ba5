package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/edutrack/edutrack/internal/app/controllers"
	appMigrations "github.com/edutrack/edutrack/internal/app/migrations"
	appRepos "github.com/edutrack/edutrack/internal/app/repositories"
	appRoutes "github.com/edutrack/edutrack/internal/app/routes"
	appServices "github.com/edutrack/edutrack/internal/app/services"
	"github.com/edutrack/edutrack/internal/config"
	"github.com/edutrack/edutrack/internal/db"
	appMiddleware "github.com/edutrack/edutrack/internal/middleware"
	pkgAuth "github.com/edutrack/edutrack/internal/pkg/auth"
	"github.com/edutrack/edutrack/internal/pkg/filestorage"
	"github.com/edutrack/edutrack/internal/pkg/helpers"
	"github.com/edutrack/edutrack/internal/pkg/logger"
	"github.com/edutrack/edutrack/internal/pkg/metrics"
	"github.com/edutrack/edutrack/internal/pkg/websocket"
	"github.com/edutrack/edutrack/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos                 *appRepos.Repositories
	Services              *appServices.Services
	JWTService            *pkgAuth.JWTService
	PrincipalMiddleware   *appMiddleware.PrincipalMiddleware
	RateLimiter           *appMiddleware.RateLimiter
	Storage               *filestorage.LocalStorage
	SeatHub               *websocket.Hub
	StudentController     *appControllers.StudentController
	CourseController      *appControllers.CourseController
	CourseImageController *appControllers.CourseImageController
	EnrollmentController  *appControllers.EnrollmentController
	HealthController      *appControllers.HealthController
	SeatHandler           *websocket.Handler
	Logger                zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
		File: logger.FileConfig{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		},
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)

	if cfg.Database.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := seed.CreateDefaultData(ctx, deps.Repos, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	storage, err := filestorage.NewLocalStorage(cfg.Server.StoragePath, "/uploads")
	if err != nil {
		lgr.Error().Err(err).Str("path", cfg.Server.StoragePath).Msg("Failed to prepare upload storage")
		return nil, fmt.Errorf("failed to prepare upload storage: %w", err)
	}
	deps.Storage = storage

	// Started by the server; publishes to a buffered channel until then.
	deps.SeatHub = websocket.NewHub(lgr.With().Str("component", "seats").Logger())

	deps.Services = appServices.NewServices(deps.Repos, lgr, appServices.WithSeatPublisher(deps.SeatHub))

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.Auth.JWTSecret,
		AccessTokenExp: helpers.ParseDuration(cfg.Auth.TokenTTL, 24*time.Hour),
		TokenIssuer:    cfg.Auth.Issuer,
	})
	deps.PrincipalMiddleware = appMiddleware.NewPrincipalMiddleware(deps.JWTService, cfg.Auth.Required)
	if !cfg.Auth.Required {
		lgr.Warn().Msg("Authentication is optional: requests without a token act as admin")
	}

	deps.RateLimiter = appMiddleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)

	deps.StudentController = appControllers.NewStudentController(deps.Services.StudentService)
	deps.CourseController = appControllers.NewCourseController(deps.Services.CourseService)
	deps.CourseImageController = appControllers.NewCourseImageController(deps.Services.CourseService, deps.Storage)
	deps.EnrollmentController = appControllers.NewEnrollmentController(deps.Services.EnrollmentService)
	deps.HealthController = appControllers.NewHealthController(database)
	deps.SeatHandler = websocket.NewHandler(deps.SeatHub, deps.Services.CourseService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	appMiddleware.UseJSONFieldNames()

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.AccessLog(),
		metrics.MetricsMiddleware(),
		appMiddleware.CORS(),
		deps.RateLimiter.Middleware(),
	)

	router.Static("/uploads", deps.Storage.BasePath())

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, appRoutes.Controllers{
		Student:     deps.StudentController,
		Course:      deps.CourseController,
		CourseImage: deps.CourseImageController,
		Enrollment:  deps.EnrollmentController,
		Health:      deps.HealthController,
		Seats:       deps.SeatHandler,
	}, deps.PrincipalMiddleware)

	return router
}
