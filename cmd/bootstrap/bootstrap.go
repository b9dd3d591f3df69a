package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-scheduling/config"
	deliveryHttp "clinic-scheduling/internal/delivery/http"
	"clinic-scheduling/internal/delivery/http/handler"
	"clinic-scheduling/internal/delivery/http/middleware"
	"clinic-scheduling/internal/infrastructure/cache"
	"clinic-scheduling/internal/infrastructure/database"
	"clinic-scheduling/internal/repository"
	"clinic-scheduling/internal/service"
	"clinic-scheduling/internal/usecase"
	"clinic-scheduling/pkg/jwt"
	"clinic-scheduling/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// LoadConfig reads configuration and prepares the shared logger.
func LoadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := setupLogger(cfg.App)
	log.Info("Configuration loaded successfully")
	return cfg, log, nil
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	cfg, log, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Log: log}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize all layers
	app.Server = initializeServer(cfg, log, db, redisClient)

	return app, nil
}

// NewAdminUsecase connects to the database only, for operator commands.
func NewAdminUsecase(cfg *config.Config, log *logrus.Logger) (usecase.AdminUsecase, func(), error) {
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App, log)
	if err != nil {
		return nil, nil, err
	}
	app := &App{DB: db}

	auditService := service.NewAuditService(db, log, repository.NewAuditLogRepository())
	uc := usecase.NewAdminUsecase(db, log, repository.NewUserRepository(), repository.NewRoleRepository(), auditService)
	return uc, app.Close, nil
}

// setupLogger configures the logrus logger
func setupLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, log *logrus.Logger, db *gorm.DB, redisClient *redis.Client) *http.Server {
	loc := cfg.App.Location()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	patientProfileRepo := repository.NewPatientProfileRepository()
	weeklyRepo := repository.NewWeeklyScheduleRepository()
	dayOffRepo := repository.NewDayOffRepository()
	exceptionalRepo := repository.NewExceptionalScheduleRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(db, log, auditLogRepo)
	slotLock := service.NewSlotLockService(redisClient, log, cfg.Booking.LockTTL)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, doctorProfileRepo, patientProfileRepo, jwtService, redisClient, auditService)
	doctorUsecase := usecase.NewDoctorProfileUsecase(db, log, userRepo, doctorProfileRepo, auditService)
	patientUsecase := usecase.NewPatientProfileUsecase(db, log, userRepo, patientProfileRepo, auditService)
	weeklyUsecase := usecase.NewWeeklyScheduleUsecase(db, log, weeklyRepo, doctorProfileRepo, appointmentRepo, exceptionalRepo, auditService, loc)
	slotUsecase := usecase.NewSlotUsecase(db, log, doctorProfileRepo, weeklyRepo, dayOffRepo, exceptionalRepo, appointmentRepo, cfg.Booking, loc)
	dayOffUsecase := usecase.NewDayOffUsecase(db, log, dayOffRepo, appointmentRepo, doctorProfileRepo, auditService, loc)
	exceptionalUsecase := usecase.NewExceptionalScheduleUsecase(db, log, exceptionalRepo, appointmentRepo, doctorProfileRepo, auditService, loc)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, doctorProfileRepo, weeklyRepo, dayOffRepo, exceptionalRepo, slotLock, auditService, cfg.Booking, loc)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)
	patientHandler := handler.NewPatientHandler(patientUsecase, customValidator)
	scheduleHandler := handler.NewScheduleHandler(weeklyUsecase, slotUsecase, customValidator)
	dayOffHandler := handler.NewDayOffHandler(dayOffUsecase, customValidator)
	exceptionalHandler := handler.NewExceptionalScheduleHandler(exceptionalUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware()
	loggingMiddleware := middleware.NewLoggingMiddleware(log)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		doctorHandler,
		patientHandler,
		scheduleHandler,
		dayOffHandler,
		exceptionalHandler,
		appointmentHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		loggingMiddleware,
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() error {
	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	return app.waitForShutdown(errCh)
}

// waitForShutdown blocks until an interrupt signal is received or the
// listener fails.
func (app *App) waitForShutdown(errCh <-chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
		app.Log.Info("Shutting down server...")
	case serveErr = <-errCh:
		app.Log.Errorf("Server failed: %v", serveErr)
	}

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
	return serveErr
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
