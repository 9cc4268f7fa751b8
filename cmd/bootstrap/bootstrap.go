package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"disability-services-api/config"
	deliveryHttp "disability-services-api/internal/delivery/http"
	"disability-services-api/internal/delivery/http/handler"
	"disability-services-api/internal/delivery/http/middleware"
	"disability-services-api/internal/infrastructure/cache"
	"disability-services-api/internal/infrastructure/database"
	"disability-services-api/internal/repository"
	"disability-services-api/internal/service"
	"disability-services-api/internal/usecase"
	"disability-services-api/pkg/clock"
	"disability-services-api/pkg/jwt"
	"disability-services-api/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	SlotQuota   *service.SlotQuotaService
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	// Apply schema migrations
	if err := database.RunMigrations(cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	server, slotQuota := initializeServer(cfg, db, redisClient)
	app.Server = server
	app.SlotQuota = slotQuota

	// Rebuild slot quota counters before taking traffic
	syncCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := slotQuota.SyncOnStartup(syncCtx); err != nil {
		return nil, fmt.Errorf("failed to sync slot quotas: %w", err)
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*http.Server, *service.SlotQuotaService) {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	appointmentRepo := repository.NewAppointmentRepository()
	locationRepo := repository.NewOutreachLocationRepository()
	smsRepo := repository.NewSmsNotificationRepository()
	auditRepo := repository.NewAuditLogRepository()

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize services
	slotQuota := service.NewSlotQuotaService(db, redisClient, log, appointmentRepo, cfg.Booking)
	smsSender := service.NewSimulatedSender(log, cfg.SMS.SenderID)
	smsService := service.NewSmsService(db, log, smsSender, smsRepo)
	auditService := service.NewAuditService(log, auditRepo)

	// System clock; tests substitute a fixed one
	clk := clock.New()

	// Initialize usecases
	availabilityUsecase := usecase.NewAvailabilityUsecase(db, log, appointmentRepo, locationRepo, cfg.Booking, clk)
	bookingUsecase := usecase.NewBookingUsecase(db, log, appointmentRepo, locationRepo, availabilityUsecase, slotQuota, smsService, auditService, cfg.Booking, clk)
	adminUsecase := usecase.NewAppointmentAdminUsecase(db, log, appointmentRepo, auditRepo, slotQuota, auditService, cfg.Booking)
	locationUsecase := usecase.NewOutreachLocationUsecase(db, log, locationRepo)

	// Initialize handlers
	availabilityHandler := handler.NewAvailabilityHandler(availabilityUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(bookingUsecase, customValidator)
	adminHandler := handler.NewAppointmentAdminHandler(adminUsecase, customValidator)
	locationHandler := handler.NewOutreachLocationHandler(locationUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(availabilityHandler, appointmentHandler, adminHandler, locationHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}
	return server, slotQuota
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Stop background workers
	if app.SlotQuota != nil {
		app.SlotQuota.Stop()
	}

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
