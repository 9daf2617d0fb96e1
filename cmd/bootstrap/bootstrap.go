package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fabrication-workflow/config"
	deliveryHttp "fabrication-workflow/internal/delivery/http"
	"fabrication-workflow/internal/delivery/http/handler"
	"fabrication-workflow/internal/delivery/http/middleware"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/infrastructure/cache"
	"fabrication-workflow/internal/infrastructure/database"
	"fabrication-workflow/internal/infrastructure/storage"
	"fabrication-workflow/internal/repository"
	"fabrication-workflow/internal/service"
	"fabrication-workflow/internal/usecase"
	"fabrication-workflow/pkg/jwt"
	"fabrication-workflow/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	auditQueueSize        = 256
	notificationQueueSize = 256
	shutdownTimeout       = 10 * time.Second
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	sweeper       *service.HoldSweeper
	auditService  *service.AuditService
	notifications *service.NotificationService
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	log := newLogger(cfg.App.LogLevel)
	app.Log = log
	log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(db, log); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Redis only backs the fee cache and token revocation
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis, log)
		if err != nil {
			log.Warnf("Continuing without Redis: %v", err)
		} else {
			app.RedisClient = redisClient
		}
	}

	app.Server = app.initializeServer()

	return app, nil
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}

// initializeServer wires repositories, services, usecases and handlers
func (app *App) initializeServer() *http.Server {
	cfg, db, log := app.Config, app.DB, app.Log

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	holdRepo := repository.NewReservationHoldRepository()
	intakeRepo := repository.NewVisitIntakeRepository()
	projectRepo := repository.NewProjectRepository()
	blueprintRepo := repository.NewBlueprintRepository()
	planRepo := repository.NewPaymentPlanRepository()
	paymentRepo := repository.NewPaymentRepository()
	receiptRepo := repository.NewReceiptSequenceRepository()
	fabricationRepo := repository.NewFabricationUpdateRepository()
	notificationRepo := repository.NewNotificationRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	reservation := service.NewReservationService(log, holdRepo, cfg.Reservation.HoldTTL)
	availability := service.NewAvailabilityService(db, log, userRepo, cfg.Booking.Holidays)
	fees := service.NewRouteFeeService(app.RedisClient, log, cfg.Fee)
	app.auditService = service.NewAuditService(db, log, auditLogRepo, auditQueueSize)
	app.notifications = service.NewNotificationService(db, log, notificationRepo, notificationQueueSize)
	app.sweeper = service.NewHoldSweeper(db, log, reservation, cfg.Reservation.SweepInterval)

	var objectStorage usecase.ObjectStorage
	s3Storage, err := storage.NewS3Storage(cfg.Storage)
	if err != nil {
		log.Warnf("Uploads disabled: %v", err)
	} else {
		objectStorage = s3Storage
	}

	// Initialize usecases
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, intakeRepo, projectRepo, userRepo,
		reservation, availability, fees, app.auditService, app.notifications,
		usecase.AppointmentSettings{
			OfficeSlotCapacity: cfg.Booking.OfficeSlotCapacity,
			MaxReschedules:     cfg.Booking.MaxReschedules,
			Office:             entity.Coordinates{Latitude: cfg.Booking.OfficeLatitude, Longitude: cfg.Booking.OfficeLongitude},
			FeeTimeout:         cfg.Fee.ComputeTimeout,
		})
	intakeUsecase := usecase.NewVisitIntakeUsecase(db, log, intakeRepo, appointmentRepo, projectRepo,
		reservation, app.auditService, app.notifications)
	projectUsecase := usecase.NewProjectUsecase(db, log, projectRepo, appointmentRepo, intakeRepo, userRepo,
		reservation, app.auditService, app.notifications)
	blueprintUsecase := usecase.NewBlueprintUsecase(db, log, blueprintRepo, projectRepo, appointmentRepo, intakeRepo,
		reservation, app.auditService, app.notifications, cfg.Payment.MaxBlueprintVersions)
	paymentUsecase := usecase.NewPaymentUsecase(db, log, planRepo, paymentRepo, receiptRepo, projectRepo, appointmentRepo, intakeRepo,
		reservation, app.auditService, app.notifications, cfg.Payment.ReceiptPrefix)
	fabricationUsecase := usecase.NewFabricationUsecase(db, log, fabricationRepo, projectRepo, appointmentRepo, intakeRepo,
		reservation, app.auditService, app.notifications)
	uploadUsecase := usecase.NewUploadUsecase(log, objectStorage, cfg.Storage.PresignExpiry)
	notificationUsecase := usecase.NewNotificationUsecase(db, log, notificationRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	intakeHandler := handler.NewVisitIntakeHandler(intakeUsecase, customValidator)
	projectHandler := handler.NewProjectHandler(projectUsecase, customValidator)
	blueprintHandler := handler.NewBlueprintHandler(blueprintUsecase, customValidator)
	paymentHandler := handler.NewPaymentHandler(paymentUsecase, customValidator)
	fabricationHandler := handler.NewFabricationHandler(fabricationUsecase, customValidator)
	uploadHandler := handler.NewUploadHandler(uploadUsecase, customValidator)
	notificationHandler := handler.NewNotificationHandler(notificationUsecase)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, app.RedisClient, log)
	corsMiddleware := middleware.NewCORSMiddleware()
	requestMiddleware := middleware.NewRequestMiddleware(log)

	router := deliveryHttp.NewRouter(appointmentHandler, intakeHandler, projectHandler, blueprintHandler, paymentHandler,
		fabricationHandler, uploadHandler, notificationHandler, auditLogHandler,
		authMiddleware, corsMiddleware, requestMiddleware)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close stops background workers, draining queued audit records and
// notifications before the database goes away.
func (app *App) Close() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}
	if app.auditService != nil {
		app.auditService.Stop()
	}
	if app.notifications != nil {
		app.notifications.Stop()
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
