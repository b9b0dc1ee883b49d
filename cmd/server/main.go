package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/catchify/service-booking/internal/adapter"
	"github.com/catchify/service-booking/internal/application"
	"github.com/catchify/service-booking/internal/config"
	"github.com/catchify/service-booking/internal/domain/booking"
	scheduleEvents "github.com/catchify/service-booking/internal/events"
	"github.com/catchify/service-booking/internal/handler"
	"github.com/catchify/service-booking/internal/platform/auth"
	"github.com/catchify/service-booking/internal/platform/database"
	"github.com/catchify/service-booking/internal/platform/health"
	"github.com/catchify/service-booking/internal/platform/kafka"
	"github.com/catchify/service-booking/internal/platform/logger"
	"github.com/catchify/service-booking/internal/platform/middleware"
	"github.com/catchify/service-booking/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "service-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("notification_backend", cfg.Notification.Backend),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig.DSN(), zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(repository.Models()...); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), cfg.MigrationsDir, zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Connect to Redis for in-progress selections
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})
	defer redisClient.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.TTL)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
	defer kafkaProducer.Close()

	// Initialize repositories
	txManager := repository.NewGormTxManager(db)
	seatRepo := repository.NewGormSeatRepository(db)
	promoRepo := repository.NewGormPromoRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	showingRepo := repository.NewGormShowingRepository(db)
	selectionStore := repository.NewRedisSelectionStore(redisClient, cfg.SelectionTTL)

	// Initialize application services
	dispatcher := newDispatcher(cfg, kafkaProducer, zapLogger)
	seatService := application.NewSeatService(txManager, seatRepo, showingRepo, zapLogger)
	promoService := application.NewPromoService(promoRepo, zapLogger)
	bookingService := application.NewBookingService(
		txManager,
		seatRepo,
		promoService,
		bookingRepo,
		showingRepo,
		dispatcher,
		cfg.Notification.Timeout,
		zapLogger,
	)
	selectionService := application.NewSelectionService(selectionStore, seatService, promoService, bookingService, zapLogger)

	// Start Kafka consumer for schedule events
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	if cfg.KafkaConfig.ConsumeEnabled {
		scheduleConsumer := scheduleEvents.NewScheduleEventConsumer(
			cfg.KafkaConfig.Brokers,
			cfg.KafkaConfig.GroupPrefix+"booking-service",
			cfg.KafkaConfig.ScheduleTopic,
			seatService,
			zapLogger,
		)
		defer scheduleConsumer.Close()

		go func() {
			zapLogger.Info("starting schedule event consumer")
			if err := scheduleConsumer.Start(consumerCtx); err != nil {
				if consumerCtx.Err() == nil {
					zapLogger.Error("schedule event consumer failed", zap.Error(err))
				}
			}
		}()
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(serviceName, map[string]health.Checker{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})
	healthHandler.RegisterRoutes(router)

	// Register API routes
	apiV1 := router.Group("/api/v1")
	handler.NewBookingHandler(bookingService).RegisterRoutes(apiV1, jwtManager)
	handler.NewSelectionHandler(selectionService).RegisterRoutes(apiV1, jwtManager)
	handler.NewPromoHandler(promoService).RegisterRoutes(apiV1, jwtManager)
	handler.NewSeatHandler(seatService).RegisterRoutes(apiV1)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-booking...")

	consumerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("service-booking stopped")
}

// newDispatcher picks the confirmation channel named by configuration.
func newDispatcher(cfg *config.ServiceConfig, producer *kafka.Producer, logger *zap.Logger) booking.Dispatcher {
	switch cfg.Notification.Backend {
	case "kafka":
		return adapter.NewKafkaDispatcher(producer, cfg.KafkaConfig.BookingTopic, logger)
	case "amqp":
		return adapter.NewAMQPDispatcher(cfg.RabbitConfig.URL, cfg.RabbitConfig.Queue, logger)
	default:
		return adapter.NewLogDispatcher(logger)
	}
}
