package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/se360/ride-dispatch/internal/api/handlers"
	"github.com/se360/ride-dispatch/internal/api/routes"
	"github.com/se360/ride-dispatch/internal/config"
	"github.com/se360/ride-dispatch/internal/events"
	"github.com/se360/ride-dispatch/internal/lock"
	"github.com/se360/ride-dispatch/internal/repository/postgres"
	"github.com/se360/ride-dispatch/internal/service/dispatch"
	"github.com/se360/ride-dispatch/internal/service/trips"
	"github.com/se360/ride-dispatch/pkg/cache"
	"github.com/se360/ride-dispatch/pkg/database"
	"github.com/se360/ride-dispatch/pkg/logger"
	"github.com/se360/ride-dispatch/pkg/monitoring"
	"github.com/se360/ride-dispatch/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting trip service",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
	)

	nrApp, err := monitoring.New(cfg.NewRelic)
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
	} else if nrApp.IsEnabled() {
		appLogger.Info("New Relic APM initialized",
			logger.String("app_name", cfg.NewRelic.AppName))
	}
	defer nrApp.Shutdown(10 * time.Second)

	postgresDB, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	defer postgresDB.Close()
	appLogger.Info("Connected to PostgreSQL")

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}
	defer cache.Close(redisClient)
	appLogger.Info("Connected to Redis")

	mq, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		appLogger.Fatal("Failed to connect to RabbitMQ", logger.Err(err))
	}
	defer mq.Close()
	appLogger.Info("Connected to RabbitMQ")

	tripRepo := postgres.NewTripRepository(postgresDB)
	publisher := events.NewBusPublisher(mq)
	lockStore := lock.NewStore(redisClient)

	tripService := trips.NewService(tripRepo, publisher, appLogger)
	coordinator := dispatch.NewCoordinator(lockStore, tripRepo, publisher, nrApp, appLogger, cfg.Dispatch.LockTTL)

	h := handlers.NewTripHandlers(tripService, coordinator, nrApp, appLogger)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	routes.SetupTripRoutes(router, h, nrApp.GetApplication())

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down trip service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	appLogger.Info("Trip service stopped")
}
