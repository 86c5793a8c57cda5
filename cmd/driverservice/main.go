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
	"github.com/se360/ride-dispatch/internal/auth"
	"github.com/se360/ride-dispatch/internal/client"
	"github.com/se360/ride-dispatch/internal/config"
	"github.com/se360/ride-dispatch/internal/events"
	"github.com/se360/ride-dispatch/internal/presence"
	"github.com/se360/ride-dispatch/internal/service/dispatch"
	"github.com/se360/ride-dispatch/internal/tripcache"
	"github.com/se360/ride-dispatch/pkg/cache"
	"github.com/se360/ride-dispatch/pkg/logger"
	"github.com/se360/ride-dispatch/pkg/monitoring"
	"github.com/se360/ride-dispatch/pkg/rabbitmq"
	"github.com/se360/ride-dispatch/pkg/websocket"
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

	appLogger.Info("Starting driver service",
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

	presenceIndex := presence.NewIndex(redisClient, appLogger)
	passengerCache := tripcache.NewPassengerCache(redisClient, cfg.Dispatch.PassengerCacheTTL)
	publisher := events.NewBusPublisher(mq)
	verifier := auth.NewJWTVerifier(cfg.JWT.Secret)
	tripClient := client.NewTripService(cfg.Services.TripServiceURL)

	wsHub := websocket.NewHub(appLogger)
	go wsHub.Run()

	dispatcher := dispatch.NewDispatcher(presenceIndex, passengerCache, publisher, nrApp, appLogger, cfg.Dispatch.OfferRadiusKm)
	notifier := dispatch.NewNotifier(wsHub, appLogger)

	consumerCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()

	consume := func(queue string, handler rabbitmq.Handler) {
		go func() {
			if err := mq.Consume(consumerCtx, queue, handler); err != nil {
				appLogger.Error("Consumer stopped",
					logger.String("queue", queue),
					logger.Err(err),
				)
			}
		}()
	}
	consume(rabbitmq.QueueTripRequested, dispatcher.HandleEvent)
	consume(rabbitmq.QueueTripOffered, notifier.HandleEvent)
	consume(rabbitmq.QueueTripAssigned, notifier.HandleEvent)
	consume(rabbitmq.QueueTripStatus, notifier.HandleEvent)

	dh := handlers.NewDriverHandlers(presenceIndex, tripClient, passengerCache, publisher, appLogger)
	sh := handlers.NewStreamHandler(verifier, wsHub, presenceIndex, publisher, nrApp, appLogger,
		cfg.WebSocket.ReadBufferSize, cfg.WebSocket.WriteBufferSize)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	routes.SetupDriverRoutes(router, dh, sh, nrApp.GetApplication())

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

	appLogger.Info("Shutting down driver service...")
	stopConsumers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	appLogger.Info("Driver service stopped")
}
