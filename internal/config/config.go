package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/se360/ride-dispatch/pkg/cache"
	"github.com/se360/ride-dispatch/pkg/database"
	"github.com/se360/ride-dispatch/pkg/logger"
	"github.com/se360/ride-dispatch/pkg/monitoring"
	"github.com/se360/ride-dispatch/pkg/rabbitmq"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  database.Config
	Redis     cache.Config
	RabbitMQ  rabbitmq.Config
	NewRelic  monitoring.Config
	JWT       JWTConfig
	Services  ServicesConfig
	Dispatch  DispatchConfig
	WebSocket WebSocketConfig
	Log       logger.Config
}

type ServerConfig struct {
	Port string
	Env  string
	Host string
}

type JWTConfig struct {
	Secret string
}

// ServicesConfig holds the peer service endpoints
type ServicesConfig struct {
	TripServiceURL string
}

// DispatchConfig tunes offer fan-out, accept locking, and the
// passenger cache
type DispatchConfig struct {
	OfferRadiusKm     float64
	LockTTL           time.Duration
	PassengerCacheTTL time.Duration
}

type WebSocketConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ride_dispatch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNECTIONS", 100),
			MaxIdle:  getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 10),
		},
		Redis: cache.Config{
			Host:        getEnv("REDIS_HOST", "localhost"),
			Port:        getEnv("REDIS_PORT", "6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			MaxRetries:  getEnvAsInt("REDIS_MAX_RETRIES", 3),
			PoolSize:    getEnvAsInt("REDIS_POOL_SIZE", 100),
			MinIdleConn: 10,
			DialTimeout: 5 * time.Second,
			ReadTimeout: 3 * time.Second,
		},
		RabbitMQ: rabbitmq.Config{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnv("RABBITMQ_PORT", "5672"),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
		},
		NewRelic: monitoring.Config{
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			AppName:    getEnv("NEW_RELIC_APP_NAME", "ride-dispatch"),
			Enabled:    getEnvAsBool("NEW_RELIC_ENABLED", false),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your_jwt_secret_key_here"),
		},
		Services: ServicesConfig{
			TripServiceURL: getEnv("TRIP_SERVICE_URL", "http://localhost:8081"),
		},
		Dispatch: DispatchConfig{
			OfferRadiusKm:     getEnvAsFloat64("DISPATCH_OFFER_RADIUS_KM", 3.0),
			LockTTL:           time.Duration(getEnvAsInt("DISPATCH_LOCK_TTL_SECONDS", 5)) * time.Second,
			PassengerCacheTTL: time.Duration(getEnvAsInt("DISPATCH_PASSENGER_CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  getEnvAsInt("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: getEnvAsInt("WS_WRITE_BUFFER_SIZE", 1024),
		},
		Log: logger.Config{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.RabbitMQ.Host == "" {
		return fmt.Errorf("RABBITMQ_HOST is required")
	}
	if c.Dispatch.OfferRadiusKm <= 0 {
		return fmt.Errorf("DISPATCH_OFFER_RADIUS_KM must be positive")
	}
	if c.JWT.Secret == "your_jwt_secret_key_here" && c.Server.Env == "production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
