// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Auction     AuctionConfig
	Events      EventsConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

// AuctionConfig tunes the bid engine and the expiry scheduler.
type AuctionConfig struct {
	SchedulerTickInterval time.Duration
	LockIdleEviction      time.Duration
	StoreCallDeadline     time.Duration
	SelfBidAllowed        bool
	// ClockSource selects the engine's time source: "system", or
	// "frozen" to pin the clock at process start for demo runs.
	ClockSource string
}

// EventsConfig tunes the outbox publisher and the broadcaster.
type EventsConfig struct {
	OutboxBatch        int
	OutboxPollInterval time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "auction_backend"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24), // 24 hours
		},
		Auction: AuctionConfig{
			SchedulerTickInterval: getEnvAsDuration("SCHEDULER_TICK_INTERVAL", 15*time.Minute),
			LockIdleEviction:      getEnvAsDuration("BID_LOCK_IDLE_EVICTION", 5*time.Minute),
			StoreCallDeadline:     getEnvAsDuration("STORE_CALL_DEADLINE", 5*time.Second),
			SelfBidAllowed:        getEnvAsBool("BID_SELF_BID_ALLOWED", false),
			ClockSource:           getEnv("CLOCK_SOURCE", "system"),
		},
		Events: EventsConfig{
			OutboxBatch:        getEnvAsInt("EVENT_OUTBOX_BATCH", 100),
			OutboxPollInterval: getEnvAsDuration("EVENT_OUTBOX_POLL_INTERVAL", 250*time.Millisecond),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Auction.SchedulerTickInterval <= 0 {
		return fmt.Errorf("scheduler tick interval must be positive")
	}

	if c.Events.OutboxBatch <= 0 {
		return fmt.Errorf("outbox batch size must be positive")
	}

	switch c.Auction.ClockSource {
	case "system":
	case "frozen":
		if c.Environment == "production" {
			return fmt.Errorf("frozen clock source is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown clock source %q", c.Auction.ClockSource)
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
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
