// internal/config/config.go
// Configuration management using environment variables and optional config files

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Rotation    RotationConfig
	Features    FeatureFlags
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         string
	CORSOrigin   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig contains all database connection settings
type DatabaseConfig struct {
	MySQL   MySQLConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
}

// MySQLConfig contains MySQL-specific settings. MySQL backs the durable
// roster/team catalog.
type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// MongoDBConfig contains MongoDB-specific settings. Mongo backs the
// append-only game snapshot history.
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig contains Redis-specific settings. Redis backs the roster
// cache, refresh tokens, and the rate limiter.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig contains the operator auth settings. There is no user
// registration in this service: a single operator credential pair, read
// from the environment, is exchanged for JWTs.
type AuthConfig struct {
	JWTSecret            string
	JWTExpiration        time.Duration
	RefreshTokenExpiry   time.Duration
	BCryptCost           int
	OperatorUsername     string
	OperatorPasswordHash string
}

// RotationConfig carries the tunables from spec.md §6 that are not part of
// a per-game Setup payload: process-wide defaults applied to every engine
// unless a game's Setup overrides the subset it is allowed to.
type RotationConfig struct {
	DefaultFieldSize          int
	DefaultSwapsPerChange     int
	MinAcceptableSubInterval  int
	EndBufferSeconds          int
	MinFieldStintSeconds      int
	MaxTickCatchupSeconds     int
	MaxVisibilityCatchupSecs  int
	ValidationIntervalSeconds int
	CheckIntervalSeconds      int
	LookAheadWindowSeconds    int
	VarianceGoalBalanced      float64
}

// FeatureFlags allows toggling features without code changes
type FeatureFlags struct {
	EnableWebSocket   bool
	EnableEarlyWarn   bool
	EnableAutoConfirm bool
	MaintenanceMode   bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist in production
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", "8080"),
			CORSOrigin:   getEnvOrDefault("CORS_ORIGIN", "*"),
			ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			MySQL: MySQLConfig{
				DSN:             getEnvOrDefault("MYSQL_DSN", ""),
				MaxOpenConns:    getIntOrDefault("MYSQL_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    getIntOrDefault("MYSQL_MAX_IDLE_CONNS", 5),
				ConnMaxLifetime: getDurationOrDefault("MYSQL_CONN_MAX_LIFETIME", 5*time.Minute),
			},
			MongoDB: MongoDBConfig{
				URI:      getEnvOrDefault("MONGO_URI", ""),
				Database: getEnvOrDefault("MONGO_DATABASE", "rotation_engine"),
			},
			Redis: RedisConfig{
				Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getIntOrDefault("REDIS_DB", 0),
			},
		},
		Auth: AuthConfig{
			JWTSecret:            getEnvOrDefault("JWT_SECRET", ""),
			JWTExpiration:        getDurationOrDefault("JWT_EXPIRATION", 15*time.Minute),
			RefreshTokenExpiry:   getDurationOrDefault("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),
			BCryptCost:           getIntOrDefault("BCRYPT_COST", 10),
			OperatorUsername:     getEnvOrDefault("OPERATOR_USERNAME", ""),
			OperatorPasswordHash: getEnvOrDefault("OPERATOR_PASSWORD_HASH", ""),
		},
		Rotation: RotationConfig{
			DefaultFieldSize:          getIntOrDefault("ROTATION_DEFAULT_FIELD_SIZE", 7),
			DefaultSwapsPerChange:     getIntOrDefault("ROTATION_DEFAULT_SWAPS_PER_CHANGE", 1),
			MinAcceptableSubInterval:  getIntOrDefault("ROTATION_MIN_SUB_INTERVAL", 60),
			EndBufferSeconds:          getIntOrDefault("ROTATION_END_BUFFER", 30),
			MinFieldStintSeconds:      getIntOrDefault("ROTATION_MIN_FIELD_STINT", 180),
			MaxTickCatchupSeconds:     getIntOrDefault("ROTATION_MAX_TICK_CATCHUP", 10),
			MaxVisibilityCatchupSecs: getIntOrDefault("ROTATION_MAX_VISIBILITY_CATCHUP", 3600),
			ValidationIntervalSeconds: getIntOrDefault("ROTATION_VALIDATION_INTERVAL", 30),
			CheckIntervalSeconds:      getIntOrDefault("ROTATION_CHECK_INTERVAL", 15),
			LookAheadWindowSeconds:    getIntOrDefault("ROTATION_LOOKAHEAD_WINDOW", 60),
			VarianceGoalBalanced:      getFloatOrDefault("ROTATION_VARIANCE_GOAL_BALANCED", 60),
		},
		Features: FeatureFlags{
			EnableWebSocket:   getBoolOrDefault("ENABLE_WEBSOCKET", true),
			EnableEarlyWarn:   getBoolOrDefault("ENABLE_EARLY_WARNING", true),
			EnableAutoConfirm: getBoolOrDefault("ENABLE_AUTO_CONFIRM_ROTATIONS", false),
			MaintenanceMode:   getBoolOrDefault("MAINTENANCE_MODE", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.Database.MySQL.DSN == "" {
		return fmt.Errorf("MYSQL_DSN is required")
	}
	if c.Database.MongoDB.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Environment == "production" {
		if c.Auth.OperatorUsername == "" || c.Auth.OperatorPasswordHash == "" {
			return fmt.Errorf("OPERATOR_USERNAME and OPERATOR_PASSWORD_HASH are required in production")
		}
	}
	return nil
}

// Helper functions to read environment variables with defaults
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
