package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	GBS       GBSConfig
	Host      HostConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Firebase  FirebaseConfig
	Scheduler SchedulerConfig
	App       AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// GBSConfig configures the Green Building Studio REST client
type GBSConfig struct {
	BaseURL   string
	TimeoutMs int
	RateLimit float64
	RateBurst int
}

// HostConfig locates the host CAD application
type HostConfig struct {
	// APIPath is the path of the host's main API binary. The SSO companion file lives next to it.
	APIPath      string
	SnapshotPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig holds the upload history database settings. DSN wins
// over the individual connection fields when both are set.
type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type FirebaseConfig struct {
	CredentialsPath string
}

type SchedulerConfig struct {
	ProjectCacheTTL     time.Duration
	ProjectCacheRefresh string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		GBS: GBSConfig{
			BaseURL:   getEnv("GBS_API_BASE_URL", "https://gbs.autodesk.com/gbs/api/v1"),
			TimeoutMs: getEnvAsInt("GBS_TIMEOUT_MS", 300000),
			RateLimit: getEnvAsFloat("GBS_RATE_LIMIT", 2),
			RateBurst: getEnvAsInt("GBS_RATE_BURST", 4),
		},
		Host: HostConfig{
			APIPath:      getEnv("HOST_API_PATH", ""),
			SnapshotPath: getEnv("HOST_SNAPSHOT_PATH", "document.yaml"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "energy"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Scheduler: SchedulerConfig{
			ProjectCacheTTL:     getEnvAsDuration("PROJECT_CACHE_TTL", 15*time.Minute),
			ProjectCacheRefresh: getEnv("PROJECT_CACHE_REFRESH", "@every 10m"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.GBS.BaseURL == "" {
		return fmt.Errorf("GBS_API_BASE_URL is required")
	}

	if c.GBS.TimeoutMs <= 0 {
		return fmt.Errorf("GBS_TIMEOUT_MS must be positive, got %d", c.GBS.TimeoutMs)
	}

	if c.GBS.RateLimit <= 0 || c.GBS.RateBurst <= 0 {
		return fmt.Errorf("GBS_RATE_LIMIT and GBS_RATE_BURST must be positive")
	}

	return nil
}

// Timeout returns the default per-call GBS timeout
func (c GBSConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// ConnString returns the postgres connection string, or "" when the
// database is not configured.
func (c DatabaseConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Host == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
