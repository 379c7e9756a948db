package config

import (
	"os"
	"strconv"
	"time"
)

// Supported values for STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// StoreConfig selects the backend that holds the book collection.
type StoreConfig struct {
	Driver       string
	OpTimeoutSec int
}

// OpTimeout returns the per-operation deadline applied to store round trips.
func (s StoreConfig) OpTimeout() time.Duration {
	if s.OpTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.OpTimeoutSec) * time.Second
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI               string
	Database          string
	Collection        string
	AuthorsCollection string
	ConnectTimeoutSec int
}

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ExportConfig controls snapshot exports to object storage.
type ExportConfig struct {
	Prefix       string
	URLExpiryMin int
}

// LogConfig controls structured log output.
type LogConfig struct {
	Level    string
	Timezone string
}

// Location resolves the configured timezone, falling back to UTC.
func (l LogConfig) Location() *time.Location {
	if l.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost         string
	Port            string
	ValidateAuthors bool
	Store           StoreConfig
	Mongo           MongoConfig
	Database        DatabaseConfig
	MinIO           MinIOConfig
	Export          ExportConfig
	Log             LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:         getEnv("APP_HOST", "localhost:8080"),
		Port:            getEnv("PORT", "8080"),
		ValidateAuthors: getEnvBool("VALIDATE_AUTHORS", false),
		Store: StoreConfig{
			Driver:       getEnv("STORE_DRIVER", DriverMongo),
			OpTimeoutSec: getEnvInt("STORE_OP_TIMEOUT_SEC", 10),
		},
		Mongo: MongoConfig{
			URI:               getEnv("MONGO_URI", "mongodb://localhost:27017/"),
			Database:          getEnv("MONGO_DATABASE", "library"),
			Collection:        getEnv("MONGO_COLLECTION", "books"),
			AuthorsCollection: getEnv("MONGO_AUTHORS_COLLECTION", "authors"),
			ConnectTimeoutSec: getEnvInt("MONGO_CONNECT_TIMEOUT_SEC", 5),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Export: ExportConfig{
			Prefix:       getEnv("EXPORT_PREFIX", "exports"),
			URLExpiryMin: getEnvInt("EXPORT_URL_EXPIRY_MIN", 60),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Timezone: getEnv("LOG_TIMEZONE", "UTC"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
