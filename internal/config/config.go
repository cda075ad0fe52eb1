package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers understood by the API.
const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

var (
	// ErrMissingSigningSecret is returned when no token signing secret is configured.
	ErrMissingSigningSecret = errors.New("token signing secret is required")
	// ErrUnknownStoreDriver is returned for an unsupported STORE_DRIVER.
	ErrUnknownStoreDriver = errors.New("unknown store driver")
)

// Config aggregates runtime configuration for the FlickPick API.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	MinIO    MinIOConfig
	Auth     AuthConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	DocsPath       string
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StoreConfig selects the backing database for users and movies.
type StoreConfig struct {
	Driver string
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MongoConfig contains MongoDB connection details.
type MongoConfig struct {
	URI      string
	Database string
}

// MinIOConfig carries MinIO connection and poster bucket information.
type MinIOConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	PresignTTL      time.Duration
}

// AuthConfig groups authentication-related settings.
type AuthConfig struct {
	TokenSecret     string
	TokenTTL        time.Duration
	BcryptCost      int
	LoginRatePerMin int
	LoginBurst      int
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:           getString("FLICKPICK_API_HOST", "0.0.0.0"),
			Port:           getInt("PORT", 8080),
			ReadTimeout:    getDuration("FLICKPICK_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDuration("FLICKPICK_API_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getDuration("FLICKPICK_API_IDLE_TIMEOUT", 60*time.Second),
			AllowedOrigins: getList("FLICKPICK_ALLOWED_ORIGINS", defaultAllowedOrigins),
			DocsPath:       getString("FLICKPICK_DOCS_PATH", "public/documentation.html"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getString("STORE_DRIVER", StoreDriverMongo)),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "flickpick_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "flickpick"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		Mongo: MongoConfig{
			URI:      getString("CONNECTION_URI", "mongodb://localhost:27017"),
			Database: getString("MONGO_DB", "fpDB"),
		},
		MinIO: MinIOConfig{
			Enabled:         getBool("MINIO_ENABLED", true),
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "flickpick"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_POSTER_BUCKET", "posters"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
			PresignTTL:      getDuration("MINIO_PRESIGN_TTL", 15*time.Minute),
		},
		Auth: loadAuthConfig(),
		Metrics: MetricsConfig{
			PrometheusPath: getString("FLICKPICK_METRICS_PATH", "/metrics"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getString("LOG_LEVEL", "info")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration that cannot produce a working server.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.TokenSecret) == "" {
		return ErrMissingSigningSecret
	}
	switch c.Store.Driver {
	case StoreDriverMongo, StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStoreDriver, c.Store.Driver)
	}
	return nil
}

var defaultAllowedOrigins = []string{
	"http://localhost:8080",
	"http://localhost:4200",
	"http://localhost:1234",
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func loadAuthConfig() AuthConfig {
	cost := getInt("FLICKPICK_AUTH_BCRYPT_COST", 10)
	if cost < 4 || cost > 31 {
		cost = 10
	}

	return AuthConfig{
		TokenSecret:     getString("FLICKPICK_JWT_SECRET", ""),
		TokenTTL:        getDuration("FLICKPICK_AUTH_TOKEN_TTL", 7*24*time.Hour),
		BcryptCost:      cost,
		LoginRatePerMin: getInt("FLICKPICK_LOGIN_RATE_PER_MIN", 30),
		LoginBurst:      getInt("FLICKPICK_LOGIN_BURST", 5),
	}
}
