package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL connection settings. An empty Host selects the in-memory store.
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
	// ApplicationName is reported to Postgres so sessions show up per service in pg_stat_activity.
	ApplicationName string
	// PingAttempts bounds how often start-up pings the database before giving up.
	PingAttempts int
}

// Enabled reports whether a Postgres database is configured.
func (c DatabaseConfig) Enabled() bool { return c.Host != "" }

// MinIOConfig holds the object storage settings used for exports.
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PresignExpiry time.Duration
}

// Enabled reports whether an object store is configured.
func (c MinIOConfig) Enabled() bool { return c.Endpoint != "" }

// RedisConfig holds the KV settings. An empty Addr selects the in-memory KV.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// SheetsConfig configures the Google Sheets collaborator.
type SheetsConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// StoreConfig tunes the simulated latency of asynchronous store mutations.
type StoreConfig struct {
	Latency time.Duration
	Jitter  time.Duration
	Seed    bool
}

// SearchConfig tunes the global search.
type SearchConfig struct {
	Debounce    time.Duration
	SessionIdle time.Duration
	PerKind     int
}

// LogConfig selects the zap logger level and encoding.
type LogConfig struct {
	Level  string
	Format string
}

// LocaleConfig lists the display languages. The first one is the default.
type LocaleConfig struct {
	Supported []string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	ServiceName string
	AppHost     string
	Port        string
	Database    DatabaseConfig
	MinIO       MinIOConfig
	Redis       RedisConfig
	Sheets      SheetsConfig
	Store       StoreConfig
	Search      SearchConfig
	Log         LogConfig
	Locale      LocaleConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	serviceName := getEnv("SERVICE_NAME", "pharmadash")
	return &AppConfig{
		ServiceName: serviceName,
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"),
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
			ApplicationName:    serviceName,
			PingAttempts:       getEnvInt("DB_PING_ATTEMPTS", 3),
		},
		MinIO: MinIOConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", "pharmadash-exports"),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PresignExpiry: time.Duration(getEnvInt("EXPORT_URL_EXPIRY_SEC", 900)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Sheets: SheetsConfig{
			BaseURL:  getEnv("SHEETS_BASE_URL", "https://docs.google.com"),
			Timeout:  time.Duration(getEnvInt("SHEETS_TIMEOUT_SEC", 10)) * time.Second,
			CacheTTL: time.Duration(getEnvInt("SHEETS_CACHE_TTL_SEC", 0)) * time.Second,
		},
		Store: StoreConfig{
			Latency: time.Duration(getEnvInt("STORE_LATENCY_MS", 300)) * time.Millisecond,
			Jitter:  time.Duration(getEnvInt("STORE_JITTER_MS", 0)) * time.Millisecond,
			Seed:    getEnvBool("SEED_DATA", false),
		},
		Search: SearchConfig{
			Debounce:    time.Duration(getEnvInt("SEARCH_DEBOUNCE_MS", 500)) * time.Millisecond,
			SessionIdle: time.Duration(getEnvInt("SEARCH_SESSION_IDLE_SEC", 600)) * time.Second,
			PerKind:     getEnvInt("SEARCH_PER_KIND", 20),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Locale: LocaleConfig{
			Supported: localeList(getEnv("DEFAULT_LOCALE", "en"), getEnv("SUPPORTED_LOCALES", "en,de,fr,es,hi")),
		},
	}
}

// localeList puts def first, followed by the other entries of list.
func localeList(def, list string) []string {
	out := []string{def}
	for _, v := range strings.Split(list, ",") {
		v = strings.TrimSpace(v)
		if v != "" && v != def {
			out = append(out, v)
		}
	}
	return out
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
