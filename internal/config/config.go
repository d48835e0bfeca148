package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds relational database connection settings.
// Driver selects the backend: "postgres" (default) or "sqlite".
type DatabaseConfig struct {
	Driver             string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	SQLitePath         string
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AnalysisConfig configures the remote vision/text model.
// APIKey is the only required credential; an empty key disables analysis without failing startup.
type AnalysisConfig struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	TimeoutSec int
}

// UploadConfig bounds what the ingestion pipeline accepts.
type UploadConfig struct {
	MaxBytes     int64
	AllowedTypes []string
}

// RedisConfig configures the optional search interpretation cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTLSec   int
}

// RateLimitConfig configures per-IP limits on the expensive endpoints.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level    string
	Pretty   bool
	Timezone string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost          string
	Port             string
	Log              LogConfig
	Database         DatabaseConfig
	MinIO            MinIOConfig
	Analysis         AnalysisConfig
	Upload           UploadConfig
	Redis            RedisConfig
	RateLimit        RateLimitConfig
	KeywordRulesFile string
	PricingFile      string
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Pretty:   getEnvBool("LOG_PRETTY", false),
			Timezone: getEnv("APP_TIMEZONE", "UTC"),
		},
		Database: DatabaseConfig{
			Driver:             getEnv("DB_DRIVER", "postgres"),
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			SQLitePath:         getEnv("SQLITE_PATH", "docvault.db"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Analysis: AnalysisConfig{
			Provider:   getEnv("ANALYSIS_PROVIDER", "gemini"),
			APIKey:     getEnv("ANALYSIS_API_KEY", ""),
			Model:      getEnv("ANALYSIS_MODEL", ""),
			BaseURL:    getEnv("ANALYSIS_BASE_URL", ""),
			TimeoutSec: getEnvInt("ANALYSIS_TIMEOUT_SEC", 60),
		},
		Upload: UploadConfig{
			MaxBytes:     int64(getEnvInt("UPLOAD_MAX_BYTES", 10*1024*1024)),
			AllowedTypes: getEnvList("UPLOAD_ALLOWED_TYPES", []string{"application/pdf"}),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTLSec:   getEnvInt("SEARCH_CACHE_TTL_SEC", 3600),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvFloat("RATE_LIMIT_RPS", 2),
			Burst: getEnvInt("RATE_LIMIT_BURST", 5),
		},
		KeywordRulesFile: getEnv("KEYWORD_RULES_FILE", ""),
		PricingFile:      getEnv("PRICING_FILE", ""),
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

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
