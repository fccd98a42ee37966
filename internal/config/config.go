package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultServerPort     = "8000"
	defaultDatabaseURL    = "file:reviews.db"
	defaultUploadDir      = "./uploads"
	defaultUploadMount    = "uploads"
	defaultMaxUploadMB    = 5
	defaultRateLimitMax   = 30
	defaultRateLimitWin   = "60s"
	defaultServiceTokTTL  = "5m"
	defaultAPIBaseURL     = "http://localhost:8000"
	defaultRequestTimeout = "30s"

	StorageLocal = "local"
	StorageMinio = "minio"
)

// Config holds the API server configuration.
type Config struct {
	AppEnv      string
	ServerPort  string
	GinMode     string
	LogLevel    string
	LogFormat   string
	DatabaseURL string

	UploadDir      string
	UploadMount    string
	MaxUploadBytes int64
	StorageBackend string
	Minio          MinioConfig

	AllowedOrigins []string

	RateLimitMax    int
	RateLimitWindow time.Duration
	RedisAddr       string
	RedisPassword   string

	ServiceTokenSecret string
	MetricsEnabled     bool
}

// MinioConfig configures the optional S3-compatible asset backend.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ClientConfig holds settings for processes that call the API (bot, CLI).
type ClientConfig struct {
	APIBaseURL         string
	RequestTimeout     time.Duration
	ServiceTokenSecret string
	ServiceTokenTTL    time.Duration
	LogLevel           string
	LogFormat          string
}

// Load reads the server configuration from the environment.
// A .env file is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:      appEnv(),
		ServerPort:  strings.TrimSpace(getEnv("SERVER_PORT", defaultServerPort)),
		GinMode:     strings.TrimSpace(getEnv("GIN_MODE", "debug")),
		LogLevel:    strings.TrimSpace(getEnv("LOG_LEVEL", "info")),
		LogFormat:   strings.TrimSpace(getEnv("LOG_FORMAT", "pretty")),
		DatabaseURL: strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL)),

		UploadDir:      strings.TrimSpace(getEnv("UPLOAD_DIR", defaultUploadDir)),
		UploadMount:    strings.Trim(strings.TrimSpace(getEnv("UPLOAD_MOUNT", defaultUploadMount)), "/"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", defaultMaxUploadMB)) * 1024 * 1024,
		StorageBackend: strings.ToLower(strings.TrimSpace(getEnv("STORAGE_BACKEND", StorageLocal))),
		Minio: MinioConfig{
			Endpoint:  strings.TrimSpace(os.Getenv("MINIO_ENDPOINT")),
			AccessKey: strings.TrimSpace(os.Getenv("MINIO_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("MINIO_SECRET_KEY")),
			Bucket:    strings.TrimSpace(getEnv("MINIO_BUCKET", "review-images")),
			UseSSL:    parseBoolEnv("MINIO_USE_SSL", "false"),
		},

		AllowedOrigins: parseList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		RateLimitMax:  getEnvInt("RATE_LIMIT_MAX_REQUESTS", defaultRateLimitMax),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ServiceTokenSecret: strings.TrimSpace(os.Getenv("SERVICE_TOKEN_SECRET")),
		MetricsEnabled:     parseBoolEnv("METRICS_ENABLED", "true"),
	}

	var err error
	cfg.RateLimitWindow, err = parseDurationEnv("RATE_LIMIT_WINDOW", defaultRateLimitWin)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient reads the API client configuration from the environment.
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	cfg := &ClientConfig{
		APIBaseURL:         strings.TrimRight(strings.TrimSpace(getEnv("API_BASE_URL", defaultAPIBaseURL)), "/"),
		ServiceTokenSecret: strings.TrimSpace(os.Getenv("SERVICE_TOKEN_SECRET")),
		LogLevel:           strings.TrimSpace(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.TrimSpace(getEnv("LOG_FORMAT", "pretty")),
	}

	var err error
	cfg.RequestTimeout, err = parseDurationEnv("REQUEST_TIMEOUT", defaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	cfg.ServiceTokenTTL, err = parseDurationEnv("SERVICE_TOKEN_TTL", defaultServiceTokTTL)
	if err != nil {
		return nil, err
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL must not be empty")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if cfg.UploadMount == "" {
		return fmt.Errorf("UPLOAD_MOUNT must not be empty")
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be > 0")
	}
	switch cfg.StorageBackend {
	case StorageLocal:
	case StorageMinio:
		if cfg.Minio.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required when STORAGE_BACKEND=minio")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of: local, minio")
	}
	if cfg.RateLimitMax <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be > 0")
	}
	if cfg.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be > 0")
	}
	if IsProdLike(cfg.AppEnv) && cfg.ServiceTokenSecret == "" {
		return fmt.Errorf("in prod/release SERVICE_TOKEN_SECRET must be set")
	}
	return nil
}

// IsProdLike reports whether env names a production deployment.
func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func appEnv() string {
	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = strings.TrimSpace(os.Getenv("ENV"))
	}
	if env == "" {
		env = "dev"
	}
	return strings.ToLower(env)
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnvInt(name string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
