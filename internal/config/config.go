package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AppName    = "Fitness Tracking App"
	AppVersion = "1.0.0"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	DBUrl string `envconfig:"DB_URL"`

	JWTSecret    string        `envconfig:"JWT_SECRET" required:"true"`
	JWTAlgorithm string        `envconfig:"JWT_ALGORITHM" default:"HS256"`
	TokenTTL     time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"60m"`

	Argon2Memory      uint32 `envconfig:"ARGON2_MEMORY_KIB" default:"65536"`
	Argon2Time        uint32 `envconfig:"ARGON2_TIME" default:"3"`
	Argon2Parallelism uint8  `envconfig:"ARGON2_PARALLELISM" default:"2"`

	DefaultPageSize int `envconfig:"DEFAULT_PAGE_SIZE" default:"20"`
	MaxPageSize     int `envconfig:"MAX_PAGE_SIZE" default:"100"`

	AppEnv      string   `envconfig:"APP_ENV" default:"production"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	EnableDocs  bool     `envconfig:"ENABLE_API_DOCS" default:"false"`

	RateLimitMax     int           `envconfig:"RATE_LIMIT_MAX" default:"100"`
	RateLimitWindow  time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"60s"`
	RateLimitBackend string        `envconfig:"RATE_LIMIT_BACKEND" default:"memory"`
	RedisURL         string        `envconfig:"REDIS_URL"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	AuditTopic   string   `envconfig:"AUDIT_TOPIC" default:"fitness.audit"`

	StorageURL        string `envconfig:"STORAGE_URL"`
	StorageBucket     string `envconfig:"STORAGE_BUCKET" default:"workout-media"`
	StorageServiceKey string `envconfig:"STORAGE_SERVICE_KEY"`
	MaxUploadMB       int    `envconfig:"MAX_UPLOAD_SIZE_MB" default:"10"`

	TenantCacheTTL time.Duration `envconfig:"TENANT_CACHE_TTL" default:"5m"`

	DefaultAdminEmail    string `envconfig:"DEFAULT_ADMIN_EMAIL" default:"admin@fitnessapp.com"`
	DefaultAdminPassword string `envconfig:"DEFAULT_ADMIN_PASSWORD"`
}

var AllowedUploadTypes = map[string]string{
	"image/jpeg": "image",
	"image/png":  "image",
	"video/mp4":  "video",
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.AppEnv = normalizeEnv(cfg.AppEnv)
	cfg.RateLimitBackend = strings.ToLower(strings.TrimSpace(cfg.RateLimitBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch strings.ToUpper(c.JWTAlgorithm) {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("JWT_ALGORITHM %q is not supported", c.JWTAlgorithm)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if c.MaxPageSize < 1 {
		return fmt.Errorf("MAX_PAGE_SIZE must be at least 1")
	}
	if c.DefaultPageSize < 1 || c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be between 1 and %d", c.MaxPageSize)
	}
	if c.RateLimitMax < 1 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit requires RATE_LIMIT_MAX >= 1 and a positive RATE_LIMIT_WINDOW")
	}
	for _, origin := range c.CORSOrigins {
		if strings.TrimSpace(origin) == "*" {
			return fmt.Errorf("CORS_ORIGINS cannot contain \"*\" because credentials are allowed; list the origins explicitly")
		}
	}
	switch c.RateLimitBackend {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis rate limit backend")
		}
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be memory or redis")
	}
	return nil
}

func (c *Config) StorageEnabled() bool {
	return c != nil && c.StorageURL != "" && c.StorageBucket != "" && c.StorageServiceKey != ""
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

// DocsEnabled exposes /docs only on development deployments that opt in.
func (c *Config) DocsEnabled() bool {
	return c != nil && c.EnableDocs && c.AppEnv == "development"
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
