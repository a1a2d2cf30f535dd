package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "dev")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 60*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 20, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.StorageEnabled())
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes())
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigReadsOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("RATE_LIMIT_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "redis", cfg.RateLimitBackend)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			JWTSecret:        "secret",
			JWTAlgorithm:     "HS256",
			TokenTTL:         time.Hour,
			DefaultPageSize:  20,
			MaxPageSize:      100,
			RateLimitMax:     100,
			RateLimitWindow:  time.Minute,
			RateLimitBackend: "memory",
			CORSOrigins:      []string{"http://localhost:3000"},
		}
	}

	base := valid()
	require.NoError(t, base.Validate())

	cases := map[string]func(*Config){
		"unsupported algorithm": func(c *Config) { c.JWTAlgorithm = "RS256" },
		"zero ttl":              func(c *Config) { c.TokenTTL = 0 },
		"default above max":     func(c *Config) { c.DefaultPageSize = 150 },
		"zero default":          func(c *Config) { c.DefaultPageSize = 0 },
		"redis without url":     func(c *Config) { c.RateLimitBackend = "redis" },
		"unknown backend":       func(c *Config) { c.RateLimitBackend = "memcached" },
		"zero limit":            func(c *Config) { c.RateLimitMax = 0 },
		"wildcard cors origin":  func(c *Config) { c.CORSOrigins = []string{"https://app.example.com", " * "} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigRejectsWildcardOrigin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CORS_ORIGINS", "*")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS_ORIGINS")
}

func TestDocsEnabled(t *testing.T) {
	assert.True(t, (&Config{AppEnv: "development", EnableDocs: true}).DocsEnabled())
	assert.False(t, (&Config{AppEnv: "production", EnableDocs: true}).DocsEnabled())
	assert.False(t, (&Config{AppEnv: "development"}).DocsEnabled())
}

func TestNormalizeEnv(t *testing.T) {
	assert.Equal(t, "development", normalizeEnv("Local"))
	assert.Equal(t, "production", normalizeEnv("prod"))
	assert.Equal(t, "staging", normalizeEnv(" stage "))
	assert.Equal(t, "test", normalizeEnv("testing"))
	assert.Equal(t, "qa", normalizeEnv("QA"))
}
