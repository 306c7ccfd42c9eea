package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultPort         = 3000
	DefaultMaxBodyBytes = 1_000_000
)

type Config struct {
	Port            int
	DataPath        string
	PublicDir       string
	MaxBodyBytes    int64
	LogLevel        string
	ShutdownTimeout time.Duration
	RateLimit       RateLimitConfig
}

// RateLimitConfig throttles PUT /api/info per client IP. RPS <= 0
// disables the limiter.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads configuration from the environment, after applying an
// optional .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("INFO_DATA_PATH", "data/store.json")
	v.SetDefault("INFO_PUBLIC_DIR", "public")
	v.SetDefault("INFO_MAX_BODY_BYTES", DefaultMaxBodyBytes)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("INFO_SHUTDOWN_TIMEOUT", "5s")
	v.SetDefault("INFO_RATE_LIMIT_RPS", 0)
	v.SetDefault("INFO_RATE_LIMIT_BURST", 5)

	maxBodyBytes := v.GetInt64("INFO_MAX_BODY_BYTES")
	if maxBodyBytes <= 0 {
		return nil, fmt.Errorf("invalid INFO_MAX_BODY_BYTES: %q", v.GetString("INFO_MAX_BODY_BYTES"))
	}

	shutdownTimeout := v.GetDuration("INFO_SHUTDOWN_TIMEOUT")
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}

	return &Config{
		Port:            parsePort(v.GetInt("PORT")),
		DataPath:        v.GetString("INFO_DATA_PATH"),
		PublicDir:       v.GetString("INFO_PUBLIC_DIR"),
		MaxBodyBytes:    maxBodyBytes,
		LogLevel:        v.GetString("LOG_LEVEL"),
		ShutdownTimeout: shutdownTimeout,
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("INFO_RATE_LIMIT_RPS"),
			Burst: v.GetInt("INFO_RATE_LIMIT_BURST"),
		},
	}, nil
}

// parsePort falls back to DefaultPort for unset, unparsable (viper yields
// 0) or out-of-range values.
func parsePort(port int) int {
	if port <= 0 || port > 65535 {
		return DefaultPort
	}
	return port
}
