// Package config resolves runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by FromEnv.
const (
	EnvDB            = "LEXISCREEN_DB"
	EnvRedisAddr     = "LEXISCREEN_REDIS_ADDR"
	EnvRedisPassword = "LEXISCREEN_REDIS_PASSWORD"
	EnvRedisDB       = "LEXISCREEN_REDIS_DB"
	EnvLogMode       = "LEXISCREEN_LOG_MODE"
	EnvHTTPAddr      = "LEXISCREEN_HTTP_ADDR"
)

const (
	DefaultLogMode  = "quiet"
	DefaultHTTPAddr = ":8080"
)

// Config holds resolved settings. An empty DBPath means the default
// location; an empty RedisAddr disables the Redis mirror.
type Config struct {
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LogMode       string
	HTTPAddr      string
}

// RedisEnabled reports whether results are mirrored to Redis.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv builds a Config from the process environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:        os.Getenv(EnvDB),
		RedisAddr:     strings.TrimPrefix(os.Getenv(EnvRedisAddr), "redis://"),
		RedisPassword: os.Getenv(EnvRedisPassword),
		LogMode:       envOr(EnvLogMode, DefaultLogMode),
		HTTPAddr:      envOr(EnvHTTPAddr, DefaultHTTPAddr),
	}

	if v := os.Getenv(EnvRedisDB); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s: invalid database number %q", EnvRedisDB, v)
		}
		cfg.RedisDB = n
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
