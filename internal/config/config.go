// Package config provides configuration management for the cache service.
// It handles loading configuration from environment variables with sensible defaults
// and validates the configuration to ensure the application starts safely.
//
// The cache runs either fully in process (memory backend) or forwards every
// operation to Redis (redis backend). An optional reaper purges expired objects
// from the memory backend on a cron schedule.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level - debug, info, warn or error (default: info)
//   - TLS_CERT_FILE / TLS_KEY_FILE: Serve HTTPS when both are set
//
// Cache Configuration:
//   - CACHE_BACKEND: Backend type - "memory" or "redis" (default: memory)
//   - CACHE_MAX_CONTAINER_LEN: Max fields per hash / members per set, 0 for unlimited (default: 0)
//   - CACHE_KEY_PREFIX: Prefix added to every Redis key (default: empty)
//
// Redis Configuration (used when CACHE_BACKEND=redis):
//   - REDIS_ADDRESS: Redis server address (default: localhost:6379)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//
// Reaper:
//   - REAPER_ENABLED: Periodically purge expired objects (default: false)
//   - REAPER_SCHEDULE: Cron spec or descriptor such as "@every 1m" (default: @every 1m)
//
// Example usage:
//
//	cfg := config.Load()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"mouscache/internal/common/errors"
)

// Config holds all configuration values for the cache service. Each field's
// env tag names the environment variable it is loaded from.
type Config struct {
	// Application settings
	Port     int    `env:"PORT" validate:"min=1,max=65535"`
	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`

	TLSCertFile string `env:"TLS_CERT_FILE" validate:"required_with=TLSKeyFile"`
	TLSKeyFile  string `env:"TLS_KEY_FILE" validate:"required_with=TLSCertFile"`

	// Cache settings
	CacheBackend    string `env:"CACHE_BACKEND" validate:"oneof=memory redis"`
	MaxContainerLen int    `env:"CACHE_MAX_CONTAINER_LEN" validate:"min=0"`
	KeyPrefix       string `env:"CACHE_KEY_PREFIX"`

	// Redis settings
	RedisAddress  string `env:"REDIS_ADDRESS" validate:"required_if=CacheBackend redis,omitempty,hostname_port"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" validate:"min=0,max=15"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" validate:"min=1"`

	// Reaper settings
	ReaperEnabled  bool   `env:"REAPER_ENABLED"`
	ReaperSchedule string `env:"REAPER_SCHEDULE" validate:"required_if=ReaperEnabled true,omitempty,cronspec"`
}

// Load creates a new Config from environment variables, falling back to
// defaults for unset or unparsable values. It does not validate.
func Load() *Config {
	return &Config{
		Port:     getIntEnv("PORT", 8080),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		CacheBackend:    strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
		MaxContainerLen: getIntEnv("CACHE_MAX_CONTAINER_LEN", 0),
		KeyPrefix:       getEnv("CACHE_KEY_PREFIX", ""),

		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		RedisPoolSize: getIntEnv("REDIS_POOL_SIZE", 10),

		ReaperEnabled:  getBoolEnv("REAPER_ENABLED", false),
		ReaperSchedule: getEnv("REAPER_SCHEDULE", "@every 1m"),
	}
}

// getEnv retrieves an environment variable value or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves an integer environment variable, returning defaultValue
// when it is unset or not a base-10 integer.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getBoolEnv retrieves a boolean environment variable value or returns a default value.
//
// This function accepts common boolean representations:
//   - "true", "1", "t", "TRUE", "True" -> true
//   - "false", "0", "f", "FALSE", "False" -> false
//   - Any other value or parsing error -> returns defaultValue
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// IsRedis reports whether the redis backend is selected.
func (c *Config) IsRedis() bool {
	return c.CacheBackend == "redis"
}

// Validate checks every field against its validate tag and reports all
// failures at once as a config error naming the offending variables.
func (c *Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ConfigError(err.Error())
	}

	messages := make([]string, len(fieldErrors))
	for i, fe := range fieldErrors {
		messages[i] = describe(fe)
	}
	return errors.ConfigError(fmt.Sprintf("invalid configuration: %s", strings.Join(messages, "; ")))
}

func newValidator() *validator.Validate {
	v := validator.New()

	// Report environment variable names instead of struct field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})

	_ = v.RegisterValidation("cronspec", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})

	return v
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "required_if":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", fe.Field(), envName(fe.Param()))
	case "hostname_port":
		return fmt.Sprintf("%s must be a host:port address, got %q", fe.Field(), fe.Value())
	case "cronspec":
		return fmt.Sprintf("%s must be a valid cron schedule, got %q", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
	}
}

// envName maps a struct field name used in a cross-field tag back to its
// environment variable.
func envName(field string) string {
	if f, ok := reflect.TypeOf(Config{}).FieldByName(field); ok {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
	}
	return field
}
