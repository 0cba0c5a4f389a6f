package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds every environment-derived setting. It is populated once by
// Load at startup and treated as immutable afterwards.
type Config struct {
	Environment      string `validate:"required,oneof=development production test staging"`
	Host             string `validate:"required"`
	Port             int    `validate:"gt=0,lte=65535"`
	Database         string `validate:"required"`
	TestDB           string `validate:"required"`
	DatabaseDialect  string `validate:"required"`
	DatabaseUser     string `validate:"required"`
	DatabasePassword string
	DatabaseURL      string
	Logging          LoggingConfig
}

type LoggingConfig struct {
	Level  string
	Format string
}

// envNames maps struct fields to the environment variables they come from,
// so validation failures can name the variable the operator must fix.
var envNames = map[string]string{
	"Environment":     "NODE_ENV",
	"Host":            "HOST",
	"Port":            "PORT",
	"Database":        "DATABASE",
	"TestDB":          "TEST_DB",
	"DatabaseDialect": "DATABASE_DIALECT",
	"DatabaseUser":    "DATABASE_USER",
}

// Load reads and validates the process environment. A missing or malformed
// required variable is fatal to startup: the caller is expected to abort.
func Load() (Config, error) {
	cfg := Config{
		Environment:      getEnv("NODE_ENV", ""),
		Host:             getEnv("HOST", ""),
		Port:             getEnvInt("PORT", 8080),
		Database:         getEnv("DATABASE", ""),
		TestDB:           getEnv("TEST_DB", "events_test_db"),
		DatabaseDialect:  getEnv("DATABASE_DIALECT", "postgres"),
		DatabaseUser:     getEnv("DATABASE_USER", ""),
		DatabasePassword: getEnv("DATABASE_PASSWORD", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		name := envNames[fieldErr.Field()]
		if name == "" {
			name = fieldErr.Field()
		}
		switch fieldErr.Tag() {
		case "required":
			msgs = append(msgs, name+" is required")
		case "oneof":
			msgs = append(msgs, name+" must be one of: "+fieldErr.Param())
		default:
			msgs = append(msgs, name+" failed rule "+fieldErr.Tag())
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// ConnString returns the database connection URL for the configured
// environment. An explicit DATABASE_URL wins; otherwise the URL is assembled
// from the individual parts. The test environment always targets TestDB so a
// misconfigured run can never touch a real database.
func (c Config) ConnString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	name := c.Database
	if c.Environment == "test" {
		name = c.TestDB
	}
	u := url.URL{
		Scheme: c.DatabaseDialect,
		Host:   c.Host,
		Path:   "/" + name,
	}
	if c.DatabasePassword != "" {
		u.User = url.UserPassword(c.DatabaseUser, c.DatabasePassword)
	} else {
		u.User = url.User(c.DatabaseUser)
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
