package config

import (
	"errors"
	"fmt"
	"strings"
)

// Short-link tokens are drawn from 62 symbols. Four characters keep the
// namespace above fourteen million tokens; sixteen is the column width.
const (
	MinShortLinkLength = 4
	MaxShortLinkLength = 16
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the configuration for the environment it was loaded in.
// All problems are reported together.
func ValidateConfig(cfg *Config) error {
	var errs []error
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "is required")
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBHost == "" {
			add("DB_HOST", "is required for postgres")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required for postgres")
		}
		if cfg.DBUser == "" {
			add("DB_USER", "is required for postgres")
		}
		if cfg.Environment.IsProduction() && cfg.DBPassword == "" {
			add("DB_PASSWORD", "db_password secret is required in production")
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for sqlite")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "is required")
	} else if cfg.Environment.IsProduction() && cfg.JWTSecret == defaultJWTSecret {
		add("JWT_SECRET", "the development default cannot be used in production")
	}
	if cfg.TokenTTL <= 0 {
		add("TOKEN_TTL", "must be positive")
	}

	if cfg.PageSize < 1 {
		add("PAGE_SIZE", "must be at least 1")
	}
	if cfg.MaxPageSize < cfg.PageSize {
		add("MAX_PAGE_SIZE", "must not be smaller than PAGE_SIZE")
	}

	if cfg.ShortLinkLength < MinShortLinkLength || cfg.ShortLinkLength > MaxShortLinkLength {
		add("SHORT_LINK_LENGTH", fmt.Sprintf("must be between %d and %d", MinShortLinkLength, MaxShortLinkLength))
	}
	if cfg.MinCookingTime < 1 {
		add("MIN_COOKING_TIME", "must be at least 1")
	}
	if cfg.MinIngredientAmount < 1 {
		add("MIN_INGREDIENT_AMOUNT", "must be at least 1")
	}
	if cfg.RecipeCreateLimit < 0 {
		add("RECIPE_CREATE_LIMIT", "must not be negative")
	}

	if cfg.NotFoundPath == "" || !strings.HasPrefix(cfg.NotFoundPath, "/") {
		add("NOT_FOUND_PATH", "must be an absolute path")
	}

	return errors.Join(errs...)
}
