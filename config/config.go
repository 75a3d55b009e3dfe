package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application. It is loaded once at
// startup and handed to the components that need it.
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort     string
	ServerHost     string
	PublicBaseURL  string
	AllowedOrigins []string
	NotFoundPath   string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Pagination
	PageSize    int
	MaxPageSize int

	// Recipes
	ShortLinkLength     int
	MinCookingTime      int
	MinIngredientAmount int
	RecipeCreateLimit   int

	// Object storage
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PublicURL string

	// Logging
	LogLevel string
	LogJSON  bool
	LogFile  string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultJWTSecret = "dev-secret-change-me"
)

// LoadConfig reads .env (if present), environment variables and docker secrets
// into a validated Config.
func LoadConfig() (*Config, error) {
	// a missing .env is fine, deployments inject variables directly
	_ = godotenv.Load()

	env := GetEnvironment()
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := fromViper(v)
	cfg.Environment = env

	if env != CI {
		overlaySecrets(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("public_base_url", "")
	v.SetDefault("cors_allowed_origins", "http://localhost:3000")
	v.SetDefault("not_found_path", "/404")

	v.SetDefault("db_driver", DriverPostgres)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "foodgram")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "foodgram")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("sqlite_path", "foodgram.db")

	v.SetDefault("redis_host", "")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_url", "")

	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("token_ttl", "24h")

	v.SetDefault("page_size", 6)
	v.SetDefault("max_page_size", 100)

	v.SetDefault("short_link_length", 6)
	v.SetDefault("min_cooking_time", 1)
	v.SetDefault("min_ingredient_amount", 1)
	v.SetDefault("recipe_create_limit", 30)

	v.SetDefault("s3_bucket", "foodgram-media")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_public_url", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("log_file", "")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		ServerPort:     v.GetString("server_port"),
		ServerHost:     v.GetString("server_host"),
		PublicBaseURL:  strings.TrimRight(v.GetString("public_base_url"), "/"),
		AllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		NotFoundPath:   v.GetString("not_found_path"),

		DBDriver:   strings.ToLower(v.GetString("db_driver")),
		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetString("db_port"),
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),
		DBSSLMode:  v.GetString("db_ssl_mode"),
		SQLitePath: v.GetString("sqlite_path"),

		RedisHost:     v.GetString("redis_host"),
		RedisPort:     v.GetString("redis_port"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		RedisURL:      v.GetString("redis_url"),

		JWTSecret: v.GetString("jwt_secret"),
		TokenTTL:  v.GetDuration("token_ttl"),

		PageSize:    v.GetInt("page_size"),
		MaxPageSize: v.GetInt("max_page_size"),

		ShortLinkLength:     v.GetInt("short_link_length"),
		MinCookingTime:      v.GetInt("min_cooking_time"),
		MinIngredientAmount: v.GetInt("min_ingredient_amount"),
		RecipeCreateLimit:   v.GetInt("recipe_create_limit"),

		S3Bucket:    v.GetString("s3_bucket"),
		S3Region:    v.GetString("s3_region"),
		S3Endpoint:  v.GetString("s3_endpoint"),
		S3PublicURL: strings.TrimRight(v.GetString("s3_public_url"), "/"),

		LogLevel: v.GetString("log_level"),
		LogJSON:  v.GetBool("log_json"),
		LogFile:  v.GetString("log_file"),
	}
}

// overlaySecrets replaces sensitive values with docker secrets when they exist.
func overlaySecrets(cfg *Config) {
	if s := readSecret("db_user"); s != "" {
		cfg.DBUser = s
	}
	if s := readSecret("db_password"); s != "" {
		cfg.DBPassword = s
	}
	if s := readSecret("jwt_secret"); s != "" {
		cfg.JWTSecret = s
	}
	if s := readSecret("redis_password"); s != "" {
		cfg.RedisPassword = s
	}
	if s := readSecret("redis_url"); s != "" {
		cfg.RedisURL = s
	}
}

// RedisEnabled reports whether a redis endpoint has been configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
