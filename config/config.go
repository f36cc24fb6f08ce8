package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	OpenFoodFacts OpenFoodFactsConfig
	Cache         CacheConfig
	RateLimit     RateLimitConfig
	Assessment    AssessmentConfig
	Logging       LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OpenFoodFactsConfig holds OpenFoodFacts API configuration
type OpenFoodFactsConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // only "memory" for now
	TTL  time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration, in requests per minute
type RateLimitConfig struct {
	PerIP         int `mapstructure:"per_ip"`
	OpenFoodFacts int `mapstructure:"openfoodfacts"`
}

// AssessmentConfig holds batch assessment limits
type AssessmentConfig struct {
	BatchConcurrency int `mapstructure:"batch_concurrency"`
	MaxBatchSize     int `mapstructure:"max_batch_size"`
}

// LoggingConfig holds log output configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// .env values never override variables already set in the environment
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nichefood/")

	// Environment variable settings: server.port -> NICHEFOOD_SERVER_PORT
	v.SetEnvPrefix("NICHEFOOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// OpenFoodFacts defaults
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "NicheFood/1.0")
	v.SetDefault("openfoodfacts.timeout", "10s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.openfoodfacts", 100)

	// Assessment defaults
	v.SetDefault("assessment.batch_concurrency", 4)
	v.SetDefault("assessment.max_batch_size", 25)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required (set NICHEFOOD_SERVER_PORT)")
	}

	if config.OpenFoodFacts.BaseURL == "" {
		return fmt.Errorf("OpenFoodFacts base URL is required (set NICHEFOOD_OPENFOODFACTS_BASE_URL)")
	}

	if config.OpenFoodFacts.Timeout <= 0 {
		return fmt.Errorf("OpenFoodFacts timeout must be positive, got: %s", config.OpenFoodFacts.Timeout)
	}

	if config.Cache.Type != "memory" {
		return fmt.Errorf("cache type must be 'memory', got: %s", config.Cache.Type)
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %s", config.Cache.TTL)
	}

	if config.RateLimit.PerIP <= 0 || config.RateLimit.OpenFoodFacts <= 0 {
		return fmt.Errorf("rate limits must be positive, got per_ip=%d openfoodfacts=%d",
			config.RateLimit.PerIP, config.RateLimit.OpenFoodFacts)
	}

	if config.Assessment.BatchConcurrency <= 0 {
		return fmt.Errorf("batch concurrency must be positive, got: %d", config.Assessment.BatchConcurrency)
	}

	if config.Assessment.MaxBatchSize <= 0 {
		return fmt.Errorf("max batch size must be positive, got: %d", config.Assessment.MaxBatchSize)
	}

	if config.Logging.Format != "text" && config.Logging.Format != "json" {
		return fmt.Errorf("logging format must be 'text' or 'json', got: %s", config.Logging.Format)
	}

	return nil
}

// loadEnvFile loads ./.env into the process environment.
// A missing file is not an error. Existing variables win.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
