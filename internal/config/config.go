package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string  `yaml:"port" env:"SERVER_PORT"`
		Mode           string  `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout    string  `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout   string  `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"SERVER_RATE_LIMIT_RPS"`
		RateLimitBurst int     `yaml:"rate_limit_burst" env:"SERVER_RATE_LIMIT_BURST"`
		StoragePath    string  `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
		Seed            bool   `yaml:"seed" env:"DB_SEED"`
	} `yaml:"database"`

	Auth struct {
		Required  bool   `yaml:"required" env:"AUTH_REQUIRED"`
		JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
		Issuer    string `yaml:"issuer" env:"AUTH_ISSUER"`
		TokenTTL  string `yaml:"token_ttl" env:"AUTH_TOKEN_TTL"`
	} `yaml:"auth"`

	Logging struct {
		Level      string `yaml:"level" env:"LOG_LEVEL"`
		Format     string `yaml:"format" env:"LOG_FORMAT"`
		File       string `yaml:"file" env:"LOG_FILE"`
		MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
		MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS"`
		MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS"`
		Compress   bool   `yaml:"compress" env:"LOG_COMPRESS"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "10s"
	config.Server.WriteTimeout = "10s"
	config.Server.RateLimitRPS = 50
	config.Server.RateLimitBurst = 100
	config.Server.StoragePath = "uploads"

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "edutrack"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"
	config.Database.Seed = false

	// Auth defaults: the portals still use a mock login, so tokens are optional
	config.Auth.Required = false
	config.Auth.Issuer = "edutrack.app"
	config.Auth.TokenTTL = "24h"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.MaxSizeMB = 100
	config.Logging.MaxBackups = 5
	config.Logging.MaxAgeDays = 30
	config.Logging.Compress = true
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	if config.Server.StoragePath == "" {
		return fmt.Errorf("server storage_path is required")
	}

	if config.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database max_open_conns must be positive")
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database conn_max_lifetime format: %w", err)
	}

	if _, err := time.ParseDuration(config.Server.ReadTimeout); err != nil {
		return fmt.Errorf("invalid server read_timeout format: %w", err)
	}

	if _, err := time.ParseDuration(config.Server.WriteTimeout); err != nil {
		return fmt.Errorf("invalid server write_timeout format: %w", err)
	}

	if _, err := time.ParseDuration(config.Auth.TokenTTL); err != nil {
		return fmt.Errorf("invalid auth token_ttl format: %w", err)
	}

	if config.Auth.Required && config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt_secret is required when auth is required")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
