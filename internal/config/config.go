package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port        string   `envconfig:"PORT" default:"3000"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	// Database configuration
	DBType            string `envconfig:"DB_TYPE" default:"memory" desc:"memory, sqlite, mysql, mariadb, postgres, sqlserver"`
	DBHost            string `envconfig:"DB_HOST" default:"localhost"`
	DBPort            string `envconfig:"DB_PORT" default:"3306"`
	DBDatabase        string `envconfig:"DB_DATABASE" default:"archhub"`
	DBUser            string `envconfig:"DB_USER"`
	DBPassword        string `envconfig:"DB_PASSWORD"`
	DBConnectionLimit int    `envconfig:"DB_CONNECTION_LIMIT" default:"5"`
	SeedFixtures      bool   `envconfig:"SEED_FIXTURES" default:"true" desc:"Load the embedded catalogue fixtures into an empty database"`

	// Authorizer configuration, auth is disabled when AuthzURL is empty
	AuthzURL      string `envconfig:"AUTHZ_URL"`
	AuthzClientID string `envconfig:"AUTHZ_CLIENT_ID"`

	// Form drafts
	DraftStore    string `envconfig:"DRAFT_STORE" default:"database" desc:"database or redis"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Catalogue
	CatalogueIDPrefix string `envconfig:"CATALOGUE_ID_PREFIX" default:"TA"`

	// Logging
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogPrettyPrint bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// Load reads an optional .env file (ENV_FILE, default ".env") and then the
// process environment.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *Config) validate() error {
	cfg.DBType = strings.ToLower(cfg.DBType)
	switch cfg.DBType {
	case "memory", "sqlite", "mysql", "mariadb", "postgres", "postgresql", "sqlserver", "mssql":
	default:
		return fmt.Errorf("unsupported DB_TYPE: %s", cfg.DBType)
	}

	switch cfg.DBType {
	case "mysql", "mariadb", "postgres", "postgresql", "sqlserver", "mssql":
		if cfg.DBUser == "" {
			return fmt.Errorf("DB_USER is required for DB_TYPE %s", cfg.DBType)
		}
	}

	switch cfg.DraftStore {
	case "database":
	case "redis":
		if cfg.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when DRAFT_STORE is redis")
		}
	default:
		return fmt.Errorf("unsupported DRAFT_STORE: %s", cfg.DraftStore)
	}

	if cfg.AuthzURL != "" && cfg.AuthzClientID == "" {
		return fmt.Errorf("AUTHZ_CLIENT_ID is required when AUTHZ_URL is set")
	}

	return nil
}

// AuthEnabled reports whether mutating routes require an authorised session.
func (cfg *Config) AuthEnabled() bool {
	return cfg.AuthzURL != ""
}
