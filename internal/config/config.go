package config

import (
	"log"
	"os"
	"strings"
)

const (
	defaultEnv       = "development"
	defaultDBPath    = "./estimator.db"
	defaultPort      = "8080"
	defaultStaticDir = "web/static"
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
	defaultMigrDir   = "migrations"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env           string
	Port          string
	DBPath        string
	MigrationsDir string
	// CatalogPath points at a JSON or YAML pricing file. When empty the
	// catalog is read from the database.
	CatalogPath string
	StaticDir   string
	LogLevel    string
	LogFormat   string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("warning: read .env: %v", err)
	}

	cfg := Config{
		Env:           os.Getenv("APP_ENV"),
		Port:          os.Getenv("PORT"),
		DBPath:        os.Getenv("DB_PATH"),
		MigrationsDir: os.Getenv("MIGRATIONS_DIR"),
		CatalogPath:   os.Getenv("CATALOG_PATH"),
		StaticDir:     os.Getenv("STATIC_DIR"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogFormat:     os.Getenv("LOG_FORMAT"),
	}

	setDefault(&cfg.Env, defaultEnv)
	setDefault(&cfg.Port, defaultPort)
	setDefault(&cfg.DBPath, defaultDBPath)
	setDefault(&cfg.MigrationsDir, defaultMigrDir)
	setDefault(&cfg.StaticDir, defaultStaticDir)
	setDefault(&cfg.LogLevel, defaultLogLevel)
	setDefault(&cfg.LogFormat, defaultLogFormat)

	return cfg
}

// IsDev reports whether the app runs in a development environment, where
// migrations and the seed run automatically on startup.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local":
		return true
	}
	return false
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
