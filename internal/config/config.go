package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads an optional yaml file and applies env overrides on top.
// A .env file is honored when present so local runs match deploys.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App:     AppConfig{Name: "courtops", Environment: "development"},
		HTTP:    HTTPConfig{Port: 8080},
		JWT:     JWTConfig{TokenTTL: 24 * time.Hour},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.HTTP.Port = p
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Environment = v
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database dsn is empty (set DATABASE_URL or database.dsn)")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is empty (set JWT_SECRET or jwt.secret)")
	}

	return cfg, nil
}
