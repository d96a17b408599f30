package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Secret SecretConfig
	AI     AIConfig
	CORS   CORSConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// SecretConfig holds the application secret used to derive the API key cipher.
type SecretConfig struct {
	AppKey string `mapstructure:"app_key"`
}

// AIConfig holds gateway-wide generation settings.
type AIConfig struct {
	// CallTimeout bounds a single provider call when the request carries no
	// per-call timeout.
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the MUSUBI_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MUSUBI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "musubi")
	v.SetDefault("db.password", "musubi_secret")
	v.SetDefault("db.name", "musubi_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Secret defaults
	v.SetDefault("secret.app_key", "change-me-in-production")

	// AI defaults
	v.SetDefault("ai.call_timeout", "50s")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "MUSUBI_SERVER_PORT",
		"server.read_timeout":  "MUSUBI_SERVER_READ_TIMEOUT",
		"server.write_timeout": "MUSUBI_SERVER_WRITE_TIMEOUT",
		"server.environment":   "MUSUBI_SERVER_ENVIRONMENT",
		"db.host":              "MUSUBI_DB_HOST",
		"db.port":              "MUSUBI_DB_PORT",
		"db.user":              "MUSUBI_DB_USER",
		"db.password":          "MUSUBI_DB_PASSWORD",
		"db.name":              "MUSUBI_DB_NAME",
		"db.sslmode":           "MUSUBI_DB_SSLMODE",
		"db.max_open":          "MUSUBI_DB_MAX_OPEN",
		"db.max_idle":          "MUSUBI_DB_MAX_IDLE",
		"secret.app_key":       "MUSUBI_SECRET_APP_KEY",
		"ai.call_timeout":      "MUSUBI_AI_CALL_TIMEOUT",
		"log.level":            "MUSUBI_LOG_LEVEL",
		"log.format":           "MUSUBI_LOG_FORMAT",
		"cors.allowed_origins": "MUSUBI_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Comma-separated origins arrive as a single string through env vars.
	if len(cfg.CORS.AllowedOrigins) == 1 && strings.Contains(cfg.CORS.AllowedOrigins[0], ",") {
		cfg.CORS.AllowedOrigins = strings.Split(cfg.CORS.AllowedOrigins[0], ",")
	}

	return &cfg, nil
}
