package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     string
	DBConn   string
	LogLevel string
	// Secret signs JWTs in the token deployment and session cookies in
	// the session deployment.
	Secret string

	// Session store. Empty RedisURL selects the in-memory store.
	RedisURL string

	// SMTP settings for the ops digest. The digest is disabled unless
	// SMTPHost, SenderEmail and OpsEmail are all set.
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SenderEmail    string
	OpsEmail       string
	DigestSchedule string
}

// NewConfig loads configuration from environment variables. A .env file
// in the working directory is loaded first when present.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBConn:         getEnv("DB_CONN", ""),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		Secret:         getEnv("SECRET", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", ""),
		OpsEmail:       getEnv("OPS_EMAIL", ""),
		DigestSchedule: getEnv("DIGEST_SCHEDULE", "0 8 * * *"),
	}

	if cfg.Port == "" {
		return nil, fmt.Errorf("PORT is required")
	}
	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.Secret == "" {
		return nil, fmt.Errorf("SECRET is required")
	}

	return cfg, nil
}

// DigestEnabled reports whether the ops digest has enough configuration
// to run.
func (c *Config) DigestEnabled() bool {
	return c.SMTPHost != "" && c.SenderEmail != "" && c.OpsEmail != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
