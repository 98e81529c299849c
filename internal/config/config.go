// Package config handles loading and validation of application configuration
// from environment variables. Supports .env files via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port        int
	Environment string // "development" | "staging" | "production"

	// Database (elections, complaints, clubs)
	DatabaseURL string

	// Redis (session store & admin access log)
	RedisURL string

	// Security
	JWTSecret      string
	AllowedOrigins []string
	RateLimitRPM   int

	// Institution settings
	InstitutionDomain string // email suffix, e.g. "dbu.edu.et"
	StudentIDPrefix   string // e.g. "DBU" in DBU1500962

	// Admin access log retention (entries kept, oldest evicted first)
	AdminLogRetention int

	// Optional bcrypt hash shared by all portal credentials. When empty the
	// mock verifier is used and any password/OTP is accepted.
	AdminPasswordHash string

	// Vote ledger rebuild interval (minutes)
	LedgerRebuildInterval int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),

		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"), ","),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 60),

		InstitutionDomain: getEnv("INSTITUTION_DOMAIN", "dbu.edu.et"),
		StudentIDPrefix:   getEnv("STUDENT_ID_PREFIX", "DBU"),

		AdminLogRetention: getEnvInt("ADMIN_LOG_RETENTION", 1000),

		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		LedgerRebuildInterval: getEnvInt("LEDGER_REBUILD_INTERVAL", 5),
	}

	// Validate required fields in production
	if cfg.Environment == "production" {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		if cfg.JWTSecret == "dev-secret-change-in-production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		if cfg.AdminPasswordHash == "" {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH must be set in production")
		}
	}

	if cfg.AdminLogRetention < 1 {
		return nil, fmt.Errorf("ADMIN_LOG_RETENTION must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
