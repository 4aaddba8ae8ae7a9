package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is everything the server reads from the environment at startup.
type Config struct {
	Port        string
	DatabaseURL string
	FrontendURL string

	PlaidClientID string
	PlaidSecret   string
	PlaidEnv      string

	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string

	// DataEncryptionKey seals provider access tokens at rest.
	DataEncryptionKey string

	ImportWindowDays   int
	RateLimitPerMinute int
}

// Load reads the environment. Call godotenv first if a .env file should count.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		FrontendURL:            getEnv("FRONTEND_URL", "http://localhost:3000"),
		PlaidClientID:          os.Getenv("PLAID_CLIENT_ID"),
		PlaidSecret:            os.Getenv("PLAID_SECRET"),
		PlaidEnv:               getEnv("PLAID_ENV", "sandbox"),
		SupabaseURL:            os.Getenv("SUPABASE_URL"),
		SupabaseServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseJWTSecret:      os.Getenv("SUPABASE_JWT_SECRET"),
		DataEncryptionKey:      os.Getenv("DATA_ENCRYPTION_KEY"),
	}

	var err error
	if cfg.ImportWindowDays, err = getEnvInt("IMPORT_WINDOW_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getEnvInt("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.DataEncryptionKey == "" {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY environment variable is required")
	}
	if cfg.PlaidClientID == "" || cfg.PlaidSecret == "" {
		return nil, fmt.Errorf("PLAID_CLIENT_ID and PLAID_SECRET environment variables are required")
	}
	if cfg.SupabaseJWTSecret == "" && (cfg.SupabaseURL == "" || cfg.SupabaseServiceRoleKey == "") {
		return nil, fmt.Errorf("SUPABASE_JWT_SECRET or SUPABASE_URL with SUPABASE_SERVICE_ROLE_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}
