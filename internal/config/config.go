package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// MaxFeeBps caps the configurable platform fee at 10%.
const MaxFeeBps = 1000

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Platform  PlatformConfig
	Payout    PayoutConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// PlatformConfig holds the trading defaults. Fee bps and recipient are
// startup defaults; the live values are owned by the system_setting
// table and adjustable through the admin API.
type PlatformConfig struct {
	FeeBps            int64
	FeeRecipient      string
	MinPurchaseShares int64
	AdminAccountID    string
}

// PayoutConfig holds the external payout provider configuration.
// When URL is empty the service runs with internal settlement only.
type PayoutConfig struct {
	URL       string
	FernetKey string
}

// SchedulerConfig holds cron specs for the background jobs.
type SchedulerConfig struct {
	Enabled              bool
	SettlementRetrySpec  string
	SnapshotRefreshSpec  string
	SettlementMaxRetries int
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	feeBps, err := getEnvInt64("PLATFORM_FEE_BPS", 250)
	if err != nil {
		return nil, err
	}
	if feeBps < 0 || feeBps > MaxFeeBps {
		return nil, fmt.Errorf("PLATFORM_FEE_BPS must be between 0 and %d, got %d", MaxFeeBps, feeBps)
	}

	minShares, err := getEnvInt64("MIN_PURCHASE_SHARES", 1)
	if err != nil {
		return nil, err
	}
	if minShares < 1 {
		return nil, fmt.Errorf("MIN_PURCHASE_SHARES must be at least 1, got %d", minShares)
	}

	maxRetries, err := getEnvInt64("SETTLEMENT_MAX_RETRIES", 5)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/share_ledger.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Platform: PlatformConfig{
			FeeBps:            feeBps,
			FeeRecipient:      getEnv("PLATFORM_FEE_RECIPIENT", ""),
			MinPurchaseShares: minShares,
			AdminAccountID:    getEnv("ADMIN_ACCOUNT_ID", ""),
		},
		Payout: PayoutConfig{
			URL:       getEnv("PAYOUT_PROVIDER_URL", ""),
			FernetKey: getEnv("FERNET_KEY", ""),
		},
		Scheduler: SchedulerConfig{
			Enabled:              getEnv("SCHEDULER_ENABLED", "true") == "true",
			SettlementRetrySpec:  getEnv("SETTLEMENT_RETRY_SPEC", "@every 1m"),
			SnapshotRefreshSpec:  getEnv("SNAPSHOT_REFRESH_SPEC", "@every 10m"),
			SettlementMaxRetries: int(maxRetries),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt64 gets an integer environment variable or returns a default value
func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return parsed, nil
}
