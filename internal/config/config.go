package config

import (
	"os"      // For environment variables
	"strconv" // For string conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort            string        // Application port
	DBUser             string        // Database user
	DBPassword         string        // Database password
	DBHost             string        // Database host
	DBPort             string        // Database port
	DBName             string        // Database name
	RedisAddr          string        // Redis server address
	RedisPass          string        // Redis password
	RedisDB            int           // Redis database number
	AdminAPIKey        string        // Fixed secret gating the statistics endpoint
	APIKeySecret       string        // HS256 secret used to sign issued api keys
	FeeRate            float64       // Fraction of a cross-owner transfer retained as fee
	WalletLimit        int           // Maximum wallets per owner
	StartingBalanceBTC float64       // Balance a new wallet opens with
	RateAPIURL         string        // External BTC/USD price feed endpoint
	RateCacheTTL       time.Duration // How long a fetched rate stays cached
	IsProd             bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:            getEnv("APP_PORT", "8080"),
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBHost:             getEnv("DB_HOST", "127.0.0.1"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBName:             getEnv("DB_NAME", "btcwallet"),
		RedisAddr:          getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:          os.Getenv("REDIS_PASS"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		AdminAPIKey:        os.Getenv("ADMIN_API_KEY"),
		APIKeySecret:       os.Getenv("API_KEY_SECRET"),
		FeeRate:            getEnvFloat("FEE_RATE", 0.015),
		WalletLimit:        getEnvInt("WALLET_LIMIT", 3),
		StartingBalanceBTC: getEnvFloat("STARTING_BALANCE_BTC", 1.0),
		RateAPIURL:         getEnv("RATE_API_URL", "https://api.coingecko.com/api/v3/simple/price"),
		RateCacheTTL:       getEnvDuration("RATE_CACHE_TTL", 60*time.Second),
		IsProd:             os.Getenv("IS_PROD") == "true",
	}
}

// DSN assembles the MySQL data source name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// getEnv returns the variable's value or a fallback when unset
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses an integer variable, falling back on absence or garbage
func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

// getEnvFloat parses a float variable, falling back on absence or garbage
func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

// getEnvDuration parses a duration variable, falling back on absence or garbage
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
