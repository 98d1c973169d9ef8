package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service configuration.
type Config struct {
	Env      string
	Port     string
	LogLevel string
	JWTKey   string

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Pricing  PricingConfig

	RateLimitRPS   float64
	RateLimitBurst int
}

// DatabaseConfig holds the ledger database connection settings.
type DatabaseConfig struct {
	Driver         string // mysql or sqlite
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	Path           string // sqlite file, or :memory:
	MaxOpenConns   int
	ConnectRetries int
	ConnectBackoff time.Duration
}

// RedisConfig holds the recommendation cache settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig holds broker and topic settings.
type KafkaConfig struct {
	Brokers             []string
	RecommendationTopic string
	LedgerTopic         string
	GroupID             string
}

// PricingConfig holds the defaults applied to pricing requests that leave a field out.
type PricingConfig struct {
	ClearanceDays     int
	MarginFloor       float64
	LookbackDays      int
	CandidateLowerPct float64
	CandidateUpperPct float64
	CandidateSteps    int
	BatchConcurrency  int
	WorstPerformers   int
}

// Load loads configuration from a .env file, if present, and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}

	return &Config{
		Env:      getEnvOrDefault("ENV", "development"),
		Port:     getEnvOrDefault("PORT", "8083"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		JWTKey:   getEnvOrDefault("JWT_SECRET", "secret"),

		Database: DatabaseConfig{
			Driver:         getEnvOrDefault("DB_DRIVER", "mysql"),
			Host:           getEnvOrDefault("DB_HOST", "127.0.0.1"),
			Port:           getEnvOrDefault("DB_PORT", "3306"),
			User:           getEnvOrDefault("DB_USER", "root"),
			Password:       getEnvOrDefault("DB_PASS", ""),
			Name:           getEnvOrDefault("DB_NAME", "inventory-db"),
			Path:           getEnvOrDefault("DB_PATH", "inventory.db"),
			MaxOpenConns:   getEnvInt("DB_MAX_OPEN_CONNS", 20),
			ConnectRetries: getEnvInt("DB_CONNECT_RETRIES", 10),
			ConnectBackoff: getEnvDuration("DB_CONNECT_BACKOFF", 3*time.Second),
		},

		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("CACHE_TTL", 15*time.Minute),
		},

		Kafka: KafkaConfig{
			Brokers:             getEnvList("KAFKA_BROKERS", "localhost:9092,localhost:9093,localhost:9094"),
			RecommendationTopic: getEnvOrDefault("KAFKA_RECOMMENDATION_TOPIC", "pricing-topic"),
			LedgerTopic:         getEnvOrDefault("KAFKA_LEDGER_TOPIC", "ledger-topic"),
			GroupID:             getEnvOrDefault("KAFKA_GROUP_ID", "dynamic-pricing-service-group"),
		},

		Pricing: PricingConfig{
			ClearanceDays:     getEnvInt("PRICING_CLEARANCE_DAYS", 30),
			MarginFloor:       getEnvFloat("PRICING_MARGIN_FLOOR", 0.1),
			LookbackDays:      getEnvInt("PRICING_LOOKBACK_DAYS", 90),
			CandidateLowerPct: getEnvFloat("PRICING_LOWER_PCT", 0.5),
			CandidateUpperPct: getEnvFloat("PRICING_UPPER_PCT", 1.2),
			CandidateSteps:    getEnvInt("PRICING_STEPS", 50),
			BatchConcurrency:  getEnvInt("PRICING_BATCH_CONCURRENCY", 8),
			WorstPerformers:   getEnvInt("PRICING_WORST_PERFORMERS", 10),
		},

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
	}
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvFloat gets environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnvOrDefault(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
