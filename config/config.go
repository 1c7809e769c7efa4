package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	MCPPort           string `mapstructure:"MCP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	MongoDB           string `mapstructure:"MONGO_DB"`
	SlotCollection    string `mapstructure:"SLOT_COLLECTION"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Agent session trail retention.
	SessionTTLMinutes int `mapstructure:"SESSION_TTL_MINUTES"`

	// Housekeeping worker (prunes stale unbooked slots; never touches booked ones).
	CleanupEnabled         bool `mapstructure:"CLEANUP_ENABLED"`
	CleanupIntervalMinutes int  `mapstructure:"CLEANUP_INTERVAL_MINUTES"`
	CleanupRetentionDays   int  `mapstructure:"CLEANUP_RETENTION_DAYS"`

	MetricsEnabled bool `mapstructure:"METRICS_ENABLED"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("MCP_PORT", "8001")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "slotify")
	viper.SetDefault("SLOT_COLLECTION", "slots")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 3)
	viper.SetDefault("SESSION_TTL_MINUTES", 30)
	viper.SetDefault("CLEANUP_ENABLED", true)
	viper.SetDefault("CLEANUP_INTERVAL_MINUTES", 60)
	viper.SetDefault("CLEANUP_RETENTION_DAYS", 30)
	viper.SetDefault("METRICS_ENABLED", true)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
