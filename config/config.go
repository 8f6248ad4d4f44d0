package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	AliExpress AliExpressConfig `mapstructure:"aliexpress"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AliExpressConfig holds affiliate API configuration
type AliExpressConfig struct {
	AppKey     string        `mapstructure:"app_key"`
	AppSecret  string        `mapstructure:"app_secret"`
	BaseURL    string        `mapstructure:"base_url"`
	TrackingID string        `mapstructure:"tracking_id"`
	Currency   string        `mapstructure:"currency"`
	Language   string        `mapstructure:"language"`
	ShipTo     string        `mapstructure:"ship_to"`
	PageSize   int           `mapstructure:"page_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP         int     `mapstructure:"per_ip"`   // requests per minute per client
	Upstream      float64 `mapstructure:"upstream"` // requests per second to the marketplace
	UpstreamBurst int     `mapstructure:"upstream_burst"`
}

// MatchingConfig holds ranking settings
type MatchingConfig struct {
	MaxResults int  `mapstructure:"max_results"`
	Debug      bool `mapstructure:"debug"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dealfinder/")

	// DEALFINDER_CACHE_REDIS_URL -> cache.redis_url
	v.SetEnvPrefix("DEALFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory if one exists.
// Variables already present in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values.
// Every key needs a default so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})

	v.SetDefault("aliexpress.app_key", "")
	v.SetDefault("aliexpress.app_secret", "")
	v.SetDefault("aliexpress.base_url", "https://api-sg.aliexpress.com/sync")
	v.SetDefault("aliexpress.tracking_id", "")
	v.SetDefault("aliexpress.currency", "USD")
	v.SetDefault("aliexpress.language", "EN")
	v.SetDefault("aliexpress.ship_to", "US")
	v.SetDefault("aliexpress.page_size", 50)
	v.SetDefault("aliexpress.timeout", "15s")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "6h")

	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.upstream", 5)
	v.SetDefault("ratelimit.upstream_burst", 10)

	v.SetDefault("matching.max_results", 10)
	v.SetDefault("matching.debug", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.AliExpress.AppKey == "" {
		return fmt.Errorf("AliExpress app key is required (set DEALFINDER_ALIEXPRESS_APP_KEY)")
	}

	if config.AliExpress.AppSecret == "" {
		return fmt.Errorf("AliExpress app secret is required (set DEALFINDER_ALIEXPRESS_APP_SECRET)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Log.Format != "" && config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	if config.Matching.MaxResults < 0 {
		return fmt.Errorf("matching.max_results must not be negative, got: %d", config.Matching.MaxResults)
	}

	return nil
}
