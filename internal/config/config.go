package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all runtime configuration for the application.
// Site extraction rules live in a separate JSON file (see internal/sites).
type Config struct {
	PostgresURL    string `mapstructure:"POSTGRES_URL"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	ServerPort     string `mapstructure:"SERVER_PORT"`
	SitesFile      string `mapstructure:"SITES_FILE"`
	TelegramToken  string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID string `mapstructure:"TELEGRAM_CHAT_ID"`
	ScanTime       string `mapstructure:"SCAN_TIME"`
	BatchCap       int    `mapstructure:"MAX_LISTINGS_PER_BATCH"`
	AgingDays      int    `mapstructure:"AGING_DAYS"`
	FetchTimeout   int    `mapstructure:"FETCH_TIMEOUT"` // in seconds
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables in production
	_ = viper.ReadInConfig()

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SITES_FILE", "config/sites.json")
	viper.SetDefault("SCAN_TIME", "09:00")
	viper.SetDefault("MAX_LISTINGS_PER_BATCH", 50)
	viper.SetDefault("AGING_DAYS", 7)
	viper.SetDefault("FETCH_TIMEOUT", 30) // in seconds

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.PostgresURL == "" {
		return nil, fmt.Errorf("POSTGRES_URL is required")
	}
	if _, _, err := ParseClock(cfg.ScanTime); err != nil {
		return nil, fmt.Errorf("invalid SCAN_TIME: %w", err)
	}
	if cfg.BatchCap <= 0 {
		return nil, fmt.Errorf("MAX_LISTINGS_PER_BATCH must be positive")
	}
	if cfg.AgingDays <= 0 {
		return nil, fmt.Errorf("AGING_DAYS must be positive")
	}
	return &cfg, nil
}

// AgingWindow returns the aging threshold as a duration.
func (c *Config) AgingWindow() time.Duration {
	return time.Duration(c.AgingDays) * 24 * time.Hour
}

// FetchTimeoutDuration returns the per-request fetch timeout.
func (c *Config) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

// ParseClock parses a wall-clock time in "HH:MM" form.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("bad hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("bad minute in %q", s)
	}
	return hour, minute, nil
}
