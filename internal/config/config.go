package config

import (
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Local API server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Local store
	DBPath string `mapstructure:"DB_PATH"`

	// Remote sync API
	APIBaseURL         string `mapstructure:"API_BASE_URL"`
	HTTPTimeoutSeconds int    `mapstructure:"HTTP_TIMEOUT_SECONDS"`
	PingTimeoutSeconds int    `mapstructure:"PING_TIMEOUT_SECONDS"`
	TokenTTLHours      int    `mapstructure:"TOKEN_TTL_HOURS"`

	// Sync behavior
	SyncBatchSize        int    `mapstructure:"SYNC_BATCH_SIZE"`
	AutoSyncIntervalMins int    `mapstructure:"AUTO_SYNC_INTERVAL_MINUTES"`
	OfficerName          string `mapstructure:"OFFICER_NAME"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for a field device
	viper.SetDefault("PORT", 8090)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_PATH", "fieldsync.db")
	viper.SetDefault("API_BASE_URL", "https://api.lift.co.ke")
	viper.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	viper.SetDefault("PING_TIMEOUT_SECONDS", 5)
	viper.SetDefault("TOKEN_TTL_HOURS", 23)
	viper.SetDefault("SYNC_BATCH_SIZE", 5)
	viper.SetDefault("AUTO_SYNC_INTERVAL_MINUTES", 15)
	viper.SetDefault("OFFICER_NAME", "")

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
