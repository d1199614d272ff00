package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"
)

const QR_IMAGE_SIZE = 512

type PolicyConfig struct {
	// Path to an optional YAML policy file. When empty, built-in defaults apply.
	PolicyFile string `mapstructure:"policy_file"`
	// Email suffix that grants booking rights, e.g. "@kkumail.com"
	MemberSuffix string `mapstructure:"member_suffix"`
	// Email suffix that grants approval rights, e.g. "@kku.ac.th"
	ApproverSuffix string `mapstructure:"approver_suffix"`
}

type BookingConfig struct {
	// Maximum number of simultaneously active (pending or approved) bookings per user.
	Quota int `mapstructure:"quota"`
}

type Config struct {
	// Secret key for signing tokens. Must be set in production.
	Secret string `mapstructure:"secret"`
	// TTL for auth tokens in hours
	TokenTTL uint   `mapstructure:"token_ttl"`
	LogLevel string `mapstructure:"log_level"`

	// Comma separated list of allowed CIDR networks. Empty means allow all.
	AllowedNetworks string `mapstructure:"allowed_networks"`

	// Base URL for the application. May be relative, e.g. /rooms/, or absolute,
	// e.g. https://example.com/rooms/
	BaseURL string `mapstructure:"base_url"`

	// TTL for door scan state in seconds. A scanned tag that is not claimed
	// by the registration flow within this window is discarded.
	ScanTTL uint `mapstructure:"scan_ttl"`

	Policy  PolicyConfig  `mapstructure:"policy"`
	Booking BookingConfig `mapstructure:"booking"`

	Storage Storage `mapstructure:"storage"`
}

var Cfg *Config

// Check if running in Docker container by checking for the presence of /.dockerenv file
func runningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

func getConfigPath() string {
	if runningInDocker() {
		return "/app/instance"
	}
	return "./instance"
}

// LoadConfig reads configuration from environment variables and returns a Config struct.
func LoadConfig(configFile ...string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(getConfigPath())
	v.AddConfigPath(".")
	v.SetEnvPrefix("")

	if len(configFile) > 0 {
		for _, path := range configFile {
			v.SetConfigFile(path)
		}
	}

	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	// Load configuration from environment variables
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	if cfg.Booking.Quota <= 0 {
		slog.Warn("Booking quota must be positive, using default", "quota", cfg.Booking.Quota)
		cfg.Booking.Quota = 3
	}

	// Convert relative sqlite path to absolute instance folder
	if cfg.Storage.SQLite != nil {
		if cfg.Storage.SQLite.Path == ":memory:" {
			// In-memory database, do nothing
		} else if !os.IsPathSeparator(cfg.Storage.SQLite.Path[0]) {
			cfg.Storage.SQLite.Path = fmt.Sprintf("%s/%s", getConfigPath(), cfg.Storage.SQLite.Path)
		}
	}

	// Warn if secret is missing - this is a critical security setting for production
	if cfg.Secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("SECRET configuration variable is required in production")
		} else {
			slog.Warn("Secret is not set. Do not use in production.")
		}
	}

	return &cfg, nil
}
