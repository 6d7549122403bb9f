package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Klaviyo   KlaviyoConfig
	Ecommerce EcommerceConfig
	Webhook   WebhookConfig
	Ranking   RankingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// KlaviyoConfig holds Klaviyo API configuration
type KlaviyoConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Revision string `mapstructure:"revision"`
	BaseURL  string `mapstructure:"base_url"`
}

// EcommerceConfig holds e-commerce platform configuration
type EcommerceConfig struct {
	Platform string        `mapstructure:"platform"`
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// WebhookConfig holds inbound webhook configuration
type WebhookConfig struct {
	Secret string `mapstructure:"secret"`
}

// RankingConfig holds substitute-ranking configuration
type RankingConfig struct {
	SimilarLimit       int  `mapstructure:"similar_limit"`
	CandidatePoolSize  int  `mapstructure:"candidate_pool_size"`
	EnableDebugLogging bool `mapstructure:"enable_debug_logging"`
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
	v.AddConfigPath("/etc/restockly/")

	// Environment variable settings
	v.SetEnvPrefix("RESTOCKLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")

	// Klaviyo defaults
	v.SetDefault("klaviyo.revision", "2024-10-15")
	v.SetDefault("klaviyo.base_url", "https://a.klaviyo.com/api")

	// E-commerce defaults
	v.SetDefault("ecommerce.platform", "prestashop")
	v.SetDefault("ecommerce.timeout", "10s")

	// Ranking defaults
	v.SetDefault("ranking.similar_limit", 6)
	v.SetDefault("ranking.candidate_pool_size", 100)
	v.SetDefault("ranking.enable_debug_logging", false)

	// Secrets have no sensible default but still need registered keys,
	// otherwise Unmarshal never consults the environment for them.
	v.SetDefault("klaviyo.api_key", "")
	v.SetDefault("ecommerce.base_url", "")
	v.SetDefault("ecommerce.api_key", "")
	v.SetDefault("webhook.secret", "")
}

// loadEnvFile loads variables from a .env file in the working directory,
// if present. Existing environment variables always win.
func loadEnvFile() error {
	content, err := os.ReadFile(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}

	return nil
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Klaviyo.APIKey == "" {
		return fmt.Errorf("Klaviyo API key is required (set RESTOCKLY_KLAVIYO_API_KEY)")
	}

	if config.Ecommerce.BaseURL == "" {
		return fmt.Errorf("e-commerce base URL is required (set RESTOCKLY_ECOMMERCE_BASE_URL)")
	}

	if config.Ecommerce.APIKey == "" {
		return fmt.Errorf("e-commerce API key is required (set RESTOCKLY_ECOMMERCE_API_KEY)")
	}

	if config.Webhook.Secret == "" {
		return fmt.Errorf("webhook secret is required (set RESTOCKLY_WEBHOOK_SECRET)")
	}

	if config.Ecommerce.Platform != "prestashop" {
		return fmt.Errorf("unsupported e-commerce platform: %s", config.Ecommerce.Platform)
	}

	if config.Ranking.SimilarLimit < 0 {
		return fmt.Errorf("ranking similar_limit must not be negative, got: %d", config.Ranking.SimilarLimit)
	}

	return nil
}
