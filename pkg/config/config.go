package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the sync server configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Lightspeed  LightspeedConfig  `mapstructure:"lightspeed"`
	ItemCache   ItemCacheConfig   `mapstructure:"item_cache"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// LightspeedConfig contains Lightspeed Retail API client settings
type LightspeedConfig struct {
	BaseURL               string        `mapstructure:"base_url"`
	TokenURL              string        `mapstructure:"token_url"`
	ClientID              string        `mapstructure:"client_id"`
	ClientSecret          string        `mapstructure:"client_secret"`
	PageSize              int           `mapstructure:"page_size"`
	MaxPages              int           `mapstructure:"max_pages"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout"`
	ItemLookupConcurrency int           `mapstructure:"item_lookup_concurrency"`
	CustomerBatchSize     int           `mapstructure:"customer_batch_size"`
}

// ItemCacheConfig bounds the in-process item detail cache
type ItemCacheConfig struct {
	MaxEntries int           `mapstructure:"max_entries"`
	TTL        time.Duration `mapstructure:"ttl"`
}

// CredentialsConfig contains settings for merchant credential storage
type CredentialsConfig struct {
	// MasterKey is the base64-encoded 32-byte key used to encrypt
	// refresh tokens at rest.
	MasterKey string `mapstructure:"master_key"`
}

// AuthConfig contains inbound JWT validation settings
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	JWKSURL string `mapstructure:"jwks_url"`
	Issuer  string `mapstructure:"issuer"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "lightspeed_sync")

	// Lightspeed defaults
	viper.SetDefault("lightspeed.base_url", "https://api.lightspeedapp.com/API/V3")
	viper.SetDefault("lightspeed.token_url", "https://cloud.lightspeedapp.com/auth/oauth/token")
	viper.SetDefault("lightspeed.page_size", 200)
	viper.SetDefault("lightspeed.max_pages", 5)
	viper.SetDefault("lightspeed.request_timeout", "30s")
	viper.SetDefault("lightspeed.item_lookup_concurrency", 10)
	viper.SetDefault("lightspeed.customer_batch_size", 20)

	// Item cache defaults
	viper.SetDefault("item_cache.max_entries", 5000)
	viper.SetDefault("item_cache.ttl", "15m")

	// Auth defaults
	viper.SetDefault("auth.enabled", false)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Lightspeed.BaseURL == "" {
		return fmt.Errorf("lightspeed.base_url is required")
	}
	if config.Lightspeed.TokenURL == "" {
		return fmt.Errorf("lightspeed.token_url is required")
	}
	if config.Lightspeed.ClientID == "" {
		return fmt.Errorf("lightspeed.client_id is required")
	}
	if config.Lightspeed.ClientSecret == "" {
		return fmt.Errorf("lightspeed.client_secret is required")
	}
	if config.Credentials.MasterKey == "" {
		return fmt.Errorf("credentials.master_key is required")
	}
	if config.Auth.Enabled && config.Auth.JWKSURL == "" {
		return fmt.Errorf("auth.jwks_url is required when auth is enabled")
	}
	return nil
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
