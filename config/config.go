package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"marketplace.app/errors"
)

// Config represents the application configuration structure
type Config struct {
	Server    ServerConfig    `split_words:"true"`
	Database  DatabaseConfig  `split_words:"true"`
	Redis     RedisConfig     `split_words:"true"`
	Cache     CacheConfig     `split_words:"true"`
	RateLimit RateLimitConfig `split_words:"true"`
}

// ServerConfig contains HTTP server configuration.
// An empty AdminSecret disables the admin login entirely.
type ServerConfig struct {
	Port        int    `envconfig:"SERVER_PORT" default:"8080"`
	AdminSecret string `envconfig:"ADMIN_SECRET" default:""`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"marketplace"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

// GetDSN returns a formatted database connection string
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RedisConfig contains cache store connection settings
type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
}

// CacheConfig contains per-view TTL settings for derived views.
// Defaults mirror the lifetimes the frontend was built against.
type CacheConfig struct {
	ProductTTL   int `envconfig:"CACHE_PRODUCT_TTL" default:"300"`
	SellerTTL    int `envconfig:"CACHE_SELLER_TTL" default:"300"`
	StatsTTL     int `envconfig:"CACHE_STATS_TTL" default:"1800"`
	AnalyticsTTL int `envconfig:"CACHE_ANALYTICS_TTL" default:"3600"`
	SearchTTL    int `envconfig:"CACHE_SEARCH_TTL" default:"600"`
}

// ProductTTLDuration returns the product view TTL as a duration
func (c CacheConfig) ProductTTLDuration() time.Duration {
	return time.Duration(c.ProductTTL) * time.Second
}

// SellerTTLDuration returns the seller view TTL as a duration
func (c CacheConfig) SellerTTLDuration() time.Duration {
	return time.Duration(c.SellerTTL) * time.Second
}

// StatsTTLDuration returns the seller stats TTL as a duration
func (c CacheConfig) StatsTTLDuration() time.Duration {
	return time.Duration(c.StatsTTL) * time.Second
}

// AnalyticsTTLDuration returns the analytics TTL as a duration
func (c CacheConfig) AnalyticsTTLDuration() time.Duration {
	return time.Duration(c.AnalyticsTTL) * time.Second
}

// SearchTTLDuration returns the search result TTL as a duration
func (c CacheConfig) SearchTTLDuration() time.Duration {
	return time.Duration(c.SearchTTL) * time.Second
}

// RateLimitConfig contains login throttling settings.
// Fixed-window counting: a burst straddling a window boundary can admit up to
// twice the threshold before the new window's counter catches up.
type RateLimitConfig struct {
	Threshold     int `envconfig:"RATE_LIMIT_THRESHOLD" default:"5"`
	WindowSeconds int `envconfig:"RATE_LIMIT_WINDOW" default:"300"`
}

// Window returns the rate limit window as a duration
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// LoadConfig loads and validates application configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

// ValidateSSLMode validates the SSL mode configuration
func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

// Validate checks database configuration
func (d *DatabaseConfig) Validate() error {
	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > 65535 {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	if err := d.ValidateSSLMode(); err != nil {
		return err
	}
	return nil
}

// Validate checks cache store configuration
func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty", nil)
	}
	if r.DB < 0 {
		return errors.NewConfigurationError("REDIS_DB cannot be negative", nil)
	}
	if r.DialTimeout < 1 || r.ReadTimeout < 1 || r.WriteTimeout < 1 {
		return errors.NewConfigurationError("redis timeouts must be at least 1 second", nil)
	}
	return nil
}

// Validate checks derived-view TTL configuration
func (c *CacheConfig) Validate() error {
	ttls := map[string]int{
		"CACHE_PRODUCT_TTL":   c.ProductTTL,
		"CACHE_SELLER_TTL":    c.SellerTTL,
		"CACHE_STATS_TTL":     c.StatsTTL,
		"CACHE_ANALYTICS_TTL": c.AnalyticsTTL,
		"CACHE_SEARCH_TTL":    c.SearchTTL,
	}
	for name, ttl := range ttls {
		if ttl < 1 {
			return errors.NewConfigurationError(fmt.Sprintf("%s must be at least 1 second", name), nil)
		}
	}
	return nil
}

// Validate checks rate limit configuration
func (r *RateLimitConfig) Validate() error {
	if r.Threshold < 1 {
		return errors.NewConfigurationError("RATE_LIMIT_THRESHOLD must be at least 1", nil)
	}
	if r.WindowSeconds < 1 {
		return errors.NewConfigurationError("RATE_LIMIT_WINDOW must be at least 1 second", nil)
	}
	return nil
}
