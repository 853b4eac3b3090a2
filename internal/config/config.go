package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/FilipeCampos25/SiteClienteLucas/pkg/config"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8000"`

	// PostgreSQL (product catalog)
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Redis (cart store)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Cart TTL in hours; 0 keeps cart records forever.
	CartTTLHours int `env:"CART_TTL_HOURS" envDefault:"0"`

	// Kafka
	KafkaBrokers    []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	ConsumerEnabled bool     `env:"CONSUMER_ENABLED" envDefault:"false"`

	// Admin area (HTTP basic auth)
	AdminUser     string `env:"ADMIN_USER" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin"`

	// WhatsApp number the checkout links open a conversation with: digits
	// only, country code included.
	WhatsAppNumber string `env:"WHATSAPP_NUMBER" envDefault:"5511999999999"`

	// Remote link-generation service. Empty means links are built in-process.
	LinkServiceURL string `env:"LINK_SERVICE_URL" envDefault:""`

	// Catalog feed the checkout cache loads from. Defaults to this service's
	// own public catalog endpoint.
	CatalogURL string `env:"CATALOG_URL" envDefault:"http://localhost:8000/api/produtos"`

	// Cart watcher sampling interval.
	WatcherInterval time.Duration `env:"WATCHER_INTERVAL" envDefault:"30s"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Pprof debug endpoints are only reachable from these CIDRs.
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.CartTTLHours < 0 {
		return fmt.Errorf("invalid cart TTL: %d", c.CartTTLHours)
	}
	if c.WatcherInterval <= 0 {
		return fmt.Errorf("invalid watcher interval: %s", c.WatcherInterval)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("invalid OTel sample rate: %f", c.OTELSampleRate)
	}
	if c.WhatsAppNumber == "" {
		return fmt.Errorf("whatsapp number must not be empty")
	}
	return nil
}

// CartTTL returns the cart record TTL as a duration.
func (c *Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLHours) * time.Hour
}
