package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Commercetools CommercetoolsConfig `mapstructure:"commercetools"`
	Klaviyo       KlaviyoConfig       `mapstructure:"klaviyo"`
	Events        EventsConfig        `mapstructure:"events"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Ingestion     IngestionConfig     `mapstructure:"ingestion"`
	DLQ           DLQConfig           `mapstructure:"dlq"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type CommercetoolsConfig struct {
	APIURL       string        `mapstructure:"api_url"`
	AuthURL      string        `mapstructure:"auth_url"`
	ProjectKey   string        `mapstructure:"project_key"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Scopes       []string      `mapstructure:"scopes"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type KlaviyoConfig struct {
	APIURL   string        `mapstructure:"api_url"`
	APIKey   string        `mapstructure:"api_key"`
	Revision string        `mapstructure:"revision"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// EventsConfig names the outbound metrics and the property keys approved
// for each entity kind. Keys are configuration, not logic.
type EventsConfig struct {
	PlacedOrderMetric    string            `mapstructure:"placed_order_metric"`
	OrderedProductMetric string            `mapstructure:"ordered_product_metric"`
	RefundedOrderMetric  string            `mapstructure:"refunded_order_metric"`
	StateChangeMetrics   map[string]string `mapstructure:"state_change_metrics"`
	OrderProperties      []string          `mapstructure:"order_properties"`
}

// AllowedProperties returns the per-kind property whitelist consumed by
// the mapping layer.
func (e EventsConfig) AllowedProperties() map[string][]string {
	return map[string][]string{
		"order": e.OrderProperties,
	}
}

type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type IngestionConfig struct {
	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
}

type DLQConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	NatsURL string `mapstructure:"nats_url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 6789)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("commercetools.api_url", "https://api.us-central1.gcp.commercetools.com")
	v.SetDefault("commercetools.auth_url", "https://auth.us-central1.gcp.commercetools.com")
	v.SetDefault("commercetools.scopes", []string{"view_orders", "view_customers", "view_payments"})
	v.SetDefault("commercetools.timeout", "10s")
	v.SetDefault("klaviyo.api_url", "https://a.klaviyo.com")
	v.SetDefault("klaviyo.revision", "2023-02-22")
	v.SetDefault("klaviyo.timeout", "10s")
	v.SetDefault("events.placed_order_metric", "Placed Order")
	v.SetDefault("events.ordered_product_metric", "Ordered Product")
	v.SetDefault("events.refunded_order_metric", "Refunded Order")
	v.SetDefault("events.state_change_metrics", map[string]string{
		"Cancelled": "Cancelled Order",
		"Complete":  "Fulfilled Order",
	})
	v.SetDefault("events.order_properties", []string{
		"customerId",
		"customerEmail",
		"totalPrice",
		"orderState",
		"createdAt",
		"lastModifiedAt",
		"lineItems",
		"shippingMode",
		"origin",
	})
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("ingestion.rate_limit_enabled", false)
	v.SetDefault("ingestion.rate_limit_requests", 1000)
	v.SetDefault("ingestion.rate_limit_window", "1m")
	v.SetDefault("dlq.enabled", false)
	v.SetDefault("dlq.nats_url", "nats://localhost:4222")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/marketbridge")
	}

	// Environment variables override
	v.SetEnvPrefix("MARKETBRIDGE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
