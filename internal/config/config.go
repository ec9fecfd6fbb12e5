package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort          string        `mapstructure:"HTTP_PORT"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout   time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	CatalogDBPath     string        `mapstructure:"CATALOG_DB_PATH"`
	CatalogMigrations string        `mapstructure:"CATALOG_MIGRATIONS_PATH"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	PostgresHost      string        `mapstructure:"POSTGRES_HOST"`
	PostgresPort      int           `mapstructure:"POSTGRES_PORT"`
	PostgresUser      string        `mapstructure:"POSTGRES_USER"`
	PostgresPassword  string        `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDB        string        `mapstructure:"POSTGRES_DB"`
	OrdersMigrations  string        `mapstructure:"ORDERS_MIGRATIONS_PATH"`
	KafkaBrokers      []string      `mapstructure:"KAFKA_BROKERS"`
	WebhookEndpoints  []string      `mapstructure:"WEBHOOK_ENDPOINTS"`
	WebhookTimeout    time.Duration `mapstructure:"WEBHOOK_TIMEOUT"`
	SubmissionTimeout time.Duration `mapstructure:"SUBMISSION_TIMEOUT"`
}

// Load reads configuration from the environment with sane local-dev
// defaults. List values (brokers, endpoints) are comma separated.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", 30*time.Second)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("CATALOG_DB_PATH", "./storefront.db")
	v.SetDefault("CATALOG_MIGRATIONS_PATH", "./internal/catalog/migrations")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "storefront")
	v.SetDefault("POSTGRES_PASSWORD", "storefront")
	v.SetDefault("POSTGRES_DB", "storefront")
	v.SetDefault("ORDERS_MIGRATIONS_PATH", "./internal/repository/migrations")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("WEBHOOK_ENDPOINTS", "")
	v.SetDefault("WEBHOOK_TIMEOUT", 10*time.Second)
	v.SetDefault("SUBMISSION_TIMEOUT", 15*time.Second)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.KafkaBrokers = splitList(v.GetString("KAFKA_BROKERS"))
	cfg.WebhookEndpoints = splitList(v.GetString("WEBHOOK_ENDPOINTS"))

	return &cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
