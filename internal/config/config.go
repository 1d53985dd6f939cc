package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the server configuration.
type Config struct {
	AppPort        string
	Database       DatabaseConfig
	Auth           AuthConfig
	Payments       PaymentsConfig
	RabbitMQURL    string
	CatalogRefresh string
	Log            LogConfig
}

// DatabaseConfig selects the product store. Driver is postgres, sqlite or memory.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// AuthConfig holds session signing and the Google sign-in audience. An
// empty AdminEmails admits every signed-in user to the admin area.
type AuthConfig struct {
	JWTSecret      string
	SessionTTL     time.Duration
	GoogleClientID string
	AdminEmails    []string
}

// PaymentsConfig configures Stripe checkout. Checkout is unavailable
// without a secret key.
type PaymentsConfig struct {
	StripeSecretKey string
	Currency        string
}

// LogConfig controls the zap logger. Mode is development or production; an
// empty File logs to stdout only.
type LogConfig struct {
	Mode string
	File string
}

// SetDefaults registers default values and binds environment variables.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=nexora port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("ADMIN_EMAILS", "")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("CHECKOUT_CURRENCY", "usd")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("CATALOG_REFRESH", "@every 1m")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("LOG_FILE", "")
	v.AutomaticEnv()
}

// ReadFile merges config.yaml and then .env from the working directory when
// they exist. Environment variables still win over both.
func ReadFile(v *viper.Viper) error {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return mergeDotEnv(v, ".env")
}

func mergeDotEnv(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from v.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	ttl, err := time.ParseDuration(v.GetString("SESSION_TTL"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	driver := strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_DRIVER")))
	switch driver {
	case "postgres", "sqlite", "memory":
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q", driver)
	}

	return Config{
		AppPort: v.GetString("APP_PORT"),
		Database: DatabaseConfig{
			Driver: driver,
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Auth: AuthConfig{
			JWTSecret:      v.GetString("JWT_SECRET"),
			SessionTTL:     ttl,
			GoogleClientID: v.GetString("GOOGLE_CLIENT_ID"),
			AdminEmails:    splitList(v.GetString("ADMIN_EMAILS")),
		},
		Payments: PaymentsConfig{
			StripeSecretKey: v.GetString("STRIPE_SECRET_KEY"),
			Currency:        v.GetString("CHECKOUT_CURRENCY"),
		},
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		CatalogRefresh: refreshSpec(v.GetString("CATALOG_REFRESH")),
		Log: LogConfig{
			Mode: v.GetString("LOG_MODE"),
			File: v.GetString("LOG_FILE"),
		},
	}, nil
}

// refreshSpec maps "off" to the empty spec, which disables the job.
func refreshSpec(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "off") {
		return ""
	}
	return raw
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
