// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the service reads at startup.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"boroughbash"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// AdminSecret gates the admin endpoints. Empty means open (dev mode).
	AdminSecret string `env:"ADMIN_SECRET"`

	// DefaultRegionCapacity seeds max_capacity for regions created at startup.
	DefaultRegionCapacity int `env:"DEFAULT_REGION_CAPACITY" envDefault:"30"`

	// RegistrationOpensAt holds the RFC 3339 instant the submission window
	// opens. Zero means always open. RegistrationPostponed closes the window
	// indefinitely and wins over OpensAt.
	RegistrationOpensAt   time.Time `env:"REGISTRATION_OPENS_AT"`
	RegistrationPostponed bool      `env:"REGISTRATION_POSTPONED"`

	// AllowedEmailDomain restricts submissions to addresses ending with the
	// given suffix (e.g. "@schools.nyc.gov"). Empty accepts any address.
	AllowedEmailDomain string `env:"ALLOWED_EMAIL_DOMAIN"`

	// Webhook endpoints receive the composed confirmation / waiting-list
	// emails after a successful submission. Empty URLs disable the hook.
	ConfirmationWebhookURL string `env:"CONFIRMATION_WEBHOOK_URL"`
	WaitingListWebhookURL  string `env:"WAITING_LIST_WEBHOOK_URL"`
	WebhookSecret          string `env:"WEBHOOK_SECRET"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	opts := env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			// RFC 3339 instants, e.g. REGISTRATION_OPENS_AT=2026-02-11T13:00:00Z.
			reflect.TypeOf(time.Time{}): func(v string) (any, error) {
				t, err := time.Parse(time.RFC3339, v)
				if err != nil {
					return nil, fmt.Errorf("not an RFC 3339 timestamp: %q", v)
				}
				return t, nil
			},
		},
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DefaultRegionCapacity < 0 {
		return Config{}, fmt.Errorf("DEFAULT_REGION_CAPACITY must be non-negative")
	}
	return cfg, nil
}

// DSN builds a libpq-compatible connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
