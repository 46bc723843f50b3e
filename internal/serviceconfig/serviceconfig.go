// Package serviceconfig loads konditiond's runtime configuration from
// environment variables and an optional .env file, the same viper-based
// loading discipline the reference service uses for its own startup
// configuration.
package serviceconfig

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every setting konditiond needs before it can start serving.
type Config struct {
	AppEnv        string // dev, staging, prod
	Namespace     string // konditional namespace name this process owns
	HTTPAddr      string // client-facing API bind address
	MetricsAddr   string // internal metrics bind address
	StoreType     string // "memory" or "postgres"
	DatabaseDSN   string // Postgres DSN, required when StoreType == "postgres"
	AdminAPIKey   string // plaintext admin key; hashed once at startup
	WebhookURL    string // optional change-notification sink
	WebhookSecret string
	SnapshotPath  string // optional path to an initial snapshot loaded at startup
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("NAMESPACE", "default")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", ":9090")
	v.SetDefault("STORE_TYPE", "memory")
	v.SetDefault("ADMIN_API_KEY", "")
	v.SetDefault("WEBHOOK_URL", "")
	v.SetDefault("WEBHOOK_SECRET", "")
	v.SetDefault("SNAPSHOT_PATH", "")
}

// Load reads configuration from the environment and an optional .env file,
// environment variables taking precedence, and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	_ = v.ReadInConfig()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		AppEnv:        strings.TrimSpace(v.GetString("APP_ENV")),
		Namespace:     strings.TrimSpace(v.GetString("NAMESPACE")),
		HTTPAddr:      strings.TrimSpace(v.GetString("HTTP_ADDR")),
		MetricsAddr:   strings.TrimSpace(v.GetString("METRICS_ADDR")),
		StoreType:     strings.ToLower(strings.TrimSpace(v.GetString("STORE_TYPE"))),
		DatabaseDSN:   strings.TrimSpace(v.GetString("DB_DSN")),
		AdminAPIKey:   strings.TrimSpace(v.GetString("ADMIN_API_KEY")),
		WebhookURL:    strings.TrimSpace(v.GetString("WEBHOOK_URL")),
		WebhookSecret: strings.TrimSpace(v.GetString("WEBHOOK_SECRET")),
		SnapshotPath:  strings.TrimSpace(v.GetString("SNAPSHOT_PATH")),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Namespace == "" {
		return fmt.Errorf("NAMESPACE must not be empty")
	}
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	switch cfg.StoreType {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unsupported STORE_TYPE %q (expected memory or postgres)", cfg.StoreType)
	}
	if cfg.StoreType == "postgres" && cfg.DatabaseDSN == "" {
		return fmt.Errorf("DB_DSN must be set when STORE_TYPE=postgres")
	}
	if strings.EqualFold(cfg.AppEnv, "prod") && cfg.AdminAPIKey == "" {
		return fmt.Errorf("ADMIN_API_KEY must be set when APP_ENV=prod")
	}
	return nil
}
