package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the relay.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Kiwify     KiwifyConfig     `yaml:"kiwify"`
	MailerLite MailerLiteConfig `yaml:"mailerlite"`
	Relay      RelayConfig      `yaml:"relay"`
	Products   []ProductConfig  `yaml:"products"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection.
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// KiwifyConfig holds settings for the inbound webhook side.
type KiwifyConfig struct {
	// WebhookToken is the optional shared secret. When set, every webhook
	// must present it via the x-kiwify-token/x-token header or the payload
	// token field.
	WebhookToken string `yaml:"webhook_token"`
}

// MailerLiteConfig holds MailerLite API configuration.
type MailerLiteConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration.
func (c MailerLiteConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RelayConfig holds reconciliation behavior switches.
type RelayConfig struct {
	// ProcessUnknownProducts lets events for products missing from the
	// catalog fall through to the fallback entry instead of being suppressed.
	ProcessUnknownProducts bool `yaml:"process_unknown_products"`
	// ManageTags enables tag add/remove calls. Defaults to true; set
	// manage_tags: false to restrict the relay to group membership only.
	ManageTags *bool `yaml:"manage_tags"`
	// DryRun runs classification and reconciliation planning without issuing
	// any remote call.
	DryRun bool `yaml:"dry_run"`
}

// TagsEnabled reports whether tag management is active.
func (c RelayConfig) TagsEnabled() bool {
	return c.ManageTags == nil || *c.ManageTags
}

// ProductConfig maps one sellable product to its groups and tags. Exactly one
// entry may be flagged unknown_fallback; it catches product ids the catalog
// does not know.
type ProductConfig struct {
	ID                string `yaml:"id"`
	DisplayName       string `yaml:"display_name"`
	GroupClient       string `yaml:"group_client"`
	GroupCartRecovery string `yaml:"group_cart_recovery"`
	TagBought         string `yaml:"tag_bought"`
	TagRefund         string `yaml:"tag_refund"`
	TagAbandonedCart  string `yaml:"tag_abandoned_cart"`
	UnknownFallback   bool   `yaml:"unknown_fallback"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with only defaults applied, for
// environments that configure everything through env vars.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.MailerLite.BaseURL == "" {
		cfg.MailerLite.BaseURL = "https://connect.mailerlite.com/api"
	}
	if cfg.MailerLite.TimeoutSeconds == 0 {
		cfg.MailerLite.TimeoutSeconds = 30
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file first (if present) so secrets can live in .env locally
// and in real env vars on ECS. A missing config file is not an error: the
// relay can run entirely from env vars, with products served by the built-in
// fallback entry.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = Default()
	}

	if v := os.Getenv("MAILERLITE_API_KEY"); v != "" {
		cfg.MailerLite.APIKey = v
	}
	if v := os.Getenv("MAILERLITE_BASE_URL"); v != "" {
		cfg.MailerLite.BaseURL = v
	}
	if v := os.Getenv("KIWIFY_WEBHOOK_TOKEN"); v != "" {
		cfg.Kiwify.WebhookToken = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RELAY_PROCESS_UNKNOWN_PRODUCTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Relay.ProcessUnknownProducts = b
		}
	}
	if v := os.Getenv("RELAY_MANAGE_TAGS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Relay.ManageTags = &b
		}
	}
	if v := os.Getenv("RELAY_DRY_RUN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Relay.DryRun = b
		}
	}

	return cfg, nil
}
