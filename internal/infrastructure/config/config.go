// Package config collects the environment-owned configuration: provider
// credentials, the webhook shared secret, store locations. Secrets never
// live in a database; the process environment is the single source.
package config

import (
	"fmt"
	"os"
)

type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
}

type Config struct {
	Port      string
	AppURL    string
	MongoURI  string
	MongoDB   string
	RedisAddr string

	DataDir string

	StateSecret   string
	WebhookSecret string

	Shopify    ProviderCredentials
	QuickBooks ProviderCredentials
	Slack      ProviderCredentials

	// QuickBooksSandbox selects the Intuit sandbox API host.
	QuickBooksSandbox bool
}

// RedirectURI is the OAuth callback every provider redirects back to.
func (c *Config) RedirectURI() string {
	return c.AppURL + "/callback"
}

// WebhookAddress is the ingress endpoint registered with providers.
func (c *Config) WebhookAddress() string {
	return c.AppURL + "/webhooks"
}

// Load reads configuration from the environment. Missing secrets are
// fatal; everything else has a development default.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getenv("PORT", "8080"),
		AppURL:    getenv("APP_URL", "http://localhost:8080"),
		MongoURI:  getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:   getenv("MONGODB_DATABASE", "opshub"),
		RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),
		DataDir:   getenv("DATA_DIR", "./data"),

		StateSecret:   os.Getenv("STATE_SECRET"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),

		Shopify: ProviderCredentials{
			ClientID:     os.Getenv("SHOPIFY_API_KEY"),
			ClientSecret: os.Getenv("SHOPIFY_API_SECRET"),
		},
		QuickBooks: ProviderCredentials{
			ClientID:     os.Getenv("QB_CLIENT_ID"),
			ClientSecret: os.Getenv("QB_CLIENT_SECRET"),
		},
		Slack: ProviderCredentials{
			ClientID:     os.Getenv("SLACK_CLIENT_ID"),
			ClientSecret: os.Getenv("SLACK_CLIENT_SECRET"),
		},

		QuickBooksSandbox: getenv("QB_SANDBOX", "false") == "true",
	}

	if cfg.StateSecret == "" {
		return nil, fmt.Errorf("STATE_SECRET environment variable is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("WEBHOOK_SECRET environment variable is required")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
