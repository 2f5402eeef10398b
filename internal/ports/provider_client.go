package ports

import (
	"context"

	"opshub-integrations-layer/internal/domain"
)

// ProviderClient defines the OAuth surface every connected platform must
// expose. Implementations are constructed once at startup with their
// client credentials and are safe for concurrent use.
type ProviderClient interface {
	// Name returns the provider identifier (domain.ProviderShopify, ...).
	Name() string

	// AccountScoped reports whether the authorize URL is built against a
	// specific account (Shopify shops) and therefore requires the account
	// identifier at initiation.
	AccountScoped() bool

	// AuthorizeURL builds the provider authorization URL carrying the
	// encoded state.
	AuthorizeURL(account, state string) (string, error)

	// ExchangeCode trades the authorization code for an access token and
	// the granted scopes. account may be empty for providers that are not
	// account-scoped.
	ExchangeCode(ctx context.Context, account, code string) (token string, scopes []string, err error)

	// AccountInfo fetches the descriptive account metadata used to
	// populate a new connection.
	AccountInfo(ctx context.Context, account, token string) (*domain.AccountInfo, error)
}

// ProviderWebhookAPI is the webhook subscription surface. Only providers
// that deliver webhooks implement it; the registrar skips the rest.
type ProviderWebhookAPI interface {
	CreateWebhook(ctx context.Context, account, token, topic, address string) (int64, error)
	ListWebhooks(ctx context.Context, account, token string) ([]domain.RemoteWebhook, error)
	DeleteWebhook(ctx context.Context, account, token string, id int64) error
}
