package domain

import "time"

// Provider names as carried in Connection.Provider and in state tokens.
const (
	ProviderShopify    = "shopify"
	ProviderQuickBooks = "quickbooks"
	ProviderSlack      = "slack"
)

// Connection represents one user's authorized link to one external
// provider account. It is the only cross-request state the OAuth flow
// produces; everything else in the flow is carried by the state token.
type Connection struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Provider    string    `json:"provider"`
	AccountID   string    `json:"account_id"` // shop domain, realm id, or team id
	AccountName string    `json:"account_name"`
	Email       string    `json:"email"`
	Currency    string    `json:"currency"`
	Timezone    string    `json:"timezone"`
	AccessToken string    `json:"-"`
	Scopes      []string  `json:"scopes"`
	WebhookIDs  []int64   `json:"webhook_ids"` // only IDs this system created
	ConnectedAt time.Time `json:"connected_at"`
	LastSyncAt  time.Time `json:"last_sync_at"`
	IsActive    bool      `json:"is_active"`
}

// OwnsWebhook reports whether the given remote webhook ID was created by
// this system. Remote deletion must never target an ID outside this set.
func (c *Connection) OwnsWebhook(id int64) bool {
	for _, owned := range c.WebhookIDs {
		if owned == id {
			return true
		}
	}
	return false
}

// AccountInfo is the descriptive metadata fetched from a provider right
// after token exchange.
type AccountInfo struct {
	AccountID string
	Name      string
	Email     string
	Currency  string
	Timezone  string
}
