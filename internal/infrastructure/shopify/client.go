package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"

	"opshub-integrations-layer/internal/domain"
	"opshub-integrations-layer/internal/ports"
)

// Scopes requested on every shop authorization.
var oauthScopes = []string{"read_products", "read_orders", "read_customers"}

// Client adapts the go-shopify SDK to the provider ports. Authorize URL
// and token exchange are direct HTTP because the SDK does not carry the
// redirect_uri and state parameters Shopify requires.
type Client struct {
	apiKey      string
	apiSecret   string
	redirectURI string
	app         goshopify.App
	logger      zerolog.Logger
}

var _ ports.ProviderClient = (*Client)(nil)
var _ ports.ProviderWebhookAPI = (*Client)(nil)

func NewClient(apiKey, apiSecret, redirectURI string, logger zerolog.Logger) *Client {
	return &Client{
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		redirectURI: redirectURI,
		app:         goshopify.App{ApiKey: apiKey, ApiSecret: apiSecret},
		logger:      logger,
	}
}

func (c *Client) Name() string        { return domain.ProviderShopify }
func (c *Client) AccountScoped() bool { return true }

func (c *Client) createClient(shopDomain, accessToken string) (*goshopify.Client, error) {
	client, err := goshopify.NewClient(c.app, shopDomain, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// AuthorizeURL builds the shop-scoped authorization URL. Shopify expects
// comma-separated scopes.
func (c *Client) AuthorizeURL(shop, state string) (string, error) {
	if shop == "" {
		return "", fmt.Errorf("shop is required")
	}
	authURL := fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&response_type=code&state=%s",
		shop,
		c.apiKey,
		url.QueryEscape(strings.Join(oauthScopes, ",")),
		url.QueryEscape(c.redirectURI),
		url.QueryEscape(state),
	)
	c.logger.Debug().Str("shop", shop).Msg("Generated authorization URL")
	return authURL, nil
}

// ExchangeCode trades the authorization code for an access token. Direct
// HTTP call so the redirect_uri matches the one used at authorization.
func (c *Client) ExchangeCode(ctx context.Context, shop, code string) (string, []string, error) {
	tokenURL := fmt.Sprintf("https://%s/admin/oauth/access_token", shop)

	values := url.Values{}
	values.Set("client_id", c.apiKey)
	values.Set("client_secret", c.apiSecret)
	values.Set("code", code)
	values.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, "POST", tokenURL, strings.NewReader(values.Encode()))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", nil, fmt.Errorf("failed to exchange token: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	var scopes []string
	if tokenResponse.Scope != "" {
		scopes = strings.Split(tokenResponse.Scope, ",")
	}
	return tokenResponse.AccessToken, scopes, nil
}

// AccountInfo fetches the shop's descriptive metadata.
func (c *Client) AccountInfo(ctx context.Context, shop, accessToken string) (*domain.AccountInfo, error) {
	client, err := c.createClient(shop, accessToken)
	if err != nil {
		return nil, err
	}
	info, err := client.Shop.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return &domain.AccountInfo{
		AccountID: shop,
		Name:      info.Name,
		Email:     info.Email,
		Currency:  info.Currency,
		Timezone:  info.IanaTimezone,
	}, nil
}

// Webhook API

func (c *Client) CreateWebhook(ctx context.Context, shop, accessToken, topic, address string) (int64, error) {
	client, err := c.createClient(shop, accessToken)
	if err != nil {
		return 0, err
	}
	created, err := client.Webhook.Create(ctx, goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create webhook: %w", err)
	}
	return int64(created.Id), nil
}

func (c *Client) ListWebhooks(ctx context.Context, shop, accessToken string) ([]domain.RemoteWebhook, error) {
	client, err := c.createClient(shop, accessToken)
	if err != nil {
		return nil, err
	}
	webhooks, err := client.Webhook.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	remote := make([]domain.RemoteWebhook, 0, len(webhooks))
	for _, wh := range webhooks {
		remote = append(remote, domain.RemoteWebhook{
			ID:      int64(wh.Id),
			Topic:   wh.Topic,
			Address: wh.Address,
		})
	}
	return remote, nil
}

func (c *Client) DeleteWebhook(ctx context.Context, shop, accessToken string, id int64) error {
	client, err := c.createClient(shop, accessToken)
	if err != nil {
		return err
	}
	if err := client.Webhook.Delete(ctx, uint64(id)); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}
