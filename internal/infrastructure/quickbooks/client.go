// Package quickbooks implements the accounting provider. QuickBooks
// OAuth hands the realm (company) id back on the callback rather than at
// initiation, so the client is not account-scoped.
package quickbooks

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"opshub-integrations-layer/internal/domain"
	"opshub-integrations-layer/internal/ports"
)

const (
	authorizeURL = "https://appcenter.intuit.com/connect/oauth2"
	tokenURL     = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
	scope        = "com.intuit.quickbooks.accounting"

	productionAPIBase = "https://quickbooks.api.intuit.com"
	sandboxAPIBase    = "https://sandbox-quickbooks.api.intuit.com"
)

type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	apiBase      string
	httpClient   *http.Client
	logger       zerolog.Logger
}

var _ ports.ProviderClient = (*Client)(nil)

// NewClient builds a QuickBooks client. sandbox selects the developer
// sandbox API host; OAuth endpoints are shared between environments.
func NewClient(clientID, clientSecret, redirectURI string, sandbox bool, logger zerolog.Logger) *Client {
	apiBase := productionAPIBase
	if sandbox {
		apiBase = sandboxAPIBase
	}
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		apiBase:      apiBase,
		httpClient:   http.DefaultClient,
		logger:       logger,
	}
}

func (c *Client) Name() string        { return domain.ProviderQuickBooks }
func (c *Client) AccountScoped() bool { return false }

func (c *Client) AuthorizeURL(_, state string) (string, error) {
	values := url.Values{}
	values.Set("client_id", c.clientID)
	values.Set("scope", scope)
	values.Set("redirect_uri", c.redirectURI)
	values.Set("response_type", "code")
	values.Set("state", state)
	return authorizeURL + "?" + values.Encode(), nil
}

// ExchangeCode trades the authorization code for a bearer token. The
// token endpoint authenticates with HTTP basic auth over the client
// credentials.
func (c *Client) ExchangeCode(ctx context.Context, _, code string) (string, []string, error) {
	values := url.Values{}
	values.Set("grant_type", "authorization_code")
	values.Set("code", code)
	values.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, "POST", tokenURL, strings.NewReader(values.Encode()))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", nil, fmt.Errorf("failed to exchange token: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var tokenResponse struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return tokenResponse.AccessToken, []string{scope}, nil
}

// AccountInfo loads the realm's company profile.
func (c *Client) AccountInfo(ctx context.Context, realmID, accessToken string) (*domain.AccountInfo, error) {
	if realmID == "" {
		return nil, fmt.Errorf("realm id is required")
	}
	infoURL := fmt.Sprintf("%s/v3/company/%s/companyinfo/%s", c.apiBase, realmID, realmID)

	req, err := http.NewRequestWithContext(ctx, "GET", infoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create company info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get company info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get company info: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var payload struct {
		CompanyInfo struct {
			CompanyName string `json:"CompanyName"`
			Email       struct {
				Address string `json:"Address"`
			} `json:"Email"`
			Country string `json:"Country"`
		} `json:"CompanyInfo"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode company info: %w", err)
	}

	c.logger.Debug().Str("realm", realmID).Str("company", payload.CompanyInfo.CompanyName).Msg("Fetched company info")

	// CompanyInfo does not expose currency or timezone directly; those
	// fields stay empty for accounting connections.
	return &domain.AccountInfo{
		AccountID: realmID,
		Name:      payload.CompanyInfo.CompanyName,
		Email:     payload.CompanyInfo.Email.Address,
	}, nil
}
