// Package slack implements the messaging provider used for chat-based
// approvals. Only the OAuth handshake lives here; listening for approval
// messages is a separate collaborator.
package slack

import (
	"context"
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
	authorizeURL = "https://slack.com/oauth/v2/authorize"
	accessURL    = "https://slack.com/api/oauth.v2.access"
	authTestURL  = "https://slack.com/api/auth.test"

	botScopes = "chat:write,channels:history,channels:read"
)

type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
	logger       zerolog.Logger
}

var _ ports.ProviderClient = (*Client)(nil)

func NewClient(clientID, clientSecret, redirectURI string, logger zerolog.Logger) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		httpClient:   http.DefaultClient,
		logger:       logger,
	}
}

func (c *Client) Name() string        { return domain.ProviderSlack }
func (c *Client) AccountScoped() bool { return false }

func (c *Client) AuthorizeURL(_, state string) (string, error) {
	values := url.Values{}
	values.Set("client_id", c.clientID)
	values.Set("scope", botScopes)
	values.Set("redirect_uri", c.redirectURI)
	values.Set("response_type", "code")
	values.Set("state", state)
	return authorizeURL + "?" + values.Encode(), nil
}

func (c *Client) ExchangeCode(ctx context.Context, _, code string) (string, []string, error) {
	values := url.Values{}
	values.Set("client_id", c.clientID)
	values.Set("client_secret", c.clientSecret)
	values.Set("code", code)
	values.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, "POST", accessURL, strings.NewReader(values.Encode()))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", nil, fmt.Errorf("failed to exchange token: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	// Slack reports failures with 200 and ok=false.
	var tokenResponse struct {
		OK          bool   `json:"ok"`
		Error       string `json:"error"`
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if !tokenResponse.OK {
		return "", nil, fmt.Errorf("failed to exchange token: %s", tokenResponse.Error)
	}

	var scopes []string
	if tokenResponse.Scope != "" {
		scopes = strings.Split(tokenResponse.Scope, ",")
	}
	return tokenResponse.AccessToken, scopes, nil
}

// AccountInfo resolves the installed workspace via auth.test.
func (c *Client) AccountInfo(ctx context.Context, _, accessToken string) (*domain.AccountInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", authTestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth.test request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call auth.test: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		OK     bool   `json:"ok"`
		Error  string `json:"error"`
		Team   string `json:"team"`
		TeamID string `json:"team_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode auth.test response: %w", err)
	}
	if !payload.OK {
		return nil, fmt.Errorf("auth.test failed: %s", payload.Error)
	}

	c.logger.Debug().Str("team", payload.Team).Msg("Resolved Slack workspace")

	return &domain.AccountInfo{
		AccountID: payload.TeamID,
		Name:      payload.Team,
	}, nil
}
