package application

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"opshub-integrations-layer/internal/domain"
	"opshub-integrations-layer/internal/ports"
)

// DefaultReturnURL is where the browser lands after a successful connect
// when the caller did not ask for anything else.
const DefaultReturnURL = "/dashboard/settings"

// ErrorPagePath receives every failed callback with a human-readable
// error query parameter; the callback endpoint is reached by browser
// redirect, so raw error bodies are never appropriate there.
const ErrorPagePath = "/dashboard/settings/integrations/error"

// Shop domains are a strict hostname label, optionally already carrying
// the myshopify suffix.
var shopDomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.myshopify\.com)?$`)

// ConnectRequest is the initiation input.
type ConnectRequest struct {
	UserID            string `json:"userId" validate:"required"`
	Provider          string `json:"provider"`
	AccountIdentifier string `json:"accountIdentifier"`
	ReturnURL         string `json:"returnUrl"`
}

// ConnectResponse carries the authorize URL and the raw state back to the
// dashboard.
type ConnectResponse struct {
	OAuthURL string `json:"oauthUrl"`
	State    string `json:"state"`
}

// CallbackInput is everything the provider redirect delivered.
type CallbackInput struct {
	Code             string
	State            string
	Shop             string
	RealmID          string
	ProviderError    string
	ErrorDescription string
}

// CallbackResult is always a redirect; Connected marks the success path.
type CallbackResult struct {
	RedirectURL string
	Connected   bool
	Provider    string
}

// ConnectService drives the OAuth handshake: initiation, the callback
// state machine, and disconnect. It holds no per-request state; the
// state token carries the whole transaction.
type ConnectService struct {
	providers   map[string]ports.ProviderClient
	webhookAPIs map[string]ports.ProviderWebhookAPI
	repo        ports.ConnectionRepository
	registrar   *WebhookManager
	codec       ports.StateCodec
	validate    *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

func NewConnectService(
	repo ports.ConnectionRepository,
	registrar *WebhookManager,
	codec ports.StateCodec,
	logger zerolog.Logger,
) *ConnectService {
	return &ConnectService{
		providers:   make(map[string]ports.ProviderClient),
		webhookAPIs: make(map[string]ports.ProviderWebhookAPI),
		repo:        repo,
		registrar:   registrar,
		codec:       codec,
		validate:    validator.New(),
		logger:      logger,
		now:         time.Now,
	}
}

// RegisterProvider wires a provider client; clients that also expose a
// webhook API get subscriptions managed on connect and disconnect.
func (s *ConnectService) RegisterProvider(client ports.ProviderClient) {
	s.providers[client.Name()] = client
	if api, ok := client.(ports.ProviderWebhookAPI); ok {
		s.webhookAPIs[client.Name()] = api
	}
}

// Initiate validates the request, mints a fresh state token and builds
// the provider authorization URL. Nothing is persisted; the returned
// state is the transaction's only memory.
func (s *ConnectService) Initiate(req *ConnectRequest) (*ConnectResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.NewValidationError("userId", "userId is required")
	}

	providerName := req.Provider
	if providerName == "" {
		providerName = domain.ProviderShopify
	}
	client, ok := s.providers[providerName]
	if !ok {
		return nil, domain.NewValidationError("provider", fmt.Sprintf("unknown provider %q", providerName))
	}

	account := req.AccountIdentifier
	if client.AccountScoped() {
		canonical, err := canonicalShopDomain(account)
		if err != nil {
			return nil, err
		}
		account = canonical
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = DefaultReturnURL
	}

	state := &domain.OAuthState{
		UserID:    req.UserID,
		Provider:  providerName,
		ReturnURL: returnURL,
		Nonce:     uuid.NewString(),
		CreatedAt: s.now(),
	}
	encoded, err := s.codec.Encode(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}

	oauthURL, err := client.AuthorizeURL(account, encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to build authorize url: %w", err)
	}

	s.logger.Info().
		Str("userId", req.UserID).
		Str("provider", providerName).
		Str("account", account).
		Msg("OAuth flow initiated")

	return &ConnectResponse{OAuthURL: oauthURL, State: encoded}, nil
}

// HandleCallback runs the code-exchange state machine. Every failure
// resolves to an error-page redirect; only token exchange, metadata
// fetch and persistence are fatal. Webhook registration is best-effort.
func (s *ConnectService) HandleCallback(ctx context.Context, in *CallbackInput) *CallbackResult {
	if in.ProviderError != "" {
		msg := in.ProviderError
		if in.ErrorDescription != "" {
			msg = in.ErrorDescription
		}
		s.logger.Warn().Str("error", in.ProviderError).Msg("Provider reported OAuth error")
		return errorRedirect(msg)
	}
	if in.Code == "" || in.State == "" {
		return errorRedirect("missing required parameters")
	}

	state, err := s.codec.Decode(in.State)
	if err != nil {
		s.logger.Warn().Err(err).Msg("State decode failed")
		return errorRedirect("invalid state")
	}
	if state.Expired(s.now()) {
		s.logger.Warn().Str("userId", state.UserID).Time("createdAt", state.CreatedAt).Msg("State token expired")
		return errorRedirect("state expired")
	}

	client, ok := s.providers[state.Provider]
	if !ok {
		return errorRedirect("invalid state")
	}

	account := in.Shop
	if state.Provider == domain.ProviderQuickBooks {
		account = in.RealmID
	}
	if account == "" && (client.AccountScoped() || state.Provider == domain.ProviderQuickBooks) {
		return errorRedirect("missing required parameters")
	}

	token, scopes, err := client.ExchangeCode(ctx, account, in.Code)
	if err != nil {
		s.logger.Error().Err(err).Str("provider", state.Provider).Msg("Token exchange failed")
		return errorRedirect("connection failed")
	}

	info, err := client.AccountInfo(ctx, account, token)
	if err != nil {
		s.logger.Error().Err(err).Str("provider", state.Provider).Msg("Account metadata fetch failed")
		return errorRedirect("connection failed")
	}
	if account == "" {
		account = info.AccountID
	}

	now := s.now()
	conn := &domain.Connection{
		ID:          uuid.NewString(),
		UserID:      state.UserID,
		Provider:    state.Provider,
		AccountID:   account,
		AccountName: info.Name,
		Email:       info.Email,
		Currency:    info.Currency,
		Timezone:    info.Timezone,
		AccessToken: token,
		Scopes:      scopes,
		WebhookIDs:  []int64{},
		ConnectedAt: now,
		LastSyncAt:  now,
		IsActive:    true,
	}
	if err := s.repo.Save(ctx, conn); err != nil {
		s.logger.Error().Err(err).Str("userId", state.UserID).Msg("Failed to persist connection")
		return errorRedirect("connection failed")
	}

	// Webhooks can be re-established later; the account is usable
	// without them.
	if api, ok := s.webhookAPIs[state.Provider]; ok {
		if err := s.registrar.Register(ctx, api, conn); err != nil {
			s.logger.Warn().Err(err).Str("account", account).Msg("Webhook registration failed, continuing")
		}
	}

	s.logger.Info().
		Str("userId", state.UserID).
		Str("provider", state.Provider).
		Str("account", account).
		Msg("Connection established")

	redirectURL := fmt.Sprintf("%s?connected=true&name=%s", state.ReturnURL, url.QueryEscape(info.Name))
	return &CallbackResult{RedirectURL: redirectURL, Connected: true, Provider: state.Provider}
}

// Disconnect tears a connection down. Remote webhook cleanup is
// best-effort; local state is authoritative and is removed regardless.
func (s *ConnectService) Disconnect(ctx context.Context, userID, provider string) error {
	if userID == "" {
		return domain.NewValidationError("userId", "userId is required")
	}
	if provider == "" {
		provider = domain.ProviderShopify
	}

	conn, err := s.repo.GetActiveByUser(ctx, userID, provider)
	if err != nil {
		return fmt.Errorf("failed to look up connection: %w", err)
	}
	if conn == nil {
		return domain.NewNotFoundError("connection", userID)
	}

	if api, ok := s.webhookAPIs[provider]; ok {
		s.registrar.Unregister(ctx, api, conn)
	}

	if err := s.repo.Delete(ctx, conn.ID); err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}

	s.logger.Info().Str("userId", userID).Str("provider", provider).Msg("Connection removed")
	return nil
}

// TouchLastSync stamps lastSyncAt on the user's active connections.
// Best-effort: a failed stamp never fails the sync poll.
func (s *ConnectService) TouchLastSync(ctx context.Context, userID string) {
	now := s.now()
	for name := range s.providers {
		conn, err := s.repo.GetActiveByUser(ctx, userID, name)
		if err != nil || conn == nil {
			continue
		}
		conn.LastSyncAt = now
		if err := s.repo.Save(ctx, conn); err != nil {
			s.logger.Warn().Err(err).Str("userId", userID).Str("provider", name).Msg("Failed to stamp lastSyncAt")
		}
	}
}

func errorRedirect(message string) *CallbackResult {
	return &CallbackResult{
		RedirectURL: ErrorPagePath + "?error=" + url.QueryEscape(message),
	}
}

func canonicalShopDomain(account string) (string, error) {
	account = strings.ToLower(strings.TrimSpace(account))
	if account == "" || !shopDomainPattern.MatchString(account) {
		return "", domain.NewValidationError("accountIdentifier", "invalid account identifier")
	}
	if !strings.HasSuffix(account, ".myshopify.com") {
		account += ".myshopify.com"
	}
	return account, nil
}
