package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opshub-integrations-layer/internal/application"
	"opshub-integrations-layer/internal/domain"
	"opshub-integrations-layer/internal/infrastructure/filestore"
	"opshub-integrations-layer/internal/infrastructure/metrics"
	"opshub-integrations-layer/internal/infrastructure/oauthstate"
	shopifyinfra "opshub-integrations-layer/internal/infrastructure/shopify"
)

type memoryConnectionRepo struct {
	connections map[string]*domain.Connection
}

func newMemoryConnectionRepo() *memoryConnectionRepo {
	return &memoryConnectionRepo{connections: make(map[string]*domain.Connection)}
}

func (r *memoryConnectionRepo) Save(_ context.Context, conn *domain.Connection) error {
	copied := *conn
	r.connections[conn.ID] = &copied
	return nil
}

func (r *memoryConnectionRepo) GetActiveByUser(_ context.Context, userID, provider string) (*domain.Connection, error) {
	for _, conn := range r.connections {
		if conn.UserID == userID && conn.Provider == provider && conn.IsActive {
			return conn, nil
		}
	}
	return nil, nil
}

func (r *memoryConnectionRepo) GetByAccount(_ context.Context, provider, accountID string) (*domain.Connection, error) {
	for _, conn := range r.connections {
		if conn.Provider == provider && conn.AccountID == accountID {
			return conn, nil
		}
	}
	return nil, nil
}

func (r *memoryConnectionRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.connections[id]; !ok {
		return domain.NewNotFoundError("connection", id)
	}
	delete(r.connections, id)
	return nil
}

type testEnv struct {
	router   *chi.Mux
	repo     *memoryConnectionRepo
	verifier *shopifyinfra.WebhookVerifier
	codec    *oauthstate.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	repo := newMemoryConnectionRepo()
	codec := oauthstate.NewCodec("state-secret")
	verifier := shopifyinfra.NewWebhookVerifier("webhook-secret")
	m := metrics.New()

	dataDir := t.TempDir()
	approvalStore, err := filestore.NewApprovalFileStore(dataDir)
	require.NoError(t, err)
	rejectionStore, err := filestore.NewRejectionFileStore(dataDir)
	require.NoError(t, err)
	pendingMarker := filestore.NewPendingMarker(dataDir)

	webhookManager := application.NewWebhookManager(repo, logger, "https://app.example.com/webhooks")
	connectService := application.NewConnectService(repo, webhookManager, codec, logger)
	connectService.RegisterProvider(shopifyinfra.NewClient("key", "secret", "https://app.example.com/callback", logger))

	syncService := application.NewSyncService(approvalStore, rejectionStore, pendingMarker, logger)
	taskService := application.NewTaskService(approvalStore, logger)
	dispatcher := application.NewWebhookDispatcher(logger)

	r := chi.NewRouter()
	r.Get("/health", healthHandler())
	r.Post("/connect", connectHandler(connectService, logger))
	r.Get("/callback", callbackHandler(connectService, m, logger))
	r.Post("/disconnect", disconnectHandler(connectService, logger))
	r.Post("/webhooks", webhookHandler(repo, verifier, dispatcher, m, logger))
	r.Get("/sync-status", syncStatusHandler(syncService, connectService, m, logger))
	r.Get("/tasks", listTasksHandler(taskService, logger))
	r.Post("/tasks/{taskID}/complete", completeTaskHandler(taskService, logger))

	return &testEnv{router: r, repo: repo, verifier: verifier, codec: codec}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestConnectEndpoint(t *testing.T) {
	env := newTestEnv(t)

	body := `{"userId": "user-1", "accountIdentifier": "acme"}`
	rec := env.do(httptest.NewRequest("POST", "/connect", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OAuthURL string `json:"oauthUrl"`
		State    string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.OAuthURL, "https://acme.myshopify.com/admin/oauth/authorize")
	assert.Contains(t, resp.OAuthURL, "response_type=code")

	state, err := env.codec.Decode(resp.State)
	require.NoError(t, err)
	assert.Equal(t, "user-1", state.UserID)
}

func TestConnectEndpointValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing userId", `{"accountIdentifier": "acme"}`},
		{"bad shop domain", `{"userId": "user-1", "accountIdentifier": "https://evil.test"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(httptest.NewRequest("POST", "/connect", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCallbackAlwaysRedirects(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest("GET", "/callback?code=c&state=garbage&shop=acme.myshopify.com", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, application.ErrorPagePath))
	assert.Contains(t, location, "error=")
}

func TestDisconnectEndpoint(t *testing.T) {
	env := newTestEnv(t)

	body := `{"userId": "user-1", "provider": "shopify"}`
	rec := env.do(httptest.NewRequest("POST", "/disconnect", strings.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func signedWebhookRequest(env *testEnv, topic, shop, payload string) *http.Request {
	req := httptest.NewRequest("POST", "/webhooks", strings.NewReader(payload))
	req.Header.Set("X-Shopify-Hmac-SHA256", env.verifier.Sign([]byte(payload)))
	req.Header.Set("X-Shopify-Topic", topic)
	req.Header.Set("X-Shopify-Shop-Domain", shop)
	return req
}

func TestWebhookRejectsMissingHeaders(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/webhooks", strings.NewReader(`{"id":1}`))
	req.Header.Set("X-Shopify-Topic", "orders/create")

	rec := env.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/webhooks", strings.NewReader(`{"id":1}`))
	req.Header.Set("X-Shopify-Hmac-SHA256", "Zm9yZ2VkIHNpZ25hdHVyZQ==")
	req.Header.Set("X-Shopify-Topic", "orders/create")
	req.Header.Set("X-Shopify-Shop-Domain", "acme.myshopify.com")

	rec := env.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(signedWebhookRequest(env, "orders/create", "acme.myshopify.com", "{not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookUnknownAccountIsAcknowledged(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(signedWebhookRequest(env, "orders/create", "stranger.myshopify.com", `{"id":1}`))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookKnownAccount(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.repo.Save(context.Background(), &domain.Connection{
		ID:        "conn-1",
		UserID:    "user-1",
		Provider:  domain.ProviderShopify,
		AccountID: "acme.myshopify.com",
		IsActive:  true,
	}))

	rec := env.do(signedWebhookRequest(env, "orders/create", "acme.myshopify.com", `{"id":1,"total_price":"750.00"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSyncStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest("GET", "/sync-status", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(httptest.NewRequest("GET", "/sync-status?userId=user-1&lastCheck=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(httptest.NewRequest("GET", "/sync-status?userId=user-1&lastCheck=2026-05-10T12:00:00Z", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.SyncResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.PendingCleared)
	assert.Equal(t, domain.PendingStateNever, result.PendingState)
	assert.NotNil(t, result.NewApprovals)
}

func TestTaskEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest("GET", "/tasks", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tasks":[]}`, rec.Body.String())

	rec = env.do(httptest.NewRequest("POST", "/tasks/missing/complete", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
