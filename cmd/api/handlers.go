package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"opshub-integrations-layer/internal/application"
	"opshub-integrations-layer/internal/domain"
	"opshub-integrations-layer/internal/infrastructure/metrics"
	"opshub-integrations-layer/internal/ports"
	shopifyinfra "opshub-integrations-layer/internal/infrastructure/shopify"
)

// Webhook request headers. Shopify is the only webhook source today, so
// ingress speaks its header dialect.
const (
	headerWebhookSignature = "X-Shopify-Hmac-SHA256"
	headerWebhookTopic     = "X-Shopify-Topic"
	headerWebhookShop      = "X-Shopify-Shop-Domain"
)

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// connectHandler starts the OAuth flow and returns the authorize URL for
// the dashboard to redirect the browser to.
func connectHandler(connectService *application.ConnectService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req application.ConnectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := connectService.Initiate(&req)
		if err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				writeError(w, http.StatusBadRequest, ve.Error())
				return
			}
			logger.Error().Err(err).Msg("Failed to initiate OAuth flow")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// callbackHandler terminates the OAuth redirect. The response is always
// a 302; success and failure both land the browser on a dashboard page.
func callbackHandler(connectService *application.ConnectService, m *metrics.Metrics, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		in := &application.CallbackInput{
			Code:             q.Get("code"),
			State:            q.Get("state"),
			Shop:             q.Get("shop"),
			RealmID:          q.Get("realmId"),
			ProviderError:    q.Get("error"),
			ErrorDescription: q.Get("error_description"),
		}

		result := connectService.HandleCallback(r.Context(), in)
		if result.Connected {
			m.OAuthConnects.WithLabelValues(result.Provider).Inc()
		}
		http.Redirect(w, r, result.RedirectURL, http.StatusFound)
	}
}

func disconnectHandler(connectService *application.ConnectService, logger zerolog.Logger) http.HandlerFunc {
	type disconnectRequest struct {
		UserID   string `json:"userId"`
		Provider string `json:"provider"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req disconnectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := connectService.Disconnect(r.Context(), req.UserID, req.Provider); err != nil {
			var (
				ve *domain.ValidationError
				nf *domain.NotFoundError
			)
			switch {
			case errors.As(err, &ve):
				writeError(w, http.StatusBadRequest, ve.Error())
			case errors.As(err, &nf):
				writeError(w, http.StatusNotFound, "no active connection")
			default:
				logger.Error().Err(err).Str("userId", req.UserID).Msg("Failed to disconnect")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// webhookHandler is the provider-facing ingress. The signature is
// verified over the raw body before anything is parsed. Once the request
// is authenticated and well-formed the response is 200 no matter what
// processing does, since a 5xx would only make the provider redeliver an
// event we already accepted.
func webhookHandler(
	repo ports.ConnectionRepository,
	verifier *shopifyinfra.WebhookVerifier,
	dispatcher *application.WebhookDispatcher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			m.WebhookRejected.WithLabelValues("unreadable_body").Inc()
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}

		signature := r.Header.Get(headerWebhookSignature)
		topic := r.Header.Get(headerWebhookTopic)
		shop := r.Header.Get(headerWebhookShop)
		if signature == "" || topic == "" || shop == "" {
			m.WebhookRejected.WithLabelValues("missing_headers").Inc()
			writeError(w, http.StatusBadRequest, "missing required webhook headers")
			return
		}

		if err := verifier.Verify(body, signature); err != nil {
			logger.Warn().Str("shop", shop).Str("topic", topic).Msg("Webhook signature verification failed")
			m.WebhookRejected.WithLabelValues("invalid_signature").Inc()
			writeError(w, http.StatusUnauthorized, "invalid webhook signature")
			return
		}

		if !json.Valid(body) {
			m.WebhookRejected.WithLabelValues("malformed_payload").Inc()
			writeError(w, http.StatusBadRequest, "malformed webhook payload")
			return
		}

		m.WebhookEvents.WithLabelValues(topic).Inc()

		// Events for shops we no longer track are acknowledged and
		// dropped; the remote subscription just has not been torn down
		// yet.
		conn, err := repo.GetByAccount(r.Context(), domain.ProviderShopify, shop)
		if err != nil || conn == nil || !conn.IsActive {
			if err != nil {
				logger.Error().Err(err).Str("shop", shop).Msg("Connection lookup failed for webhook")
			} else {
				logger.Info().Str("shop", shop).Str("topic", topic).Msg("Webhook for unknown or inactive account, ignoring")
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}

		event := &domain.WebhookEvent{
			Topic:   topic,
			Account: shop,
			Payload: body,
		}
		if err := dispatcher.Dispatch(r.Context(), event); err != nil {
			logger.Error().Err(err).Str("shop", shop).Str("topic", topic).Msg("Webhook processing failed")
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// syncStatusHandler answers the dashboard's incremental poll.
func syncStatusHandler(
	syncService *application.SyncService,
	connectService *application.ConnectService,
	m *metrics.Metrics,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("userId")
		if userID == "" {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}

		var lastCheck time.Time
		if raw := r.URL.Query().Get("lastCheck"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "lastCheck must be an ISO 8601 timestamp")
				return
			}
			lastCheck = parsed
		}

		result, err := syncService.Status(r.Context(), userID, lastCheck)
		if err != nil {
			logger.Error().Err(err).Str("userId", userID).Msg("Sync status failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		m.SyncPolls.Inc()
		connectService.TouchLastSync(r.Context(), userID)

		writeJSON(w, http.StatusOK, result)
	}
}

func listTasksHandler(taskService *application.TaskService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeCompleted := r.URL.Query().Get("includeCompleted") == "true"

		tasks, err := taskService.List(r.Context(), includeCompleted)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to list tasks")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
	}
}

func completeTaskHandler(taskService *application.TaskService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID := chi.URLParam(r, "taskID")

		task, err := taskService.Complete(r.Context(), taskID)
		if err != nil {
			var (
				ve *domain.ValidationError
				nf *domain.NotFoundError
			)
			switch {
			case errors.As(err, &ve):
				writeError(w, http.StatusBadRequest, ve.Error())
			case errors.As(err, &nf):
				writeError(w, http.StatusNotFound, "task not found")
			default:
				logger.Error().Err(err).Str("taskId", taskID).Msg("Failed to complete task")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, task)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
