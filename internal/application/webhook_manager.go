package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"opshub-integrations-layer/internal/domain"
	"opshub-integrations-layer/internal/ports"
)

// WebhookManager creates and removes provider webhook subscriptions for
// a connection. Registration is best-effort per topic; the connection
// only ever tracks IDs this system was handed back, and remote deletion
// only ever targets IDs from that set.
type WebhookManager struct {
	repo    ports.ConnectionRepository
	logger  zerolog.Logger
	address string
}

func NewWebhookManager(repo ports.ConnectionRepository, logger zerolog.Logger, address string) *WebhookManager {
	return &WebhookManager{
		repo:    repo,
		logger:  logger,
		address: address,
	}
}

// Register subscribes the fixed topic list and persists the union of the
// newly created IDs onto the connection in a single save. Per-topic
// failures are logged and skipped; re-registering never duplicates an ID
// already tracked.
func (m *WebhookManager) Register(ctx context.Context, api ports.ProviderWebhookAPI, conn *domain.Connection) error {
	created := 0
	for _, topic := range domain.SubscriptionTopics {
		id, err := api.CreateWebhook(ctx, conn.AccountID, conn.AccessToken, topic, m.address)
		if err != nil {
			m.logger.Warn().
				Err(err).
				Str("account", conn.AccountID).
				Str("topic", topic).
				Msg("Failed to create webhook subscription, skipping topic")
			continue
		}
		if !conn.OwnsWebhook(id) {
			conn.WebhookIDs = append(conn.WebhookIDs, id)
		}
		created++
	}

	if created == 0 {
		return fmt.Errorf("no webhook subscriptions created for %s", conn.AccountID)
	}

	if err := m.repo.Save(ctx, conn); err != nil {
		return fmt.Errorf("failed to persist webhook ids: %w", err)
	}

	m.logger.Info().
		Str("account", conn.AccountID).
		Int("created", created).
		Int("tracked", len(conn.WebhookIDs)).
		Msg("Webhook subscriptions registered")
	return nil
}

// Unregister deletes every remote subscription whose ID this connection
// owns. Per-entry failures are logged and do not abort the loop; stray
// remote subscriptions are cleanup debt, not a correctness problem,
// because the ingress ignores events for unknown accounts.
func (m *WebhookManager) Unregister(ctx context.Context, api ports.ProviderWebhookAPI, conn *domain.Connection) {
	remote, err := api.ListWebhooks(ctx, conn.AccountID, conn.AccessToken)
	if err != nil {
		m.logger.Warn().Err(err).Str("account", conn.AccountID).Msg("Failed to list remote webhooks for cleanup")
		return
	}

	for _, wh := range remote {
		if !conn.OwnsWebhook(wh.ID) {
			continue
		}
		if err := api.DeleteWebhook(ctx, conn.AccountID, conn.AccessToken, wh.ID); err != nil {
			m.logger.Warn().
				Err(err).
				Str("account", conn.AccountID).
				Int64("webhookId", wh.ID).
				Msg("Failed to delete remote webhook")
			continue
		}
		m.logger.Info().
			Str("account", conn.AccountID).
			Int64("webhookId", wh.ID).
			Str("topic", wh.Topic).
			Msg("Deleted remote webhook")
	}
}
