package application

import (
	"context"

	"github.com/rs/zerolog"

	"opshub-integrations-layer/internal/domain"
)

// WebhookHandler processes webhook events for the topics it claims.
type WebhookHandler interface {
	// CanHandle returns true if this handler can process the given topic.
	CanHandle(topic string) bool

	// Handle processes a webhook event.
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// WebhookDispatcher routes a verified event to the first handler that
// claims its topic. Unknown topics are accepted and logged; the provider
// already got its 200 and must not be made to redeliver.
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

// RegisterHandler adds a handler to the dispatch table.
func (d *WebhookDispatcher) RegisterHandler(handler WebhookHandler) {
	d.handlers = append(d.handlers, handler)
}

// Dispatch hands the event to its topic handler. The returned error is
// for logging and metrics only; ingress never surfaces it to the
// provider.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	for _, handler := range d.handlers {
		if handler.CanHandle(event.Topic) {
			return handler.Handle(ctx, event)
		}
	}

	d.logger.Info().
		Str("topic", event.Topic).
		Str("account", event.Account).
		Msg("No handler registered for webhook topic, event accepted")
	return nil
}
