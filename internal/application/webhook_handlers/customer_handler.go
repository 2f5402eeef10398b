package webhook_handlers

import (
	"context"

	"github.com/rs/zerolog"

	"opshub-integrations-layer/internal/domain"
)

// CustomerHandler accepts customer events. No side effect is defined at
// this layer yet; the handler exists so the topics are claimed and
// observable.
type CustomerHandler struct {
	logger zerolog.Logger
}

func NewCustomerHandler(logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{logger: logger}
}

// CanHandle returns true if this handler can process the given topic.
func (h *CustomerHandler) CanHandle(topic string) bool {
	return topic == domain.TopicCustomerCreated ||
		topic == domain.TopicCustomerUpdated
}

// Handle processes a customer webhook event.
func (h *CustomerHandler) Handle(_ context.Context, event *domain.WebhookEvent) error {
	var customer customerPayload
	if err := parsePayload(customerSchema, event.Payload, &customer); err != nil {
		return err
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("account", event.Account).
		Int64("customerId", customer.ID).
		Msg("Customer webhook event accepted")

	return nil
}
