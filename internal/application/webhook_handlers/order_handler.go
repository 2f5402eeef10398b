package webhook_handlers

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"opshub-integrations-layer/internal/domain"
	"opshub-integrations-layer/internal/ports"
)

// MaterialOrderTotal is the order-value bar above which an order event
// asks the insight generator to recompute.
const MaterialOrderTotal = 500.0

// OrderHandler handles order-related webhook events. Created, updated
// and paid events fire an insight-refresh trigger when the materiality
// predicate holds; fulfilled and cancelled events are accepted and
// logged as extension points.
type OrderHandler struct {
	triggers ports.TriggerBus
	logger   zerolog.Logger
}

func NewOrderHandler(triggers ports.TriggerBus, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		triggers: triggers,
		logger:   logger,
	}
}

// CanHandle returns true if this handler can process the given topic.
func (h *OrderHandler) CanHandle(topic string) bool {
	return topic == domain.TopicOrderCreated ||
		topic == domain.TopicOrderUpdated ||
		topic == domain.TopicOrderPaid ||
		topic == domain.TopicOrderFulfilled ||
		topic == domain.TopicOrderCancelled
}

// Handle processes an order webhook event.
func (h *OrderHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var order orderPayload
	if err := parsePayload(orderSchema, event.Payload, &order); err != nil {
		return err
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("account", event.Account).
		Int64("orderId", order.ID).
		Str("totalPrice", order.TotalPrice).
		Str("financialStatus", order.FinancialStatus).
		Msg("Processing order webhook event")

	switch event.Topic {
	case domain.TopicOrderCreated, domain.TopicOrderUpdated, domain.TopicOrderPaid:
		total, err := strconv.ParseFloat(order.TotalPrice, 64)
		if err != nil && order.TotalPrice != "" {
			h.logger.Warn().
				Str("totalPrice", order.TotalPrice).
				Int64("orderId", order.ID).
				Msg("Unparseable order total, treating as zero")
		}
		if !material(total, order.FinancialStatus) {
			return nil
		}
		signal := ports.InsightRefreshSignal{
			Account:         event.Account,
			OrderID:         order.ID,
			Total:           total,
			FinancialStatus: order.FinancialStatus,
		}
		// The provider already got its 200; a failed trigger is logged,
		// never surfaced.
		if err := h.triggers.PublishInsightRefresh(ctx, signal); err != nil {
			h.logger.Error().Err(err).Int64("orderId", order.ID).Msg("Failed to publish insight refresh")
		}
	case domain.TopicOrderFulfilled:
		h.logger.Info().Str("account", event.Account).Int64("orderId", order.ID).Msg("Order fulfilled")
	case domain.TopicOrderCancelled:
		h.logger.Info().Str("account", event.Account).Int64("orderId", order.ID).Msg("Order cancelled")
	}

	return nil
}

// material is the insight-refresh predicate: a big enough order, or a
// transition into paid.
func material(total float64, financialStatus string) bool {
	return total > MaterialOrderTotal || financialStatus == "paid"
}
