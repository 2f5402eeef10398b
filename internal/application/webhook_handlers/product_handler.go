package webhook_handlers

import (
	"context"

	"github.com/rs/zerolog"

	"opshub-integrations-layer/internal/domain"
	"opshub-integrations-layer/internal/ports"
)

// LowStockThreshold is the available-quantity floor; any variant below
// it flags the product on an update event.
const LowStockThreshold = 10

// ProductHandler handles product-related webhook events. Update events
// scan variants for low stock and fire at most one alert per event;
// create events are accepted and logged.
type ProductHandler struct {
	triggers ports.TriggerBus
	logger   zerolog.Logger
}

func NewProductHandler(triggers ports.TriggerBus, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		triggers: triggers,
		logger:   logger,
	}
}

// CanHandle returns true if this handler can process the given topic.
func (h *ProductHandler) CanHandle(topic string) bool {
	return topic == domain.TopicProductCreated ||
		topic == domain.TopicProductUpdated
}

// Handle processes a product webhook event.
func (h *ProductHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var product productPayload
	if err := parsePayload(productSchema, event.Payload, &product); err != nil {
		return err
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("account", event.Account).
		Int64("productId", product.ID).
		Str("title", product.Title).
		Msg("Processing product webhook event")

	if event.Topic != domain.TopicProductUpdated {
		return nil
	}

	var low []ports.LowStockVariant
	for _, variant := range product.Variants {
		if variant.InventoryQuantity < LowStockThreshold {
			low = append(low, ports.LowStockVariant{
				ID:       variant.ID,
				SKU:      variant.SKU,
				Quantity: variant.InventoryQuantity,
			})
		}
	}
	if len(low) == 0 {
		return nil
	}

	signal := ports.LowStockSignal{
		Account:   event.Account,
		ProductID: product.ID,
		Title:     product.Title,
		Variants:  low,
	}
	if err := h.triggers.PublishLowStock(ctx, signal); err != nil {
		h.logger.Error().Err(err).Int64("productId", product.ID).Msg("Failed to publish low stock alert")
	}

	return nil
}
