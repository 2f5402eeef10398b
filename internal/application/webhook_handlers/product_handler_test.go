package webhook_handlers

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opshub-integrations-layer/internal/domain"
)

func TestProductHandlerLowStockFiresOncePerEvent(t *testing.T) {
	bus := &recordingTriggerBus{}
	h := NewProductHandler(bus, zerolog.Nop())

	payload := `{
		"id": 2001,
		"title": "Widget",
		"variants": [
			{"id": 1, "sku": "W-S", "inventory_quantity": 3},
			{"id": 2, "sku": "W-M", "inventory_quantity": 7},
			{"id": 3, "sku": "W-L", "inventory_quantity": 40}
		]
	}`
	err := h.Handle(context.Background(), &domain.WebhookEvent{
		Topic:   domain.TopicProductUpdated,
		Account: "acme.myshopify.com",
		Payload: []byte(payload),
	})
	require.NoError(t, err)

	// One alert carrying both low variants, never one alert per variant.
	require.Len(t, bus.lowStock, 1)
	signal := bus.lowStock[0]
	assert.Equal(t, int64(2001), signal.ProductID)
	assert.Equal(t, "Widget", signal.Title)
	require.Len(t, signal.Variants, 2)
	assert.Equal(t, "W-S", signal.Variants[0].SKU)
	assert.Equal(t, 3, signal.Variants[0].Quantity)
}

func TestProductHandlerHealthyStockStaysQuiet(t *testing.T) {
	bus := &recordingTriggerBus{}
	h := NewProductHandler(bus, zerolog.Nop())

	payload := `{
		"id": 2002,
		"title": "Widget",
		"variants": [
			{"id": 1, "inventory_quantity": 10},
			{"id": 2, "inventory_quantity": 25}
		]
	}`
	err := h.Handle(context.Background(), &domain.WebhookEvent{
		Topic:   domain.TopicProductUpdated,
		Account: "acme.myshopify.com",
		Payload: []byte(payload),
	})
	require.NoError(t, err)
	assert.Empty(t, bus.lowStock)
}

func TestProductHandlerCreateDoesNotScanStock(t *testing.T) {
	bus := &recordingTriggerBus{}
	h := NewProductHandler(bus, zerolog.Nop())

	payload := `{"id": 2003, "title": "Widget", "variants": [{"id": 1, "inventory_quantity": 0}]}`
	err := h.Handle(context.Background(), &domain.WebhookEvent{
		Topic:   domain.TopicProductCreated,
		Account: "acme.myshopify.com",
		Payload: []byte(payload),
	})
	require.NoError(t, err)
	assert.Empty(t, bus.lowStock)
}

func TestProductHandlerNoVariants(t *testing.T) {
	bus := &recordingTriggerBus{}
	h := NewProductHandler(bus, zerolog.Nop())

	err := h.Handle(context.Background(), &domain.WebhookEvent{
		Topic:   domain.TopicProductUpdated,
		Account: "acme.myshopify.com",
		Payload: []byte(`{"id": 2004, "title": "Widget"}`),
	})
	require.NoError(t, err)
	assert.Empty(t, bus.lowStock)
}

func TestProductHandlerRejectsBadPayload(t *testing.T) {
	h := NewProductHandler(&recordingTriggerBus{}, zerolog.Nop())

	err := h.Handle(context.Background(), &domain.WebhookEvent{
		Topic:   domain.TopicProductUpdated,
		Account: "acme.myshopify.com",
		Payload: []byte(`{"title": "no id"}`),
	})
	require.Error(t, err)
}
