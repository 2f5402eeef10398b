// Package trigger publishes fire-and-forget signals to downstream
// collaborators (insight generation, alerting) over redis pub/sub. The
// bus owns its client lifecycle: constructed once at startup, closed on
// shutdown.
package trigger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"opshub-integrations-layer/internal/ports"
)

const (
	insightRefreshChannel = "insights.refresh"
	lowStockChannel       = "alerts.low_stock"
)

// RedisBus implements TriggerBus over redis pub/sub channels.
type RedisBus struct {
	client *redis.Client
	logger zerolog.Logger
}

var _ ports.TriggerBus = (*RedisBus)(nil)

func NewRedisBus(addr string, logger zerolog.Logger) *RedisBus {
	return &RedisBus{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		logger: logger,
	}
}

func (b *RedisBus) PublishInsightRefresh(ctx context.Context, signal ports.InsightRefreshSignal) error {
	return b.publish(ctx, insightRefreshChannel, signal)
}

func (b *RedisBus) PublishLowStock(ctx context.Context, signal ports.LowStockSignal) error {
	return b.publish(ctx, lowStockChannel, signal)
}

func (b *RedisBus) publish(ctx context.Context, channel string, signal any) error {
	payload, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("failed to encode signal: %w", err)
	}
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	b.logger.Debug().Str("channel", channel).Msg("Published trigger signal")
	return nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}
