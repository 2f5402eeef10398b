package ports

import "context"

// InsightRefreshSignal asks the downstream insight generator to
// recompute; fired when an order webhook crosses the materiality bar.
type InsightRefreshSignal struct {
	Account         string  `json:"account"`
	OrderID         int64   `json:"order_id"`
	Total           float64 `json:"total"`
	FinancialStatus string  `json:"financial_status"`
}

// LowStockVariant is one unit that fell below the stock threshold.
type LowStockVariant struct {
	ID       int64  `json:"id"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// LowStockSignal notifies the downstream alerting collaborator.
type LowStockSignal struct {
	Account   string            `json:"account"`
	ProductID int64             `json:"product_id"`
	Title     string            `json:"title"`
	Variants  []LowStockVariant `json:"variants"`
}

// TriggerBus carries fire-and-forget signals to downstream collaborators.
// Publish failures are the caller's to log; they must never block or fail
// the webhook response.
type TriggerBus interface {
	PublishInsightRefresh(ctx context.Context, signal InsightRefreshSignal) error
	PublishLowStock(ctx context.Context, signal LowStockSignal) error
	Close() error
}
