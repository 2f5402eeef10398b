package domain

// Webhook topics this system subscribes to and dispatches on. The list is
// fixed; unknown inbound topics are acknowledged but produce no side
// effect.
const (
	TopicOrderCreated    = "orders/create"
	TopicOrderUpdated    = "orders/updated"
	TopicOrderPaid       = "orders/paid"
	TopicOrderFulfilled  = "orders/fulfilled"
	TopicOrderCancelled  = "orders/cancelled"
	TopicProductCreated  = "products/create"
	TopicProductUpdated  = "products/update"
	TopicCustomerCreated = "customers/create"
	TopicCustomerUpdated = "customers/update"
)

// SubscriptionTopics is the registration list, in creation order.
var SubscriptionTopics = []string{
	TopicOrderCreated,
	TopicOrderUpdated,
	TopicOrderPaid,
	TopicOrderFulfilled,
	TopicOrderCancelled,
	TopicProductCreated,
	TopicProductUpdated,
	TopicCustomerCreated,
	TopicCustomerUpdated,
}

// WebhookEvent is one verified inbound provider notification. It is
// constructed per request, consumed by exactly one dispatch, and never
// persisted.
type WebhookEvent struct {
	Topic   string
	Account string // source account identifier (shop domain)
	Payload []byte // exact bytes the signature was verified over
}

// RemoteWebhook is a provider-side subscription entry as returned by the
// provider's webhook list API.
type RemoteWebhook struct {
	ID      int64
	Topic   string
	Address string
}
