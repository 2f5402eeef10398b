package ports

import (
	"context"

	"opshub-integrations-layer/internal/domain"
)

// ConnectionRepository defines the interface for connection persistence.
// Lookups that find nothing return (nil, nil); Delete on a missing id is
// the repository's NotFound signal.
type ConnectionRepository interface {
	// Save creates or replaces a connection keyed by its id.
	Save(ctx context.Context, conn *domain.Connection) error

	// GetActiveByUser retrieves the active connection for a user and
	// provider, or nil if none exists.
	GetActiveByUser(ctx context.Context, userID, provider string) (*domain.Connection, error)

	// GetByAccount retrieves a connection by provider and account
	// identifier regardless of active state, or nil if none exists.
	GetByAccount(ctx context.Context, provider, accountID string) (*domain.Connection, error)

	// Delete removes a connection by id.
	Delete(ctx context.Context, id string) error
}
