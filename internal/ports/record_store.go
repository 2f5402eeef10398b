package ports

import (
	"context"
	"time"

	"opshub-integrations-layer/internal/domain"
)

// ApprovalStore is the minimal key-value contract over the append-only
// approval collection: read everything, atomically replace everything.
// ReplaceAll must never expose a partially-written collection to a
// concurrent reader (write-temp-then-rename or equivalent). Concurrent
// read-modify-write cycles against different records race; the last
// writer wins and silently drops the other's update unless the backing
// store provides per-record atomicity.
type ApprovalStore interface {
	GetAll(ctx context.Context) ([]domain.ApprovalRecord, error)
	ReplaceAll(ctx context.Context, records []domain.ApprovalRecord) error

	// LastModified returns the collection's last modification time.
	// A zero time with nil error means the collection does not exist yet.
	LastModified(ctx context.Context) (time.Time, error)
}

// RejectionStore mirrors ApprovalStore for rejected decisions.
type RejectionStore interface {
	GetAll(ctx context.Context) ([]domain.RejectionRecord, error)
	ReplaceAll(ctx context.Context, records []domain.RejectionRecord) error
	LastModified(ctx context.Context) (time.Time, error)
}

// MarkerStore exposes the pending-decision presence marker. The marker's
// existence is the whole signal; its content is irrelevant.
type MarkerStore interface {
	Exists(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
}
