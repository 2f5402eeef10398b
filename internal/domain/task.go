package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Decision sources. Records written by the dashboard itself carry
// SourceDashboard; anything else (chat approvals in particular) is
// externally originated and must be surfaced by the reconciler.
const (
	SourceDashboard = "dashboard"
	SourceSlack     = "slack"
)

// Recommendation is the AI recommendation payload embedded in decision
// records. Generation is out of scope; this layer only reads it back.
type Recommendation struct {
	Action      string  `json:"action"`
	Quantity    int     `json:"quantity"`
	ExpectedROI string  `json:"expected_roi"`
	Reasoning   string  `json:"reasoning"`
	Confidence  float64 `json:"confidence"`
}

// ApprovalRecord is one entry of the append-only approved-decisions
// collection. Once written, Action/ApprovedAt/Source are immutable; the
// only legal mutation is flipping Completed and stamping CompletedAt.
type ApprovalRecord struct {
	ID             string         `json:"id"`
	Recommendation Recommendation `json:"recommendation"`
	ApprovedAt     time.Time      `json:"approved_at"`
	Source         string         `json:"source"`
	Completed      bool           `json:"completed"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
}

// External reports whether the record originated outside the dashboard's
// own request flow.
func (r *ApprovalRecord) External() bool {
	return r.Source != SourceDashboard
}

// The approval workflow writes timestamps with Python's
// datetime.isoformat(), which omits the UTC offset. Accept that form
// alongside RFC 3339; offset-less values are read as UTC.
func parseRecordTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05.999999999", value)
}

func (r *ApprovalRecord) UnmarshalJSON(data []byte) error {
	type plain ApprovalRecord
	aux := struct {
		ApprovedAt  string  `json:"approved_at"`
		CompletedAt *string `json:"completed_at"`
		*plain
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	approvedAt, err := parseRecordTime(aux.ApprovedAt)
	if err != nil {
		return fmt.Errorf("invalid approved_at %q: %w", aux.ApprovedAt, err)
	}
	r.ApprovedAt = approvedAt

	if aux.CompletedAt != nil {
		completedAt, err := parseRecordTime(*aux.CompletedAt)
		if err != nil {
			return fmt.Errorf("invalid completed_at %q: %w", *aux.CompletedAt, err)
		}
		r.CompletedAt = &completedAt
	}
	return nil
}

// RejectionRecord mirrors ApprovalRecord for declined recommendations.
type RejectionRecord struct {
	ID             string         `json:"id"`
	Recommendation Recommendation `json:"recommendation"`
	RejectedAt     time.Time      `json:"rejected_at"`
	Source         string         `json:"source"`
}

func (r *RejectionRecord) External() bool {
	return r.Source != SourceDashboard
}

func (r *RejectionRecord) UnmarshalJSON(data []byte) error {
	type plain RejectionRecord
	aux := struct {
		RejectedAt string `json:"rejected_at"`
		*plain
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	rejectedAt, err := parseRecordTime(aux.RejectedAt)
	if err != nil {
		return fmt.Errorf("invalid rejected_at %q: %w", aux.RejectedAt, err)
	}
	r.RejectedAt = rejectedAt
	return nil
}

// Task priorities derived from recommendation confidence.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Task is the display-ready projection of an approval record handed to
// the dashboard.
type Task struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Priority       string         `json:"priority"`
	Status         string         `json:"status"`
	Source         string         `json:"source"`
	DueDate        time.Time      `json:"due_date"`
	CreatedAt      time.Time      `json:"created_at"`
	Recommendation Recommendation `json:"recommendation"`
}

// Pending-marker states. The two-valued pendingCleared flag conflates
// "never pending" with "just cleared"; PendingState separates them using
// the presence of any decision record as evidence that something was
// pending once.
const (
	PendingStateNever   = "never-pending"
	PendingStatePending = "pending"
	PendingStateCleared = "cleared"
)

// SyncResult is the reconciler's answer for one client checkpoint.
type SyncResult struct {
	HasUpdates     bool              `json:"hasUpdates"`
	NewApprovals   []Task            `json:"newApprovals"`
	NewRejections  []RejectionRecord `json:"newRejections"`
	PendingCleared bool              `json:"pendingCleared"`
	PendingState   string            `json:"pendingState"`
	Timestamp      time.Time         `json:"timestamp"`
}
