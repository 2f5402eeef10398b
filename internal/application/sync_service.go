package application

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"opshub-integrations-layer/internal/domain"
	"opshub-integrations-layer/internal/ports"
)

// taskDueWindow is the fixed deadline attached to tasks surfaced by the
// reconciler.
const taskDueWindow = 24 * time.Hour

// SyncService computes the incremental delta since a client-supplied
// checkpoint. Three independent signals are ORed into hasUpdates: new
// external approvals, new external rejections, and the cleared pending
// marker. Every signal is failure-tolerant: a missing or unreadable
// file contributes nothing and never fails the poll.
type SyncService struct {
	approvals  ports.ApprovalStore
	rejections ports.RejectionStore
	marker     ports.MarkerStore
	logger     zerolog.Logger
	now        func() time.Time
}

func NewSyncService(
	approvals ports.ApprovalStore,
	rejections ports.RejectionStore,
	marker ports.MarkerStore,
	logger zerolog.Logger,
) *SyncService {
	return &SyncService{
		approvals:  approvals,
		rejections: rejections,
		marker:     marker,
		logger:     logger,
		now:        time.Now,
	}
}

// Status answers one poll. A zero lastCheck means "everything since the
// epoch"; the server never assumes it has seen a checkpoint before.
func (s *SyncService) Status(ctx context.Context, userID string, lastCheck time.Time) (*domain.SyncResult, error) {
	if userID == "" {
		return nil, domain.NewValidationError("userId", "userId is required")
	}

	now := s.now()
	result := &domain.SyncResult{
		NewApprovals:  []domain.Task{},
		NewRejections: []domain.RejectionRecord{},
		Timestamp:     now,
	}

	approvalsSeen := s.collectApprovals(ctx, lastCheck, now, result)
	rejectionsSeen := s.collectRejections(ctx, lastCheck, result)
	s.checkPendingMarker(ctx, approvalsSeen || rejectionsSeen, result)

	return result, nil
}

// collectApprovals fills result.NewApprovals and reports whether the
// approval collection exists at all (used for the pending-state
// heuristic).
func (s *SyncService) collectApprovals(ctx context.Context, lastCheck, now time.Time, result *domain.SyncResult) bool {
	modified, err := s.approvals.LastModified(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Approval store unreadable, skipping signal")
		return false
	}
	if modified.IsZero() {
		return false
	}
	if !modified.After(lastCheck) {
		return true
	}

	records, err := s.approvals.GetAll(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load approvals, skipping signal")
		return true
	}
	for i := range records {
		rec := &records[i]
		if !rec.ApprovedAt.After(lastCheck) || !rec.External() {
			continue
		}
		result.NewApprovals = append(result.NewApprovals, projectTask(rec, now))
	}
	if len(result.NewApprovals) > 0 {
		result.HasUpdates = true
	}
	return true
}

func (s *SyncService) collectRejections(ctx context.Context, lastCheck time.Time, result *domain.SyncResult) bool {
	modified, err := s.rejections.LastModified(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Rejection store unreadable, skipping signal")
		return false
	}
	if modified.IsZero() {
		return false
	}
	if !modified.After(lastCheck) {
		return true
	}

	records, err := s.rejections.GetAll(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load rejections, skipping signal")
		return true
	}
	for _, rec := range records {
		if rec.RejectedAt.After(lastCheck) && rec.External() {
			result.NewRejections = append(result.NewRejections, rec)
		}
	}
	if len(result.NewRejections) > 0 {
		result.HasUpdates = true
	}
	return true
}

// checkPendingMarker evaluates the presence marker. Absence is the
// edge-triggered "cleared" signal; the three-valued pendingState uses
// the existence of any decision collection to split "cleared" from
// "never pending", since the marker alone cannot tell them apart.
func (s *SyncService) checkPendingMarker(ctx context.Context, decisionsExist bool, result *domain.SyncResult) {
	exists, err := s.marker.Exists(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Pending marker unreadable, skipping signal")
		return
	}
	if exists {
		result.PendingState = domain.PendingStatePending
		return
	}

	result.PendingCleared = true
	result.HasUpdates = true
	if decisionsExist {
		result.PendingState = domain.PendingStateCleared
	} else {
		result.PendingState = domain.PendingStateNever
	}
}

// projectTask shapes an approval record for display. Missing
// recommendation fields fall back to fixed text rather than rendering
// empty strings in the dashboard.
func projectTask(rec *domain.ApprovalRecord, now time.Time) domain.Task {
	status := "pending"
	if rec.Completed {
		status = "completed"
	}
	return domain.Task{
		ID:             rec.ID,
		Title:          taskTitle(&rec.Recommendation),
		Description:    taskDescription(&rec.Recommendation),
		Priority:       taskPriority(rec.Recommendation.Confidence),
		Status:         status,
		Source:         rec.Source,
		DueDate:        now.Add(taskDueWindow),
		CreatedAt:      rec.ApprovedAt,
		Recommendation: rec.Recommendation,
	}
}

func taskTitle(rec *domain.Recommendation) string {
	if rec.Action == "" {
		return "Review approved recommendation"
	}
	title := capitalize(rec.Action)
	if rec.Quantity > 0 {
		return title + " " + strconv.Itoa(rec.Quantity) + " units"
	}
	return title
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func taskDescription(rec *domain.Recommendation) string {
	if rec.Reasoning == "" {
		return "Approved via external chat"
	}
	return rec.Reasoning
}

func taskPriority(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return domain.PriorityHigh
	case confidence >= 0.5:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}
