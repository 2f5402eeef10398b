package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"opshub-integrations-layer/internal/domain"
	"opshub-integrations-layer/internal/ports"
)

// TaskService exposes the approved-decision collection as actionable
// tasks and records completion back into it.
type TaskService struct {
	approvals ports.ApprovalStore
	logger    zerolog.Logger
	now       func() time.Time
}

func NewTaskService(approvals ports.ApprovalStore, logger zerolog.Logger) *TaskService {
	return &TaskService{
		approvals: approvals,
		logger:    logger,
		now:       time.Now,
	}
}

// List projects every approval record into a task. Completed tasks are
// filtered out unless includeCompleted is set.
func (s *TaskService) List(ctx context.Context, includeCompleted bool) ([]domain.Task, error) {
	records, err := s.approvals.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tasks := make([]domain.Task, 0, len(records))
	for i := range records {
		rec := &records[i]
		if rec.Completed && !includeCompleted {
			continue
		}
		tasks = append(tasks, projectTask(rec, now))
	}
	return tasks, nil
}

// Complete marks one approval record as done. Completing an already
// completed task is rejected so the client can surface the conflict.
func (s *TaskService) Complete(ctx context.Context, taskID string) (*domain.Task, error) {
	if taskID == "" {
		return nil, domain.NewValidationError("taskId", "taskId is required")
	}

	records, err := s.approvals.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range records {
		if records[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.NewNotFoundError("task", taskID)
	}
	if records[idx].Completed {
		return nil, domain.NewValidationError("taskId", "task is already completed")
	}

	now := s.now()
	records[idx].Completed = true
	records[idx].CompletedAt = &now

	if err := s.approvals.ReplaceAll(ctx, records); err != nil {
		return nil, err
	}

	s.logger.Info().Str("task_id", taskID).Msg("Task marked completed")

	task := projectTask(&records[idx], now)
	return &task, nil
}
