package application

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opshub-integrations-layer/internal/domain"
)

func TestListFiltersCompletedTasks(t *testing.T) {
	done := time.Now().Add(-time.Hour)
	approvals := &fakeApprovalStore{
		records: []domain.ApprovalRecord{
			approvalAt("open", time.Now().Add(-2*time.Hour), domain.SourceSlack),
			{
				ID:          "done",
				ApprovedAt:  time.Now().Add(-3 * time.Hour),
				Source:      domain.SourceSlack,
				Completed:   true,
				CompletedAt: &done,
			},
		},
	}
	svc := NewTaskService(approvals, zerolog.Nop())

	tasks, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "open", tasks[0].ID)

	all, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestCompleteFlipsRecordAndPersists(t *testing.T) {
	approvals := &fakeApprovalStore{
		records: []domain.ApprovalRecord{
			approvalAt("apr-1", time.Now().Add(-time.Hour), domain.SourceSlack),
			approvalAt("apr-2", time.Now().Add(-time.Hour), domain.SourceSlack),
		},
	}
	svc := NewTaskService(approvals, zerolog.Nop())

	task, err := svc.Complete(context.Background(), "apr-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", task.Status)

	// The whole collection was rewritten with only apr-1 changed.
	require.Len(t, approvals.replaced, 1)
	written := approvals.replaced[0]
	require.Len(t, written, 2)
	assert.True(t, written[0].Completed)
	require.NotNil(t, written[0].CompletedAt)
	assert.False(t, written[1].Completed)
}

func TestCompleteRejectsDoubleCompletion(t *testing.T) {
	approvals := &fakeApprovalStore{
		records: []domain.ApprovalRecord{approvalAt("apr-1", time.Now(), domain.SourceSlack)},
	}
	svc := NewTaskService(approvals, zerolog.Nop())

	_, err := svc.Complete(context.Background(), "apr-1")
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), "apr-1")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestCompleteUnknownTask(t *testing.T) {
	svc := NewTaskService(&fakeApprovalStore{}, zerolog.Nop())

	_, err := svc.Complete(context.Background(), "nope")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)

	_, err = svc.Complete(context.Background(), "")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}
