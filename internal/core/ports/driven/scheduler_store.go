package driven

import (
	"context"
	"time"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// SchedulerStore persists scheduled task state and run history.
type SchedulerStore interface {
	// GetTask retrieves a task by ID. Returns (nil, nil) when the task
	// has never been saved.
	GetTask(ctx context.Context, id string) (*domain.ScheduledTask, error)

	// ListTasks returns all persisted tasks.
	ListTasks(ctx context.Context) ([]*domain.ScheduledTask, error)

	// SaveTask persists a task. Creates or updates by ID.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// DeleteTask removes a task and its history.
	DeleteTask(ctx context.Context, id string) error

	// RecordResult appends a run result to the task's history.
	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// GetTaskHistory returns the most recent results for a task,
	// newest first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]*domain.TaskResult, error)

	// PruneHistory removes results older than the cutoff and returns
	// the number removed.
	PruneHistory(ctx context.Context, olderThan time.Time) (int, error)
}
