package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cityportal/models"

	"github.com/hibiken/asynq"
)

// Task type names.
const (
	TypeBroadcast       = "notification:broadcast"
	TypeMaintenanceScan = "resource:maintenance_scan"
)

// NewBroadcastTask builds the fan-out task for a broadcast.
func NewBroadcastTask(p models.BroadcastPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBroadcast, b)
	opts := []asynq.Option{asynq.MaxRetry(3), asynq.Timeout(5 * time.Minute)}
	return task, opts, nil
}

// NewMaintenanceScanTask builds the periodic maintenance scan task.
func NewMaintenanceScanTask(lookaheadDays int) (*asynq.Task, error) {
	b, err := json.Marshal(models.MaintenanceScanPayload{LookaheadDays: lookaheadDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeMaintenanceScan, b, asynq.MaxRetry(1)), nil
}

// Enqueuer is the subset of *asynq.Client the queue needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Queue enqueues background tasks.
type Queue struct {
	client Enqueuer
}

func NewQueue(client Enqueuer) *Queue {
	return &Queue{client: client}
}

// EnqueueBroadcast queues a notification fan-out.
func (q *Queue) EnqueueBroadcast(ctx context.Context, p models.BroadcastPayload) error {
	task, opts, err := NewBroadcastTask(p)
	if err != nil {
		return fmt.Errorf("failed to build broadcast task: %w", err)
	}
	if _, err := q.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue broadcast task: %w", err)
	}
	return nil
}
