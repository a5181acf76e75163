package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Dead letters live in one list per source queue, keyed dlq:<queue>, and are
// only ever inspected by hand.
const DLQPrefix = "dlq:"

// DeadLetter is a job that exhausted its attempts or had no handler.
type DeadLetter struct {
	Job
	Queue    string    `json:"queue"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

// SendToDLQ records job as a dead letter of queue.
func SendToDLQ(ctx context.Context, q Queue, queue string, job Job, reason string) error {
	data, err := json.Marshal(DeadLetter{Job: job, Queue: queue, Reason: reason, FailedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("dlq: marshal %s job: %w", job.Type, err)
	}
	if err := q.Push(ctx, DLQPrefix+queue, data); err != nil {
		return fmt.Errorf("dlq: push %s: %w", DLQPrefix+queue, err)
	}
	return nil
}

// DLQLength reports how many dead letters queue has accumulated.
func DLQLength(ctx context.Context, q Queue, queue string) (int64, error) {
	return q.Len(ctx, DLQPrefix+queue)
}
