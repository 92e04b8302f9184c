// Package jobs brokers long-running provisioning work through a Redis-backed
// queue. Handlers run in a worker process; the HTTP layer only enqueues and
// polls status.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Status is the lifecycle state of a queued job.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusStarted  Status = "started"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
)

// ErrJobNotFound marks an unknown or expired job id.
var ErrJobNotFound = errors.New("jobs: job not found")

const (
	queueKey     = "ripley:queue"
	jobKeyPrefix = "ripley:job:"
	jobTTL       = 24 * time.Hour
)

// Job is one unit of queued work and its status record.
type Job struct {
	ID         string          `json:"id"`
	Func       string          `json:"func"`
	Args       json.RawMessage `json:"args"`
	Status     Status          `json:"status"`
	Error      string          `json:"error,omitempty"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
	StartedAt  *time.Time      `json:"startedAt,omitempty"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
}

// Queue enqueues jobs and reads their status records.
type Queue struct {
	rdb *redis.Client
}

// NewQueue wraps a Redis client.
func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

// Ping verifies Redis connectivity.
func (q *Queue) Ping(ctx context.Context) error {
	return q.rdb.Ping(ctx).Err()
}

// Enqueue stores a job record and pushes its id onto the work queue.
func (q *Queue) Enqueue(ctx context.Context, funcName string, args any) (*Job, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job args: %w", err)
	}
	job := &Job{
		ID:         uuid.NewString(),
		Func:       funcName,
		Args:       payload,
		Status:     StatusQueued,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := q.save(ctx, job); err != nil {
		return nil, err
	}
	if err := q.rdb.LPush(ctx, queueKey, job.ID).Err(); err != nil {
		return nil, fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}
	return job, nil
}

// Job loads a job's status record.
func (q *Queue) Job(ctx context.Context, id string) (*Job, error) {
	data, err := q.rdb.Get(ctx, jobKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", id, err)
	}
	return &job, nil
}

func (q *Queue) save(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}
	if err := q.rdb.Set(ctx, jobKeyPrefix+job.ID, data, jobTTL).Err(); err != nil {
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}
	return nil
}

// pop blocks until a job id is available or the timeout elapses. A nil job
// with nil error means the timeout elapsed.
func (q *Queue) pop(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.rdb.BRPop(ctx, timeout, queueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}
	return q.Job(ctx, result[1])
}
