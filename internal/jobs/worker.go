package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// HandlerFunc executes one job given its decoded arguments.
type HandlerFunc func(ctx context.Context, args json.RawMessage) error

// Worker drains the queue and dispatches jobs to registered handlers.
type Worker struct {
	queue    *Queue
	handlers map[string]HandlerFunc
}

// NewWorker builds a worker over the given queue.
func NewWorker(queue *Queue) *Worker {
	return &Worker{
		queue:    queue,
		handlers: map[string]HandlerFunc{},
	}
}

// Register binds a job function name to its handler.
func (w *Worker) Register(funcName string, handler HandlerFunc) {
	w.handlers[funcName] = handler
}

// Run processes jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		job, err := w.queue.pop(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("failed to fetch next job", "error", err)
			continue
		}
		if job == nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *Job) {
	now := time.Now().UTC()
	job.Status = StatusStarted
	job.StartedAt = &now
	if err := w.queue.save(ctx, job); err != nil {
		slog.Error("failed to mark job started", "jobId", job.ID, "error", err)
	}

	err := w.dispatch(ctx, job)

	finished := time.Now().UTC()
	job.FinishedAt = &finished
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
		slog.Error("job failed", "jobId", job.ID, "func", job.Func, "error", err)
	} else {
		job.Status = StatusFinished
		slog.Info("job finished", "jobId", job.ID, "func", job.Func)
	}
	if err := w.queue.save(ctx, job); err != nil {
		slog.Error("failed to record job result", "jobId", job.ID, "error", err)
	}
}

func (w *Worker) dispatch(ctx context.Context, job *Job) (err error) {
	handler, ok := w.handlers[job.Func]
	if !ok {
		return fmt.Errorf("no handler registered for job func %q", job.Func)
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Join(err, fmt.Errorf("job panicked: %v", r))
		}
	}()
	return handler(ctx, job.Args)
}
