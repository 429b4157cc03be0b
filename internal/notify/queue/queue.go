// Package queue buffers notification jobs between the request path and the
// delivery worker.
package queue

import (
	"context"
	"errors"

	"visitreg/internal/notify/models"
)

// ErrFull is returned when a bounded queue cannot take another job.
var ErrFull = errors.New("notification queue full")

// MemoryQueue is a bounded in-process queue. Jobs are lost on restart.
type MemoryQueue struct {
	jobs chan *models.Job
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryQueue{jobs: make(chan *models.Job, size)}
}

// Enqueue never blocks; a full buffer yields ErrFull.
func (q *MemoryQueue) Enqueue(ctx context.Context, job *models.Job) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrFull
	}
}

// Dequeue blocks until a job arrives or ctx is done.
func (q *MemoryQueue) Dequeue(ctx context.Context) (*models.Job, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Len() int { return len(q.jobs) }
