package queue

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"
)

// Memory is an in-process queue for single-instance development setups.
// Jobs do not survive a restart.
type Memory struct {
	jobs       chan Delivery
	seq        atomic.Int64
	retryDelay time.Duration
}

// NewMemory returns a Memory queue holding up to size pending jobs.
func NewMemory(size int, retryDelay time.Duration) *Memory {
	if size <= 0 {
		size = 128
	}
	return &Memory{jobs: make(chan Delivery, size), retryDelay: retryDelay}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Publish(ctx context.Context, job Job) error {
	payload, err := job.Encode()
	if err != nil {
		return err
	}
	d := Delivery{ID: strconv.FormatInt(m.seq.Add(1), 10), Job: job, Payload: payload, Attempt: 1}
	select {
	case m.jobs <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume runs h for each job. Failed deliveries are requeued after retryDelay.
func (m *Memory) Consume(ctx context.Context, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d := <-m.jobs:
			if err := h(ctx, d); err != nil {
				d.Attempt++
				go m.requeue(ctx, d)
			}
		}
	}
}

func (m *Memory) requeue(ctx context.Context, d Delivery) {
	select {
	case <-time.After(m.retryDelay):
	case <-ctx.Done():
		return
	}
	select {
	case m.jobs <- d:
	case <-ctx.Done():
	}
}

// Len reports the number of jobs waiting.
func (m *Memory) Len() int { return len(m.jobs) }
