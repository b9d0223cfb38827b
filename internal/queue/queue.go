// Package queue defines the document job contract shared by the API and the
// workers, independent of the transport that carries it.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Job asks a worker to run the ingestion pipeline for one document.
type Job struct {
	DocumentID  string `json:"document_id"`
	StorageKey  string `json:"storage_key"`
	ContentType string `json:"content_type"`
}

// Encode returns the JSON wire form of j.
func (j Job) Encode() ([]byte, error) {
	return json.Marshal(j)
}

// DecodeJob parses a job payload.
func DecodeJob(data []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	if j.DocumentID == "" {
		return Job{}, errors.New("decode job: missing document_id")
	}
	return j, nil
}

// Delivery is one attempt at a job.
type Delivery struct {
	ID      string
	Job     Job
	Payload []byte
	// Attempt starts at 1 and increases on every redelivery.
	Attempt int
}

// Handler processes a delivery. A nil return acknowledges the job; an error
// leaves it for redelivery.
type Handler func(ctx context.Context, d Delivery) error

// Publisher enqueues document jobs.
type Publisher interface {
	Publish(ctx context.Context, job Job) error
}

// Consumer pulls jobs and feeds them to a Handler until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, h Handler) error
	// Name identifies the queue in logs and dead-letter records.
	Name() string
}

// DeadLetterer is implemented by transports that keep their own dead-letter queue.
type DeadLetterer interface {
	DeadLetter(ctx context.Context, d Delivery, reason string) error
}
