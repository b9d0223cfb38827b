package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDecodeJobRequiresDocumentID(t *testing.T) {
	if _, err := DecodeJob([]byte(`{"storage_key":"k"}`)); err == nil {
		t.Fatal("expected error for missing document_id")
	}
	j, err := DecodeJob([]byte(`{"document_id":"d1","storage_key":"u/d1.pdf","content_type":"application/pdf"}`))
	if err != nil {
		t.Fatalf("DecodeJob: %v", err)
	}
	if j.DocumentID != "d1" || j.StorageKey != "u/d1.pdf" {
		t.Fatalf("unexpected job: %+v", j)
	}
}

func TestMemoryRedeliversFailedJobs(t *testing.T) {
	q := NewMemory(4, 10*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := q.Publish(ctx, Job{DocumentID: "d1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	var mu sync.Mutex
	var attempts []int
	done := make(chan struct{})
	go func() {
		_ = q.Consume(ctx, func(_ context.Context, d Delivery) error {
			mu.Lock()
			defer mu.Unlock()
			attempts = append(attempts, d.Attempt)
			if d.Attempt < 3 {
				return errors.New("transient")
			}
			close(done)
			return nil
		})
	}()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("job was not redelivered in time")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(attempts) != 3 || attempts[0] != 1 || attempts[2] != 3 {
		t.Fatalf("unexpected attempts: %v", attempts)
	}
}
