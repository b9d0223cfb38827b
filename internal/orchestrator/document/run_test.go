package document

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"studyflow/internal/extract"
	"studyflow/internal/model"
	"studyflow/internal/queue"
	"studyflow/internal/repository/memory"
	"studyflow/internal/service"
	"studyflow/internal/storage"

	"github.com/rs/zerolog"
)

type flakyIngestion struct {
	mu     sync.Mutex
	err    error
	calls  int
	failed map[string]model.ErrorDetails
}

func (f *flakyIngestion) Process(context.Context, queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *flakyIngestion) Fail(_ context.Context, id string, details model.ErrorDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed == nil {
		f.failed = map[string]model.ErrorDetails{}
	}
	f.failed[id] = details
	return nil
}

type recordingDeadLetterer struct {
	*queue.Memory
	reasons []string
}

func (r *recordingDeadLetterer) DeadLetter(_ context.Context, _ queue.Delivery, reason string) error {
	r.reasons = append(r.reasons, reason)
	return nil
}

func TestRunProcessesQueuedDocument(t *testing.T) {
	store := memory.NewStore()
	objects := storage.NewMemoryStore()
	jobs := queue.NewMemory(4, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, _ = objects.Put(ctx, "documents", "u1/notes.txt", []byte("Cell: unit of life"), extract.ContentTypeText)
	doc := &model.Document{UserID: "u1", StorageKey: "u1/notes.txt", ContentType: extract.ContentTypeText}
	_ = store.Documents.CreateDocument(ctx, doc)
	_ = jobs.Publish(ctx, queue.Job{DocumentID: doc.ID, StorageKey: doc.StorageKey, ContentType: doc.ContentType})

	ingestion := service.NewIngestionService(store.Documents, store.Flashcards, store.Users, objects, "documents",
		extract.NewRouter(), service.StandInAuthor{}, zerolog.Nop())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, zerolog.Nop(), Deps{Consumer: jobs, Ingestion: ingestion, Loops: 2, MaxDeliveries: 3})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		got, _ := store.Documents.GetDocumentByID(ctx, doc.ID)
		if got.ProcessingStatus == model.StatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("document not completed in time, status %s", got.ProcessingStatus)
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestHandlerRetriesBeforeLimit(t *testing.T) {
	ing := &flakyIngestion{err: errors.New("db down")}
	h := handler(zerolog.Nop(), Deps{Consumer: queue.NewMemory(1, 0), Ingestion: ing, MaxDeliveries: 3})

	if err := h(context.Background(), queue.Delivery{ID: "1", Job: queue.Job{DocumentID: "d1"}, Attempt: 1}); err == nil {
		t.Fatal("expected error so the job is redelivered")
	}
	if len(ing.failed) != 0 {
		t.Fatal("document must not be failed before the last attempt")
	}
}

func TestHandlerDeadLettersOnLastAttempt(t *testing.T) {
	mem := memory.New()
	ing := &flakyIngestion{err: errors.New("db down")}
	consumer := &recordingDeadLetterer{Memory: queue.NewMemory(1, 0)}
	h := handler(zerolog.Nop(), Deps{Consumer: consumer, Ingestion: ing, DLQ: service.NewDLQService(mem), MaxDeliveries: 3})

	if err := h(context.Background(), queue.Delivery{ID: "7", Job: queue.Job{DocumentID: "d1"}, Attempt: 3}); err != nil {
		t.Fatalf("last attempt should be acknowledged, got %v", err)
	}
	if ing.failed["d1"]["stage"] != "dead_letter" {
		t.Fatalf("document not marked failed: %v", ing.failed)
	}
	if len(mem.DeadLetters()) != 1 || len(consumer.reasons) != 1 {
		t.Fatalf("expected dead letter recorded and forwarded, got %d / %d", len(mem.DeadLetters()), len(consumer.reasons))
	}
}

func TestHandlerSkipsProcessingPastLimit(t *testing.T) {
	ing := &flakyIngestion{}
	h := handler(zerolog.Nop(), Deps{Consumer: queue.NewMemory(1, 0), Ingestion: ing, MaxDeliveries: 2})

	if err := h(context.Background(), queue.Delivery{ID: "9", Job: queue.Job{DocumentID: "d2"}, Attempt: 5}); err != nil {
		t.Fatalf("expected ack, got %v", err)
	}
	if ing.calls != 0 {
		t.Fatal("a job past its delivery limit must not be processed")
	}
}
