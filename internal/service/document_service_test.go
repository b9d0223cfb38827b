package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"studyflow/internal/extract"
	"studyflow/internal/model"
	"studyflow/internal/queue"
	"studyflow/internal/repository"
	"studyflow/internal/repository/memory"
	"studyflow/internal/storage"

	"github.com/rs/zerolog"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, queue.Job) error { return errors.New("queue down") }

type documentFixture struct {
	store   *repository.Store
	objects *storage.MemoryStore
	jobs    *queue.Memory
	docs    DocumentService
}

func newDocumentFixture(pub queue.Publisher) *documentFixture {
	store := memory.NewStore()
	objects := storage.NewMemoryStore()
	jobs := queue.NewMemory(8, 0)
	if pub == nil {
		pub = jobs
	}
	users := NewUserService(store.Users, zerolog.Nop())
	limits := UploadLimits{FreeMaxBytes: 16, PremiumMaxBytes: 64}
	docs := NewDocumentService(store.Documents, users, objects, "documents", pub, limits, zerolog.Nop())
	return &documentFixture{store: store, objects: objects, jobs: jobs, docs: docs}
}

func TestUploadStoresAndEnqueues(t *testing.T) {
	f := newDocumentFixture(nil)
	doc, err := f.docs.Upload(context.Background(), "u1", UploadInput{FileName: "Chapter 1.txt", ContentType: "text/plain; charset=utf-8", Data: []byte("hello")})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if doc.Title != "Chapter 1" || doc.ProcessingStatus != model.StatusPending || doc.ContentType != extract.ContentTypeText {
		t.Fatalf("unexpected document %+v", doc)
	}
	if !strings.HasPrefix(doc.StorageKey, "u1/") || !strings.HasSuffix(doc.StorageKey, ".txt") {
		t.Fatalf("unexpected storage key %q", doc.StorageKey)
	}
	if _, err := f.objects.Get(context.Background(), "documents", doc.StorageKey); err != nil {
		t.Fatalf("object not stored: %v", err)
	}
	if f.jobs.Len() != 1 {
		t.Fatalf("expected one queued job, got %d", f.jobs.Len())
	}
}

func TestUploadValidation(t *testing.T) {
	f := newDocumentFixture(nil)
	ctx := context.Background()

	if _, err := f.docs.Upload(ctx, "u1", UploadInput{}); !errors.Is(err, ErrNoFile) {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}
	if _, err := f.docs.Upload(ctx, "u1", UploadInput{FileName: "a.png", ContentType: "image/png", Data: []byte("x")}); !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}
	big := []byte(strings.Repeat("a", 32))
	if _, err := f.docs.Upload(ctx, "u1", UploadInput{FileName: "a.txt", ContentType: "text/plain", Data: big}); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge for free user, got %v", err)
	}
	makePremium(t, f.store, "u1")
	if _, err := f.docs.Upload(ctx, "u1", UploadInput{FileName: "a.txt", ContentType: "text/plain", Data: big}); err != nil {
		t.Fatalf("premium upload rejected: %v", err)
	}
}

func TestUploadInfersTypeFromExtension(t *testing.T) {
	f := newDocumentFixture(nil)
	doc, err := f.docs.Upload(context.Background(), "u1", UploadInput{FileName: "paper.PDF", ContentType: "application/octet-stream", Data: []byte("%PDF")})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if doc.ContentType != extract.ContentTypePDF {
		t.Fatalf("expected pdf content type, got %q", doc.ContentType)
	}
}

func TestUploadMarksFailedWhenEnqueueFails(t *testing.T) {
	f := newDocumentFixture(failingPublisher{})
	if _, err := f.docs.Upload(context.Background(), "u1", UploadInput{FileName: "a.txt", ContentType: "text/plain", Data: []byte("x")}); err == nil {
		t.Fatal("expected enqueue error")
	}
	docs, _ := f.docs.List(context.Background(), "u1", 10)
	if len(docs) != 1 || docs[0].ProcessingStatus != model.StatusFailed {
		t.Fatalf("expected the document to be marked failed, got %+v", docs)
	}
}

func TestGetDocumentOwnership(t *testing.T) {
	f := newDocumentFixture(nil)
	doc, _ := f.docs.Upload(context.Background(), "owner", UploadInput{FileName: "a.txt", ContentType: "text/plain", Data: []byte("x")})

	if _, err := f.docs.Get(context.Background(), "other", doc.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.docs.Get(context.Background(), "owner", "missing"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestFlashcardCreateAndList(t *testing.T) {
	f := newDocumentFixture(nil)
	ctx := context.Background()
	doc, _ := f.docs.Upload(ctx, "owner", UploadInput{FileName: "a.txt", ContentType: "text/plain", Data: []byte("x")})
	cards := NewFlashcardService(f.store.Flashcards, f.docs, zerolog.Nop())

	if _, err := cards.Create(ctx, "owner", CreateFlashcardInput{DocumentID: doc.ID, Front: "Q"}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := cards.Create(ctx, "owner", CreateFlashcardInput{DocumentID: doc.ID, Front: "Q", Back: "A", Difficulty: "brutal"}); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
	if _, err := cards.Create(ctx, "intruder", CreateFlashcardInput{DocumentID: doc.ID, Front: "Q", Back: "A"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	card, err := cards.Create(ctx, "owner", CreateFlashcardInput{DocumentID: doc.ID, Front: "Q", Back: "A"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if card.Difficulty != model.DifficultyMedium || card.UserID != "owner" {
		t.Fatalf("unexpected card %+v", card)
	}

	byDoc, err := cards.List(ctx, "owner", doc.ID)
	if err != nil || len(byDoc) != 1 {
		t.Fatalf("List by document = %v, %v", byDoc, err)
	}
	if _, err := cards.List(ctx, "intruder", doc.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden listing another user's document, got %v", err)
	}
	all, _ := cards.List(ctx, "owner", "")
	if len(all) != 1 {
		t.Fatalf("expected 1 card for owner, got %d", len(all))
	}
}

func TestStudySessionValidation(t *testing.T) {
	f := newDocumentFixture(nil)
	ctx := context.Background()
	sessions := NewStudySessionService(f.store.StudySessions, f.docs, zerolog.Nop())

	if _, err := sessions.Create(ctx, "u1", CreateStudySessionInput{CardsStudied: 2, CorrectAnswers: 3}); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	s, err := sessions.Create(ctx, "u1", CreateStudySessionInput{CardsStudied: 5, CorrectAnswers: 4, SessionDuration: 120})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if s.SessionType != "flashcards" || s.DocumentID != nil {
		t.Fatalf("unexpected session %+v", s)
	}
	list, _ := sessions.List(ctx, "u1", 50)
	if len(list) != 1 {
		t.Fatalf("expected 1 session, got %d", len(list))
	}
}
