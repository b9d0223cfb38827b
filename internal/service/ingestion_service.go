package service

import (
	"context"
	"errors"
	"fmt"

	"studyflow/internal/extract"
	"studyflow/internal/model"
	"studyflow/internal/queue"
	"studyflow/internal/repository"
	"studyflow/internal/storage"

	"github.com/rs/zerolog"
)

// IngestionService runs the document pipeline: extract, summarize, author
// flashcards. Every stage is resumable from the stored status.
type IngestionService interface {
	// Process advances the job's document to a terminal status. Stage failures
	// mark the document failed and return nil; only storage or status-write
	// failures are returned so the job is redelivered.
	Process(ctx context.Context, job queue.Job) error
	// Fail marks a document failed, ignoring documents already terminal.
	Fail(ctx context.Context, documentID string, details model.ErrorDetails) error
}

type ingestionService struct {
	docs       repository.DocumentRepository
	flashcards repository.FlashcardRepository
	users      repository.UserRepository
	store      storage.ObjectStore
	bucket     string
	extractor  extract.Extractor
	author     Author
	logger     zerolog.Logger
}

func NewIngestionService(
	docs repository.DocumentRepository,
	flashcards repository.FlashcardRepository,
	users repository.UserRepository,
	store storage.ObjectStore,
	bucket string,
	extractor extract.Extractor,
	author Author,
	logger zerolog.Logger,
) IngestionService {
	return &ingestionService{
		docs:       docs,
		flashcards: flashcards,
		users:      users,
		store:      store,
		bucket:     bucket,
		extractor:  extractor,
		author:     author,
		logger:     logger.With().Str("service", "IngestionService").Logger(),
	}
}

func (s *ingestionService) Process(ctx context.Context, job queue.Job) error {
	log := s.logger.With().Str("document_id", job.DocumentID).Logger()

	doc, err := s.docs.GetDocumentByID(ctx, job.DocumentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		log.Warn().Msg("Document not found; dropping job")
		return nil
	}
	if model.IsTerminal(doc.ProcessingStatus) {
		log.Info().Str("status", doc.ProcessingStatus).Msg("Document already processed; skipping")
		return nil
	}

	text := ""
	if doc.ExtractedText != nil {
		text = *doc.ExtractedText
	}

	// 1. Extract
	if doc.ProcessingStatus == model.StatusPending {
		data, err := s.store.Get(ctx, s.bucket, doc.StorageKey)
		if errors.Is(err, storage.ErrObjectNotFound) {
			return s.failStage(ctx, doc.ID, "extract", err)
		}
		if err != nil {
			return fmt.Errorf("download document: %w", err)
		}
		text, err = s.extractor.Extract(ctx, data, doc.ContentType)
		if err != nil {
			return s.failStage(ctx, doc.ID, "extract", err)
		}
		if err := s.docs.MarkExtracted(ctx, doc.ID, text); err != nil {
			return s.advanceErr(log, "extracted", err)
		}
		doc.ProcessingStatus = model.StatusExtracted
		log.Debug().Int("chars", len(text)).Msg("Document text extracted")
	}

	// 2. Summarize
	if doc.ProcessingStatus == model.StatusExtracted {
		summary, err := s.author.Summarize(ctx, text)
		if err != nil {
			return s.failStage(ctx, doc.ID, "summarize", err)
		}
		if err := s.docs.MarkSummarized(ctx, doc.ID, summary); err != nil {
			return s.advanceErr(log, "summarized", err)
		}
		doc.ProcessingStatus = model.StatusSummarized
		log.Debug().Msg("Document summarized")
	}

	// 3. Author flashcards
	if doc.ProcessingStatus == model.StatusSummarized {
		if err := s.flashcards.DeleteFlashcardsByDocument(ctx, doc.ID); err != nil {
			return fmt.Errorf("clear flashcards: %w", err)
		}
		drafts, err := s.author.Flashcards(ctx, text)
		if err != nil {
			return s.failStage(ctx, doc.ID, "flashcards", err)
		}
		for _, d := range drafts {
			card := &model.Flashcard{
				DocumentID: doc.ID,
				UserID:     doc.UserID,
				Front:      d.Front,
				Back:       d.Back,
				Hint:       d.Hint,
				Difficulty: d.Difficulty,
				Category:   d.Category,
			}
			if err := s.flashcards.CreateFlashcard(ctx, card); err != nil {
				return fmt.Errorf("save flashcard: %w", err)
			}
		}
		if err := s.docs.MarkCompleted(ctx, doc.ID); err != nil {
			return s.advanceErr(log, "completed", err)
		}
		if err := s.users.IncrementDocumentsProcessed(ctx, doc.UserID); err != nil {
			log.Error().Err(err).Msg("Failed to increment documents_processed")
		}
		log.Info().Int("flashcards", len(drafts)).Msg("Document processing completed")
	}
	return nil
}

func (s *ingestionService) Fail(ctx context.Context, documentID string, details model.ErrorDetails) error {
	err := s.docs.MarkFailed(ctx, documentID, details)
	if errors.Is(err, repository.ErrInvalidTransition) || errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// failStage records a stage failure on the document. The job is acknowledged
// unless the status write itself fails.
func (s *ingestionService) failStage(ctx context.Context, documentID, stage string, cause error) error {
	s.logger.Warn().Err(cause).Str("document_id", documentID).Str("stage", stage).Msg("Document processing stage failed")
	details := model.ErrorDetails{"stage": stage, "error": cause.Error()}
	if err := s.Fail(ctx, documentID, details); err != nil {
		return fmt.Errorf("mark document failed: %w", err)
	}
	return nil
}

// advanceErr treats a lost status race as another delivery having advanced the
// document already.
func (s *ingestionService) advanceErr(log zerolog.Logger, to string, err error) error {
	if errors.Is(err, repository.ErrInvalidTransition) {
		log.Warn().Str("to", to).Msg("Document status changed concurrently; stopping")
		return nil
	}
	return fmt.Errorf("mark document %s: %w", to, err)
}
