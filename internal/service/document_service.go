package service

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"studyflow/internal/extract"
	"studyflow/internal/model"
	"studyflow/internal/queue"
	"studyflow/internal/repository"
	"studyflow/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UploadInput is a document received from a multipart form.
type UploadInput struct {
	FileName    string
	Title       string
	ContentType string
	Data        []byte
}

// UploadLimits caps the upload size by plan, in bytes.
type UploadLimits struct {
	FreeMaxBytes    int64
	PremiumMaxBytes int64
}

type DocumentService interface {
	Upload(ctx context.Context, userID string, in UploadInput) (*model.Document, error)
	List(ctx context.Context, userID string, limit int) ([]model.Document, error)
	// Get returns the document when userID owns it.
	Get(ctx context.Context, userID, documentID string) (*model.Document, error)
}

type documentService struct {
	repo      repository.DocumentRepository
	users     UserService
	store     storage.ObjectStore
	bucket    string
	publisher queue.Publisher
	limits    UploadLimits
	logger    zerolog.Logger
}

func NewDocumentService(
	repo repository.DocumentRepository,
	users UserService,
	store storage.ObjectStore,
	bucket string,
	publisher queue.Publisher,
	limits UploadLimits,
	logger zerolog.Logger,
) DocumentService {
	return &documentService{
		repo:      repo,
		users:     users,
		store:     store,
		bucket:    bucket,
		publisher: publisher,
		limits:    limits,
		logger:    logger.With().Str("service", "DocumentService").Logger(),
	}
}

// Upload stores the file, records a pending document and enqueues it for processing.
func (s *documentService) Upload(ctx context.Context, userID string, in UploadInput) (*model.Document, error) {
	if in.FileName == "" || len(in.Data) == 0 {
		return nil, ErrNoFile
	}
	contentType := contentTypeFor(in.ContentType, in.FileName)
	if !extract.Supported(contentType) {
		return nil, ErrUnsupportedFileType
	}

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	maxBytes := s.limits.FreeMaxBytes
	if u.IsPremium {
		maxBytes = s.limits.PremiumMaxBytes
	}
	if maxBytes > 0 && int64(len(in.Data)) > maxBytes {
		return nil, ErrFileTooLarge
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSuffix(in.FileName, filepath.Ext(in.FileName))
	}

	// 1. Upload the original file
	key := path.Join(userID, uuid.NewString()+strings.ToLower(filepath.Ext(in.FileName)))
	url, err := s.store.Put(ctx, s.bucket, key, in.Data, contentType)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to upload document to storage")
		return nil, fmt.Errorf("upload document: %w", err)
	}

	// 2. Record the document as pending
	doc := &model.Document{
		UserID:           userID,
		Title:            title,
		FileName:         in.FileName,
		FileURL:          url,
		StorageKey:       key,
		FileSize:         int64(len(in.Data)),
		ContentType:      contentType,
		ProcessingStatus: model.StatusPending,
	}
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		_ = s.store.Delete(ctx, s.bucket, key)
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create document record")
		return nil, fmt.Errorf("create document: %w", err)
	}

	// 3. Hand the document to the processing queue
	job := queue.Job{DocumentID: doc.ID, StorageKey: key, ContentType: contentType}
	if err := s.publisher.Publish(ctx, job); err != nil {
		s.logger.Error().Err(err).Str("document_id", doc.ID).Msg("Failed to enqueue document job")
		details := model.ErrorDetails{"stage": "enqueue", "error": err.Error()}
		if markErr := s.repo.MarkFailed(ctx, doc.ID, details); markErr != nil {
			s.logger.Error().Err(markErr).Str("document_id", doc.ID).Msg("Failed to mark document failed after enqueue error")
		}
		return nil, fmt.Errorf("enqueue document: %w", err)
	}

	s.logger.Info().Str("document_id", doc.ID).Str("user_id", userID).Int64("size", doc.FileSize).Msg("Document uploaded")
	return doc, nil
}

func (s *documentService) List(ctx context.Context, userID string, limit int) ([]model.Document, error) {
	return s.repo.ListDocumentsByUser(ctx, userID, limit)
}

func (s *documentService) Get(ctx context.Context, userID, documentID string) (*model.Document, error) {
	doc, err := s.repo.GetDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	if doc.UserID != userID {
		return nil, ErrForbidden
	}
	return doc, nil
}

// contentTypeFor prefers the declared type and falls back to the file extension
// for clients that send application/octet-stream.
func contentTypeFor(declared, fileName string) string {
	ct := extract.Normalize(declared)
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return extract.ContentTypePDF
	case ".docx":
		return extract.ContentTypeDOCX
	case ".txt", ".md":
		return extract.ContentTypeText
	}
	return ct
}
