package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"studyflow/internal/api/v1/dto"
	"studyflow/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	documentListLimit   = 50
	multipartMemory     = 8 << 20
	multipartFormHeader = 1 << 20
)

type DocumentHandler struct {
	documentService service.DocumentService
	// maxUploadBytes caps the request body before the plan check in the service.
	maxUploadBytes int64
	logger         zerolog.Logger
}

func NewDocumentHandler(documentService service.DocumentService, maxUploadBytes int64, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, maxUploadBytes: maxUploadBytes, logger: logger}
}

func (h *DocumentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/documents", h.listDocuments)
	r.Post("/api/documents", h.uploadDocument)
	r.Get("/api/documents/{documentId}", h.getDocument)
}

// listDocuments godoc
// @Summary List documents
// @Description Returns the caller's most recent documents.
// @Tags documents
// @Produce json
// @Success 200 {array} model.Document
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/documents [get]
func (h *DocumentHandler) listDocuments(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	docs, err := h.documentService.List(r.Context(), uid, documentListLimit)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch documents")
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// uploadDocument godoc
// @Summary Upload a document
// @Description Stores the file and queues it for text extraction, summarization and flashcard authoring.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF, DOCX or plain text file"
// @Param title formData string false "Document title"
// @Success 200 {object} dto.DocumentUploadResponseDTO
// @Failure 400 {object} dto.ErrorResponse "No file provided"
// @Failure 413 {object} dto.ErrorResponse "File too large"
// @Failure 500 {object} dto.ErrorResponse "Failed to upload document"
// @Router /api/documents [post]
func (h *DocumentHandler) uploadDocument(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartFormHeader)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	doc, err := h.documentService.Upload(r.Context(), uid, service.UploadInput{
		FileName:    header.Filename,
		Title:       r.FormValue("title"),
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to upload document")
		return
	}
	writeJSON(w, http.StatusOK, dto.DocumentUploadResponseDTO{Message: "Document uploaded successfully", Document: doc})
}

// @Summary Get a document
// @Tags documents
// @Produce json
// @Param documentId path string true "Document ID"
// @Success 200 {object} model.Document
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/documents/{documentId} [get]
func (h *DocumentHandler) getDocument(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	doc, err := h.documentService.Get(r.Context(), uid, chi.URLParam(r, "documentId"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
