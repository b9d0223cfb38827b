package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"studyflow/internal/api/v1/dto"
	"studyflow/internal/auth"
	"studyflow/internal/service"

	"github.com/rs/zerolog"
)

const (
	msgUnauthorized     = "Unauthorized"
	msgMissingFields    = "Missing required fields"
	msgInvalidJSON      = "Invalid JSON payload"
	msgGenerationFailed = "Story generation failed. Please check your OpenRouter API key configuration."
	msgLimitReached     = "Free users are limited to 10 stories. Upgrade to premium for unlimited stories!"
	codeLimitReached    = "LIMIT_REACHED"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Message: message})
}

// userID returns the authenticated caller, writing 401 when absent.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return "", false
	}
	return id.ID, true
}

// writeServiceError maps service errors onto HTTP responses. Unknown errors
// are logged and answered with fallback.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error, fallback string) {
	var tooLong *service.InputTooLongError
	var genErr *service.GenerationError
	switch {
	case errors.As(err, &tooLong):
		writeError(w, http.StatusBadRequest, tooLong.Error())
	case errors.As(err, &genErr):
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: msgGenerationFailed, Error: genErr.Err.Error()})
	case errors.Is(err, service.ErrStoryLimitReached):
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Message: msgLimitReached, Code: codeLimitReached})
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrDocumentNotFound):
		writeError(w, http.StatusNotFound, "Document not found")
	case errors.Is(err, service.ErrStoryNotFound):
		writeError(w, http.StatusNotFound, "Story not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, service.ErrMissingFields):
		writeError(w, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, service.ErrNoFile):
		writeError(w, http.StatusBadRequest, "No file provided")
	case errors.Is(err, service.ErrUnsupportedFileType):
		writeError(w, http.StatusBadRequest, "Unsupported file type. Upload a PDF, DOCX or plain text file.")
	case errors.Is(err, service.ErrFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
	case errors.Is(err, service.ErrInvalidDifficulty):
		writeError(w, http.StatusBadRequest, "Difficulty must be one of easy, medium, hard")
	case errors.Is(err, service.ErrInvalidSession):
		writeError(w, http.StatusBadRequest, "Invalid study session")
	case errors.Is(err, service.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "Input text is required")
	case errors.Is(err, service.ErrInvalidNarration):
		writeError(w, http.StatusBadRequest, "Invalid narration mode")
	case errors.Is(err, service.ErrMissingSignature):
		writeError(w, http.StatusBadRequest, "Missing signature")
	case errors.Is(err, service.ErrInvalidSignature):
		writeError(w, http.StatusUnauthorized, "Invalid signature")
	case errors.Is(err, service.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, "Invalid payload")
	case errors.Is(err, service.ErrAudioFailed):
		logger.Error().Err(err).Msg("Audio generation failed")
		writeError(w, http.StatusInternalServerError, "Both ElevenLabs and Cartesia TTS failed")
	default:
		logger.Error().Err(err).Msg(fallback)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
