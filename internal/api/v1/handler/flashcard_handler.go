package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"studyflow/internal/api/v1/dto"
	"studyflow/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type FlashcardHandler struct {
	flashcardService service.FlashcardService
	validate         *validator.Validate
	logger           zerolog.Logger
}

func NewFlashcardHandler(flashcardService service.FlashcardService, validate *validator.Validate, logger zerolog.Logger) *FlashcardHandler {
	return &FlashcardHandler{flashcardService: flashcardService, validate: validate, logger: logger}
}

func (h *FlashcardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/flashcards", h.listFlashcards)
	r.Post("/api/flashcards", h.createFlashcard)
}

// listFlashcards godoc
// @Summary List flashcards
// @Description Returns up to 100 of the caller's flashcards, optionally scoped to one document.
// @Tags flashcards
// @Produce json
// @Param documentId query string false "Document ID"
// @Success 200 {array} model.Flashcard
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/flashcards [get]
func (h *FlashcardHandler) listFlashcards(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	cards, err := h.flashcardService.List(r.Context(), uid, r.URL.Query().Get("documentId"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch flashcards")
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// createFlashcard godoc
// @Summary Create a flashcard
// @Tags flashcards
// @Accept json
// @Produce json
// @Param flashcard body dto.FlashcardCreateDTO true "Flashcard"
// @Success 200 {object} dto.FlashcardCreateResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Missing required fields"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/flashcards [post]
func (h *FlashcardHandler) createFlashcard(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req dto.FlashcardCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeServiceError(w, h.logger, validationError(err), "Validation failed")
		return
	}

	card, err := h.flashcardService.Create(r.Context(), uid, service.CreateFlashcardInput{
		DocumentID: req.DocumentID,
		Front:      req.Front,
		Back:       req.Back,
		Hint:       req.Hint,
		Difficulty: req.Difficulty,
		Category:   req.Category,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create flashcard")
		return
	}
	writeJSON(w, http.StatusOK, dto.FlashcardCreateResponseDTO{Message: "Flashcard created successfully", Flashcard: card})
}

// validationError reduces validator output to the service sentinel it stands for.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return service.ErrMissingFields
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return service.ErrMissingFields
		}
	}
	if verrs[0].Field() == "Difficulty" {
		return service.ErrInvalidDifficulty
	}
	return service.ErrInvalidSession
}
