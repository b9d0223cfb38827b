package handler

import (
	"encoding/json"
	"net/http"

	"studyflow/internal/api/v1/dto"
	"studyflow/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const studySessionListLimit = 50

type StudySessionHandler struct {
	studySessionService service.StudySessionService
	validate            *validator.Validate
	logger              zerolog.Logger
}

func NewStudySessionHandler(studySessionService service.StudySessionService, validate *validator.Validate, logger zerolog.Logger) *StudySessionHandler {
	return &StudySessionHandler{studySessionService: studySessionService, validate: validate, logger: logger}
}

func (h *StudySessionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/study-sessions", h.listSessions)
	r.Post("/api/study-sessions", h.createSession)
}

func (h *StudySessionHandler) listSessions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	sessions, err := h.studySessionService.List(r.Context(), uid, studySessionListLimit)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch study sessions")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// createSession godoc
// @Summary Record a study session
// @Tags study-sessions
// @Accept json
// @Produce json
// @Param session body dto.StudySessionCreateDTO true "Study session"
// @Success 201 {object} model.StudySession
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/study-sessions [post]
func (h *StudySessionHandler) createSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req dto.StudySessionCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeServiceError(w, h.logger, service.ErrInvalidSession, "Validation failed")
		return
	}
	session, err := h.studySessionService.Create(r.Context(), uid, service.CreateStudySessionInput{
		DocumentID:      req.DocumentID,
		SessionType:     req.SessionType,
		CardsStudied:    req.CardsStudied,
		CorrectAnswers:  req.CorrectAnswers,
		SessionDuration: req.SessionDuration,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to record study session")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}
