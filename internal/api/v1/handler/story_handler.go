package handler

import (
	"encoding/json"
	"net/http"

	"studyflow/internal/api/v1/dto"
	"studyflow/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type StoryHandler struct {
	storyService service.StoryService
	audioService service.AudioService
	logger       zerolog.Logger
}

func NewStoryHandler(storyService service.StoryService, audioService service.AudioService, logger zerolog.Logger) *StoryHandler {
	return &StoryHandler{storyService: storyService, audioService: audioService, logger: logger}
}

// RegisterRoutes mounts the story routes. limit wraps the routes that call
// paid vendors.
func (h *StoryHandler) RegisterRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Get("/api/stories", h.listStories)
	r.With(limit).Post("/api/story", h.createStory)
	r.With(limit).Post("/api/story/{storyId}/audio", h.createAudio)
}

// @Summary List recent stories
// @Tags stories
// @Produce json
// @Success 200 {array} model.Story
// @Router /api/stories [get]
func (h *StoryHandler) listStories(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	stories, err := h.storyService.List(r.Context(), uid)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch stories")
		return
	}
	writeJSON(w, http.StatusOK, stories)
}

// createStory godoc
// @Summary Generate a story
// @Description Narrates the input text in the requested mode and records it against the caller's quota.
// @Tags stories
// @Accept json
// @Produce json
// @Param story body dto.StoryCreateDTO true "Input text and narration mode"
// @Success 200 {object} dto.StoryResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Input text is required"
// @Failure 403 {object} dto.ErrorResponse "LIMIT_REACHED"
// @Failure 429 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse "Story generation failed"
// @Router /api/story [post]
func (h *StoryHandler) createStory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req dto.StoryCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Input text is required")
		return
	}
	story, err := h.storyService.Generate(r.Context(), uid, req.InputText, req.NarrationMode)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to generate story")
		return
	}
	writeJSON(w, http.StatusOK, dto.StoryResponseDTO{
		Story:         story.OutputStory,
		NarrationMode: story.NarrationMode,
		StoryID:       story.ID,
		SavedStory:    story,
	})
}

// createAudio godoc
// @Summary Generate story audio
// @Description Synthesizes speech for a story. Returns "browser-tts" when no speech vendor is configured.
// @Tags stories
// @Produce json
// @Param storyId path string true "Story ID"
// @Success 200 {object} dto.AudioResponseDTO
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/story/{storyId}/audio [post]
func (h *StoryHandler) createAudio(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	res, err := h.audioService.Generate(r.Context(), uid, chi.URLParam(r, "storyId"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to generate audio")
		return
	}
	writeJSON(w, http.StatusOK, dto.AudioResponseDTO{AudioURL: res.AudioURL, Message: res.Message})
}
