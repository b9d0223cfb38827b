package handler

import (
	"io"
	"net/http"

	"studyflow/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	paddleSignatureHeader = "Paddle-Signature"
	maxWebhookBytes       = 1 << 20
)

// PaddleHandler receives payment provider webhooks.
type PaddleHandler struct {
	paddleService service.PaddleService
	logger        zerolog.Logger
}

func NewPaddleHandler(paddleService service.PaddleService, logger zerolog.Logger) *PaddleHandler {
	return &PaddleHandler{paddleService: paddleService, logger: logger}
}

func (h *PaddleHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/paddle/webhook", h.handleWebhook)
}

// handleWebhook godoc
// @Summary Paddle webhook
// @Description Verifies the HMAC signature and applies subscription events.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} dto.ErrorResponse "Missing signature"
// @Failure 401 {object} dto.ErrorResponse "Invalid signature"
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/paddle/webhook [post]
func (h *PaddleHandler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read Paddle webhook payload")
		writeError(w, http.StatusBadRequest, "Failed to read payload")
		return
	}
	if err := h.paddleService.HandleWebhook(r.Context(), payload, r.Header.Get(paddleSignatureHeader)); err != nil {
		writeServiceError(w, h.logger, err, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
