package handler

import (
	"net/http"

	"studyflow/internal/service"

	"github.com/go-chi/chi/v5"
)

type HealthHandler struct {
	healthService service.HealthService
}

func NewHealthHandler(healthService service.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", h.getHealth)
}

// getHealth godoc
// @Summary Service health
// @Description Probes the database and reports which store is active.
// @Tags health
// @Produce json
// @Success 200 {object} service.HealthReport
// @Failure 503 {object} service.HealthReport "Tables missing or memory store active"
// @Failure 500 {object} service.HealthReport "Database unreachable"
// @Router /api/health [get]
func (h *HealthHandler) getHealth(w http.ResponseWriter, r *http.Request) {
	report := h.healthService.Check(r.Context())
	writeJSON(w, report.StatusCode(), report)
}
