package handler

import (
	"net/http"

	"studyflow/internal/api/v1/dto"
	"studyflow/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService         service.UserService
	subscriptionService service.SubscriptionService
	logger              zerolog.Logger
}

func NewUserHandler(userService service.UserService, subscriptionService service.SubscriptionService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{userService: userService, subscriptionService: subscriptionService, logger: logger}
}

// RegisterRoutes mounts the profile routes on an authenticated router
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/me", h.getMe)
	r.Get("/api/subscription", h.getSubscription)
}

// getMe godoc
// @Summary Current user profile
// @Description Returns the caller's profile, creating it with free-tier defaults on first sight.
// @Tags users
// @Produce json
// @Success 200 {object} model.User
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse "Failed to get user info"
// @Router /api/me [get]
func (h *UserHandler) getMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	u, err := h.userService.Get(r.Context(), uid)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to get user info")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// @Summary Subscription status
// @Tags subscriptions
// @Produce json
// @Success 200 {object} dto.SubscriptionStatusResponseDTO
// @Router /api/subscription [get]
func (h *UserHandler) getSubscription(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	st, err := h.subscriptionService.GetStatus(r.Context(), uid)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to get subscription status")
		return
	}
	writeJSON(w, http.StatusOK, dto.SubscriptionStatusResponseDTO{
		IsPremium:           st.IsPremium,
		SubscriptionStatus:  st.SubscriptionStatus,
		SubscriptionID:      st.SubscriptionID,
		SubscriptionEndDate: st.SubscriptionEndDate,
		Ledger:              st.Ledger,
	})
}
