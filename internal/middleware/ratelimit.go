package middleware

import (
	"net"
	"net/http"

	"studyflow/internal/auth"
	"studyflow/internal/ratelimit"

	"github.com/rs/zerolog"
)

// RateLimit rejects callers over the limiter's budget with 429. Limiter
// errors let the request through.
func RateLimit(limiter ratelimit.Limiter, scope string, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("middleware", "ratelimit").Str("scope", scope).Logger()
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + callerKey(r)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Error().Err(err).Msg("Rate limiter unavailable; allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if id, ok := auth.FromContext(r.Context()); ok {
		return "user:" + id.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
