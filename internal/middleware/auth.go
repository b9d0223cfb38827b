package middleware

import (
	"context"
	"net/http"
	"strings"

	"studyflow/internal/auth"
	"studyflow/internal/model"

	"github.com/rs/zerolog"
)

// Development identity headers, honoured only when the bypass is enabled.
const (
	HeaderDemoUserID = "x-demo-user-id"
	HeaderUserID     = "x-user-id"
)

// ProfileEnsurer creates the caller's profile on first sight.
type ProfileEnsurer interface {
	EnsureUser(ctx context.Context, id, email string) (*model.User, error)
}

// AuthOptions configures the identity resolver.
type AuthOptions struct {
	// Verifier checks bearer tokens. Nil rejects every token.
	Verifier  auth.Verifier
	DevBypass bool
	Profiles  ProfileEnsurer
}

// AuthMiddleware resolves the caller from the development headers or a
// bearer token, ensures a profile exists, and stores the identity in the
// request context.
func AuthMiddleware(opts AuthOptions, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("middleware", "auth").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := resolveIdentity(r, opts, logger)
			if id == nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if opts.Profiles != nil {
				if _, err := opts.Profiles.EnsureUser(r.Context(), id.ID, id.Email); err != nil {
					logger.Error().Err(err).Str("user_id", id.ID).Msg("Failed to ensure user profile")
					writeError(w, http.StatusInternalServerError, "Failed to resolve user")
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func resolveIdentity(r *http.Request, opts AuthOptions, logger zerolog.Logger) *auth.Identity {
	if opts.DevBypass {
		for _, h := range []string{HeaderDemoUserID, HeaderUserID} {
			if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
				return &auth.Identity{ID: v}
			}
		}
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		logger.Debug().Msg("Authorization header missing")
		return nil
	}
	token, ok := auth.ExtractBearerToken(authHeader)
	if !ok {
		logger.Debug().Msg("Invalid authorization header")
		return nil
	}
	if opts.Verifier == nil {
		logger.Warn().Msg("Bearer token received but no identity provider is configured")
		return nil
	}
	id, err := opts.Verifier.Verify(r.Context(), token)
	if err != nil {
		logger.Debug().Err(err).Msg("Invalid token")
		return nil
	}
	return id
}
