package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studyflow/internal/util"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSVerifier validates asymmetric tokens against the provider's JWKS
// endpoint. Keys are refreshed in the background until ctx is cancelled.
type JWKSVerifier struct {
	keyfunc keyfunc.Keyfunc
	parser  *jwt.Parser
}

// SupabaseJWKSURL derives the JWKS endpoint from a Supabase project URL.
func SupabaseJWKSURL(projectURL string) string {
	return strings.TrimRight(projectURL, "/") + "/auth/v1/.well-known/jwks.json"
}

func NewJWKSVerifier(ctx context.Context, jwksURL string, opts util.ValidateOptions) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("jwks url must be set")
	}
	keyProvider, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
	}
	parserOpts := append(util.ParserOptions(opts), jwt.WithValidMethods([]string{
		jwt.SigningMethodRS256.Name, jwt.SigningMethodRS384.Name, jwt.SigningMethodRS512.Name,
		jwt.SigningMethodES256.Name, jwt.SigningMethodES384.Name, jwt.SigningMethodES512.Name,
	}))
	return &JWKSVerifier{keyfunc: keyProvider, parser: jwt.NewParser(parserOpts...)}, nil
}

func (v *JWKSVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	claims := &util.Claims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, v.keyfunc.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{ID: claims.Subject, Email: claims.Email}, nil
}
