package auth

import (
	"context"
	"fmt"

	"studyflow/internal/util"
)

// SecretVerifier checks tokens signed with the project's JWT secret, or a
// PEM public key for asymmetric projects.
type SecretVerifier struct {
	keyMaterial string
	opts        util.ValidateOptions
}

func NewSecretVerifier(keyMaterial string, opts util.ValidateOptions) *SecretVerifier {
	return &SecretVerifier{keyMaterial: keyMaterial, opts: opts}
}

func (v *SecretVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	claims, err := util.ValidateJWT(token, v.keyMaterial, v.opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &Identity{ID: claims.Subject, Email: claims.Email}, nil
}
