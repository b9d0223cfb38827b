package config

import (
	"context"
	"fmt"
)

// SecretSource returns the latest value of a named secret.
type SecretSource interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// secretBindings maps secret names to the config fields they fill.
func (c *Config) secretBindings() map[string]*string {
	return map[string]*string{
		"openrouter-api-key":    &c.OpenRouterAPIKey,
		"gemini-api-key":        &c.GeminiAPIKey,
		"elevenlabs-api-key":    &c.ElevenLabsAPIKey,
		"cartesia-api-key":      &c.CartesiaAPIKey,
		"paddle-webhook-secret": &c.PaddleWebhookSecret,
		"supabase-jwt-secret":   &c.SupabaseJWTSecret,
	}
}

// ResolveSecrets fills every empty vendor credential from src. Secrets that
// are missing from the source are left empty so the capability degrades.
// It returns the names that were resolved.
func (c *Config) ResolveSecrets(ctx context.Context, src SecretSource) ([]string, error) {
	var resolved []string
	for name, field := range c.secretBindings() {
		if *field != "" {
			continue
		}
		value, err := src.GetSecret(ctx, name)
		if err != nil {
			if IsSecretNotFound(err) {
				continue
			}
			return resolved, fmt.Errorf("resolving secret %s: %w", name, err)
		}
		*field = value
		resolved = append(resolved, name)
	}
	return resolved, nil
}

// ErrSecretNotFound is returned by a SecretSource when the secret does not exist.
type ErrSecretNotFound struct{ Name string }

func (e *ErrSecretNotFound) Error() string { return "secret not found: " + e.Name }

func IsSecretNotFound(err error) bool {
	_, ok := err.(*ErrSecretNotFound)
	return ok
}
