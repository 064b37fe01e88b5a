package config

import "context"

// SecretProvider resolves secret references (SSM parameter paths locally
// mapped to env vars) to plaintext values.
type SecretProvider interface {
	// GetParametersBatch returns a map of key -> plaintext value for every
	// key it could resolve. Missing keys are omitted rather than reported.
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}
