package config

import (
	"context"
	"os"
)

// EnvVarProvider resolves each key as an environment variable name. It is
// the provider for local runs, where secrets come from the shell or .env.
type EnvVarProvider struct {
	lookup envLookup
}

// NewEnvVarProvider creates a provider backed by os.LookupEnv.
func NewEnvVarProvider() *EnvVarProvider {
	return &EnvVarProvider{lookup: os.LookupEnv}
}

// GetParametersBatch implements SecretProvider.
func (p *EnvVarProvider) GetParametersBatch(_ context.Context, keys []string) (map[string]string, error) {
	lookup := p.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if val, ok := lookup(key); ok {
			result[key] = val
		}
	}
	return result, nil
}
