package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned for a required secret that has no source.
var ErrNotConfigured = errors.New("not configured")

// Source describes where a secret (API key, database DSN, cache password) comes from.
// Sources are tried in order: File, Value, then the Env variable.
type Source struct {
	// Name is used in error messages.
	Name string
	// File holds the secret. An empty file is an error.
	File string
	// Value is the secret given inline in the config.
	Value string
	// Env names an environment variable holding the secret.
	Env string
	// Optional secrets resolve to "" instead of ErrNotConfigured.
	Optional bool
}

// Load resolves src and returns the trimmed secret.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
	}

	if src.Optional {
		return "", nil
	}
	return "", fmt.Errorf("%s is %w", name, ErrNotConfigured)
}
