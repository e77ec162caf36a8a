// Package environment loads configuration from the process environment and
// optional .env files, with support for an application prefix.
package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from the given .env files, or from ./.env when no
// path is given. A missing file is not an error; values already present in
// the environment always win.
//
// Example:
//
//	if err := environment.LoadEnv(); err != nil {
//	    log.Printf("reading .env: %v", err)
//	}
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// GetEnvOrDefault retrieves an environment variable value, returning fallback
// when the variable is not set.
func GetEnvOrDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvKeyPrefix joins prefix and key with an underscore.
// An empty prefix returns key unchanged.
//
//	GetEnvKeyPrefix("TODO", "STORE_DRIVER") // "TODO_STORE_DRIVER"
func GetEnvKeyPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", prefix, key)
}

// GetPrefixEnvOrDefault looks up prefix_key, returning fallback when unset.
func GetPrefixEnvOrDefault(prefix, key, fallback string) string {
	return GetEnvOrDefault(GetEnvKeyPrefix(prefix, key), fallback)
}
