// Package env loads secrets and overrides from the process environment,
// optionally seeded from .env files.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docchat/internal/logger"
)

// Environment variables read by docchat.
const (
	VarConfig     = "DOCCHAT_CONFIG"
	VarOpenAIKey  = "OPENAI_API_KEY"
	VarAnthropic  = "ANTHROPIC_API_KEY"
	VarOllamaHost = "OLLAMA_HOST"
	VarSourceDir  = "DOCCHAT_SOURCE_DIR"
)

// DefaultDotEnv is the file loaded from the working directory.
const DefaultDotEnv = ".env"

// LoadDotEnv loads each existing file into the process environment.
// Variables already set in the environment are never overwritten.
// Missing files are skipped; the names of loaded files are returned.
func LoadDotEnv(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{DefaultDotEnv}
	}

	var loaded []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("stat %s: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("loading %s: %w", path, err)
		}
		logger.Debug("Loaded environment from %s", path)
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// Lookup is the signature of os.Getenv, injectable for tests.
type Lookup func(key string) string

// OS returns a Lookup backed by the process environment.
func OS() Lookup {
	return os.Getenv
}

// Map returns a Lookup backed by a fixed map.
func Map(values map[string]string) Lookup {
	return func(key string) string {
		return values[key]
	}
}

// ReadFile parses a .env file without touching the process environment.
func ReadFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}
