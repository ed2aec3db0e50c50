package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvDotEnv disables .env loading when set to "0", "false", "off" or "no".
const EnvDotEnv = "YAIBA_DOTENV"

// DefaultDotEnvFiles are loaded from the working directory, most specific
// first.
var DefaultDotEnvFiles = []string{".env.local", ".env"}

// LoadDotEnv loads the given .env files, or DefaultDotEnvFiles when none
// are given. Missing files are skipped. Variables already set are never
// overridden, so earlier files win over later ones.
// It returns the files that were loaded.
func LoadDotEnv(paths ...string) ([]string, error) {
	if IsDotEnvDisabled() {
		return nil, nil
	}
	if len(paths) == 0 {
		paths = DefaultDotEnvFiles
	}

	var loaded []string
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("load %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// IsDotEnvDisabled reports whether EnvDotEnv turns .env loading off.
func IsDotEnvDisabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvDotEnv))) {
	case "0", "false", "off", "no":
		return true
	default:
		return false
	}
}
