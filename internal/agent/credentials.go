package agent

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"enemeval/internal/failure"
)

// DefaultAPIKeyEnv names the environment variable holding the API key.
const DefaultAPIKeyEnv = "MARITACA_API_KEY"

// DefaultDotenvPath is the key-value file consulted after the environment.
const DefaultDotenvPath = ".env"

const minAPIKeyLength = 10

// KeySource records where an API key came from.
type KeySource string

const (
	KeyFromArgument KeySource = "argument"
	KeyFromEnv      KeySource = "env"
	KeyFromDotenv   KeySource = "dotenv"
)

// CredentialSources lists the places an API key may be found.
type CredentialSources struct {
	Explicit   string
	EnvVar     string
	LookupEnv  func(string) (string, bool)
	DotenvPath string
}

// ResolveAPIKey applies the precedence explicit > environment > .env file.
// Surrounding quotes and whitespace are stripped. Missing or implausibly
// short keys are configuration errors.
func ResolveAPIKey(src CredentialSources) (string, KeySource, error) {
	envVar := strings.TrimSpace(src.EnvVar)
	if envVar == "" {
		envVar = DefaultAPIKeyEnv
	}
	lookup := src.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if key := cleanKey(src.Explicit); key != "" {
		return validateKey(key, KeyFromArgument)
	}
	if value, ok := lookup(envVar); ok {
		if key := cleanKey(value); key != "" {
			return validateKey(key, KeyFromEnv)
		}
	}
	if src.DotenvPath != "" {
		values, err := godotenv.Read(src.DotenvPath)
		switch {
		case err == nil:
			if key := cleanKey(values[envVar]); key != "" {
				return validateKey(key, KeyFromDotenv)
			}
		case !errors.Is(err, os.ErrNotExist):
			return "", "", failure.Wrap(failure.Config, "read "+src.DotenvPath, err)
		}
	}
	return "", "", failure.New(failure.Config, "resolve api key",
		fmt.Sprintf("no API key: set %s in the environment or in %s, or pass --api-key", envVar, dotenvName(src.DotenvPath)))
}

func validateKey(key string, source KeySource) (string, KeySource, error) {
	if len(key) < minAPIKeyLength {
		return "", "", failure.New(failure.Config, "resolve api key",
			fmt.Sprintf("API key looks invalid (too short: %d characters)", len(key)))
	}
	return key, source, nil
}

func cleanKey(value string) string {
	value = strings.TrimSpace(value)
	for _, quote := range []string{`"`, `'`} {
		if len(value) >= 2 && strings.HasPrefix(value, quote) && strings.HasSuffix(value, quote) {
			value = value[1 : len(value)-1]
		}
	}
	return strings.TrimSpace(value)
}

func dotenvName(path string) string {
	if path == "" {
		return DefaultDotenvPath
	}
	return path
}
