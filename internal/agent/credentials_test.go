package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"enemeval/internal/failure"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func writeDotenv(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	return path
}

// TestResolveAPIKeyPrecedence verifies explicit > environment > .env.
func TestResolveAPIKeyPrecedence(t *testing.T) {
	dotenv := writeDotenv(t, "MARITACA_API_KEY=\"from-dotenv-0001\"\n")

	key, source, err := ResolveAPIKey(CredentialSources{
		Explicit:   "  from-argument-01 ",
		LookupEnv:  envMap(map[string]string{DefaultAPIKeyEnv: "from-environment"}),
		DotenvPath: dotenv,
	})
	if err != nil || key != "from-argument-01" || source != KeyFromArgument {
		t.Fatalf("expected argument key, got %q %q %v", key, source, err)
	}

	key, source, err = ResolveAPIKey(CredentialSources{
		LookupEnv:  envMap(map[string]string{DefaultAPIKeyEnv: "'from-environment'"}),
		DotenvPath: dotenv,
	})
	if err != nil || key != "from-environment" || source != KeyFromEnv {
		t.Fatalf("expected env key, got %q %q %v", key, source, err)
	}

	key, source, err = ResolveAPIKey(CredentialSources{
		LookupEnv:  envMap(map[string]string{DefaultAPIKeyEnv: "   "}),
		DotenvPath: dotenv,
	})
	if err != nil || key != "from-dotenv-0001" || source != KeyFromDotenv {
		t.Fatalf("expected dotenv key, got %q %q %v", key, source, err)
	}
}

// TestResolveAPIKeyCustomEnvVar verifies a configured variable name is honored in the environment and .env.
func TestResolveAPIKeyCustomEnvVar(t *testing.T) {
	dotenv := writeDotenv(t, "# comment\nOTHER_KEY='dotenv-other-key'\n")
	key, _, err := ResolveAPIKey(CredentialSources{
		EnvVar:     "OTHER_KEY",
		LookupEnv:  envMap(nil),
		DotenvPath: dotenv,
	})
	if err != nil || key != "dotenv-other-key" {
		t.Fatalf("expected dotenv-other-key, got %q (%v)", key, err)
	}
}

// TestResolveAPIKeyErrors verifies missing and short keys are configuration errors.
func TestResolveAPIKeyErrors(t *testing.T) {
	_, _, err := ResolveAPIKey(CredentialSources{
		LookupEnv:  envMap(nil),
		DotenvPath: filepath.Join(t.TempDir(), "missing.env"),
	})
	if !failure.Is(err, failure.Config) || !strings.Contains(err.Error(), DefaultAPIKeyEnv) {
		t.Fatalf("expected missing key config error, got %v", err)
	}

	_, _, err = ResolveAPIKey(CredentialSources{Explicit: "short"})
	if !failure.Is(err, failure.Config) || !strings.Contains(err.Error(), "too short") {
		t.Fatalf("expected short key config error, got %v", err)
	}
}

// TestResolveAPIKeyUsesProcessEnv verifies the default lookup reads the process environment.
func TestResolveAPIKeyUsesProcessEnv(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "process-env-key-1")
	key, source, err := ResolveAPIKey(CredentialSources{})
	if err != nil || key != "process-env-key-1" || source != KeyFromEnv {
		t.Fatalf("expected process env key, got %q %q %v", key, source, err)
	}
}
