package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"enemeval/internal/config"
	"enemeval/internal/spec"
)

// getwd is a test seam for the working directory.
var getwd = os.Getwd

// resolveConfigPath returns an absolute config path, searching upward from
// the working directory when explicit is empty.
func resolveConfigPath(explicit string) (string, error) {
	if value := strings.TrimSpace(explicit); value != "" {
		abs, err := filepath.Abs(value)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return abs, nil
	}
	wd, err := getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return config.FindConfigPath(wd)
}

// loadRunConfig loads the config for commands that can run without one.
// Defaults rooted at the working directory apply when no file is found.
func loadRunConfig(explicit string) (spec.Config, string, error) {
	wd, err := getwd()
	if err != nil {
		return spec.Config{}, "", fmt.Errorf("get working directory: %w", err)
	}
	path := strings.TrimSpace(explicit)
	if path != "" {
		if path, err = filepath.Abs(path); err != nil {
			return spec.Config{}, "", fmt.Errorf("resolve config path: %w", err)
		}
	}
	return config.LoadOrDefault(path, wd)
}
