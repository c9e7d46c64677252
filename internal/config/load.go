package config

import (
	"errors"
	"os"

	"enemeval/internal/failure"
	"enemeval/internal/spec"
)

// Load reads, parses, normalizes, and validates a config file. Relative paths
// in the file resolve against the project root that holds .enemeval/.
func Load(path string) (spec.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return spec.Config{}, failure.Wrap(failure.Config, "read config", err)
	}
	cfg, err := spec.ParseConfig(data)
	if err != nil {
		return spec.Config{}, failure.Wrap(failure.Config, path, err)
	}
	Normalize(&cfg, RootFromConfigPath(path))
	if err := Validate(&cfg); err != nil {
		return spec.Config{}, failure.Wrap(failure.Config, path, err)
	}
	return cfg, nil
}

// Default returns the normalized configuration used when no config file
// exists, with paths relative to root.
func Default(root string) spec.Config {
	cfg := spec.Config{Version: CurrentVersion}
	Normalize(&cfg, root)
	return cfg
}

// LoadOrDefault loads the config at path, or searches upward from cwd when
// path is empty. Defaults rooted at cwd apply when no file is found; the
// returned path is then empty.
func LoadOrDefault(path, cwd string) (spec.Config, string, error) {
	if path == "" {
		found, err := FindConfigPath(cwd)
		if errors.Is(err, ErrConfigNotFound) {
			return Default(cwd), "", nil
		}
		if err != nil {
			return spec.Config{}, "", failure.Wrap(failure.Config, "find config", err)
		}
		path = found
	}
	cfg, err := Load(path)
	if err != nil {
		return spec.Config{}, path, err
	}
	return cfg, path, nil
}
