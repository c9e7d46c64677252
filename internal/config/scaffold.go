package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultConfig = `version: 1

# Directory with the *.jsonl question files.
questions_dir: provas
checkpoint: progresso_resolucao.json
reports_dir: relatorios_treinamento

# Pause between model calls.
delay: 500ms
resume: false

# Give questions without an id a "<file>:<line>" id so resumed runs can skip them.
synthesize_missing_ids: false

# auto, live or plain
ui: auto

store:
  # Path to a DuckDB file; leave empty to disable.
  duckdb: ""

model:
  name: sabia-3.1
  base_url: https://chat.maritaca.ai/api
  temperature: 0.7
  max_tokens: 500
  top_p: 0.9
  timeout: 60s
  api_key_env: MARITACA_API_KEY
  dotenv: .env
`

// DefaultConfigYAML returns the scaffolded config file contents.
func DefaultConfigYAML() string {
	return defaultConfig
}

// Scaffold writes the default config file, refusing to overwrite one. A
// non-empty questionsDir replaces the default questions directory.
func Scaffold(configPath, questionsDir string) error {
	if configPath == "" {
		return fmt.Errorf("config path is required")
	}
	if info, err := os.Stat(configPath); err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", configPath)
		}
		return fmt.Errorf("config file already exists at %q", configPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	content := defaultConfig
	if dir := strings.TrimSpace(questionsDir); dir != "" && dir != DefaultQuestionsDir {
		content = strings.Replace(content, "questions_dir: "+DefaultQuestionsDir, "questions_dir: "+strconv.Quote(dir), 1)
	}
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
