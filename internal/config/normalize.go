package config

import (
	"path/filepath"
	"strings"

	"enemeval/internal/agent"
	"enemeval/internal/runner"
	"enemeval/internal/spec"
)

// CurrentVersion is the only supported config schema version.
const CurrentVersion = 1

// Defaults for fields left empty in the config file.
const (
	DefaultQuestionsDir = "provas"
	DefaultReportsDir   = "relatorios_treinamento"
	DefaultDelay        = "500ms"
	DefaultUIMode       = "auto"
	DefaultTimeout      = "60s"
)

// Normalize fills defaults and resolves relative paths against root.
func Normalize(cfg *spec.Config, root string) {
	cfg.QuestionsDir = resolvePath(root, orDefault(cfg.QuestionsDir, DefaultQuestionsDir))
	cfg.Checkpoint = resolvePath(root, orDefault(cfg.Checkpoint, runner.DefaultCheckpointPath))
	cfg.ReportsDir = resolvePath(root, orDefault(cfg.ReportsDir, DefaultReportsDir))
	if path := strings.TrimSpace(cfg.Store.DuckDB); path != "" {
		cfg.Store.DuckDB = resolvePath(root, path)
	}
	cfg.Delay = orDefault(cfg.Delay, DefaultDelay)
	cfg.UI = strings.ToLower(orDefault(cfg.UI, DefaultUIMode))

	m := &cfg.Model
	m.Name = orDefault(m.Name, agent.DefaultModel)
	m.BaseURL = strings.TrimRight(orDefault(m.BaseURL, agent.DefaultBaseURL), "/")
	m.Timeout = orDefault(m.Timeout, DefaultTimeout)
	m.APIKeyEnv = orDefault(m.APIKeyEnv, agent.DefaultAPIKeyEnv)
	m.Dotenv = resolvePath(root, orDefault(m.Dotenv, agent.DefaultDotenvPath))
	if m.MaxTokens == 0 {
		m.MaxTokens = agent.DefaultMaxTokens
	}
	if m.Temperature == nil {
		m.Temperature = float64Ptr(agent.DefaultTemperature)
	}
	if m.TopP == nil {
		m.TopP = float64Ptr(agent.DefaultTopP)
	}
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) || root == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

func float64Ptr(v float64) *float64 {
	return &v
}
