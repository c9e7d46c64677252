package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"enemeval/internal/spec"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// issueCollector accumulates validation issues.
type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}

// UIModes lists the accepted values of the ui field.
var UIModes = []string{"auto", "live", "plain"}

// Validate checks a normalized config and reports every problem found.
func Validate(cfg *spec.Config) error {
	c := &issueCollector{}

	if cfg.Version == 0 {
		c.add("version", "is required")
	} else if cfg.Version != CurrentVersion {
		c.add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}
	if strings.TrimSpace(cfg.QuestionsDir) == "" {
		c.add("questions_dir", "is required")
	}
	if strings.TrimSpace(cfg.Checkpoint) == "" {
		c.add("checkpoint", "is required")
	}
	if strings.TrimSpace(cfg.ReportsDir) == "" {
		c.add("reports_dir", "is required")
	}
	validateDuration(c, "delay", cfg.Delay, true)
	if !validUIMode(cfg.UI) {
		c.add("ui", fmt.Sprintf("must be one of %s", strings.Join(UIModes, ", ")))
	}
	validateModel(c, cfg.Model)
	return c.result()
}

func validateModel(c *issueCollector, m spec.ModelConfig) {
	if strings.TrimSpace(m.Name) == "" {
		c.add("model.name", "is required")
	}
	if parsed, err := url.Parse(m.BaseURL); err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		c.add("model.base_url", "must be an absolute http(s) URL")
	}
	if m.Temperature != nil && (*m.Temperature <= 0 || *m.Temperature > 2) {
		c.add("model.temperature", "must be greater than 0 and at most 2")
	}
	if m.TopP != nil && (*m.TopP <= 0 || *m.TopP > 1) {
		c.add("model.top_p", "must be greater than 0 and at most 1")
	}
	if m.MaxTokens < 0 {
		c.add("model.max_tokens", "must be positive")
	}
	validateDuration(c, "model.timeout", m.Timeout, false)
	if strings.TrimSpace(m.APIKeyEnv) == "" || strings.ContainsAny(m.APIKeyEnv, " =") {
		c.add("model.api_key_env", "must be an environment variable name")
	}
}

func validateDuration(c *issueCollector, field, value string, allowZero bool) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		c.add(field, fmt.Sprintf("invalid duration %q", value))
		return
	}
	if d < 0 || (d == 0 && !allowZero) {
		c.add(field, "must be positive")
	}
}

func validUIMode(mode string) bool {
	for _, m := range UIModes {
		if mode == m {
			return true
		}
	}
	return false
}
