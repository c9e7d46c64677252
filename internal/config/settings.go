package config

import (
	"time"

	"enemeval/internal/agent"
	"enemeval/internal/runner"
	"enemeval/internal/spec"
)

// Delay returns the parsed pause between model calls. It assumes a
// validated config and falls back to the default on a parse error.
func Delay(cfg spec.Config) time.Duration {
	d, err := time.ParseDuration(cfg.Delay)
	if err != nil || d < 0 {
		return runner.DefaultDelay
	}
	return d
}

// ClientConfig maps the model section onto the client settings. The API key
// is resolved separately.
func ClientConfig(cfg spec.Config) agent.ClientConfig {
	m := cfg.Model
	out := agent.ClientConfig{
		BaseURL:      m.BaseURL,
		Model:        m.Name,
		SystemPrompt: m.SystemPrompt,
		MaxTokens:    m.MaxTokens,
	}
	if m.Temperature != nil {
		out.Temperature = *m.Temperature
	}
	if m.TopP != nil {
		out.TopP = *m.TopP
	}
	if timeout, err := time.ParseDuration(m.Timeout); err == nil {
		out.Timeout = timeout
	}
	return out.WithDefaults()
}

// CredentialSources builds the API key lookup for the model section.
func CredentialSources(cfg spec.Config, explicit string) agent.CredentialSources {
	return agent.CredentialSources{
		Explicit:   explicit,
		EnvVar:     cfg.Model.APIKeyEnv,
		DotenvPath: cfg.Model.Dotenv,
	}
}
