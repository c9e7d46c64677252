package agent

import (
	"context"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"enemeval/internal/failure"
	"enemeval/internal/prompt"
)

// Defaults for the Maritaca chat completion endpoint.
const (
	DefaultBaseURL     = "https://chat.maritaca.ai/api"
	DefaultModel       = "sabia-3.1"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500
	DefaultTopP        = 0.9
	DefaultTimeout     = 60 * time.Second
)

// Generator produces a model answer for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ClientConfig is resolved once at startup and not modified afterwards.
type ClientConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	TopP         float64
	Timeout      time.Duration
}

// WithDefaults fills zero-valued settings.
func (c ClientConfig) WithDefaults() ClientConfig {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel
	}
	if strings.TrimSpace(c.SystemPrompt) == "" {
		c.SystemPrompt = prompt.SystemPrompt
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.TopP == 0 {
		c.TopP = DefaultTopP
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// MaritacaClient talks to the OpenAI-compatible Maritaca chat API.
type MaritacaClient struct {
	cfg    ClientConfig
	client *openai.Client
}

// NewMaritacaClient validates cfg and builds a client. A nil httpClient
// gets a client with cfg.Timeout.
func NewMaritacaClient(cfg ClientConfig, httpClient *http.Client) (*MaritacaClient, error) {
	cfg = cfg.WithDefaults()
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, failure.New(failure.Config, "new maritaca client", "api key is required")
	}
	if cfg.MaxTokens < 0 {
		return nil, failure.New(failure.Config, "new maritaca client", "max tokens must be >= 0")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	oc.HTTPClient = httpClient
	return &MaritacaClient{cfg: cfg, client: openai.NewClientWithConfig(oc)}, nil
}

// Config returns the resolved client settings.
func (c *MaritacaClient) Config() ClientConfig {
	return c.cfg
}

// Generate sends the system instruction and prompt, returning the first
// choice's content. Failures are Transport errors.
func (c *MaritacaClient) Generate(ctx context.Context, text string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.cfg.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: float32(c.cfg.Temperature),
		MaxTokens:   c.cfg.MaxTokens,
		TopP:        float32(c.cfg.TopP),
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", failure.Wrap(failure.Transport, "maritaca chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", failure.New(failure.Transport, "maritaca chat completion", "unexpected response: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Factory builds a Generator on demand.
type Factory func() (Generator, error)

// NewFactory returns a Factory that resolves the API key from src and
// builds a MaritacaClient. Resolution happens when the factory is called.
func NewFactory(cfg ClientConfig, src CredentialSources, httpClient *http.Client) Factory {
	return func() (Generator, error) {
		key, _, err := ResolveAPIKey(src)
		if err != nil {
			return nil, err
		}
		cfg.APIKey = key
		return NewMaritacaClient(cfg, httpClient)
	}
}
