package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"enemeval/internal/failure"
	"enemeval/internal/prompt"
	"enemeval/internal/testutil"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TopP        float64 `json:"top_p"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *MaritacaClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewMaritacaClient(ClientConfig{APIKey: "test-key-123456", BaseURL: server.URL}, server.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

// TestGenerateSendsChatCompletion verifies the request shape and the returned content.
func TestGenerateSendsChatCompletion(t *testing.T) {
	var got capturedRequest
	var auth, path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Letra D"},"finish_reason":"stop"}]}`)
	})

	ctx := testutil.Context(t, 2*time.Second)
	answer, err := client.Generate(ctx, "Questão do ENEM 2023 - MATEMATICA")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if answer != "Letra D" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if auth != "Bearer test-key-123456" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if path != "/chat/completions" {
		t.Fatalf("unexpected path %q", path)
	}
	if got.Model != DefaultModel || got.MaxTokens != DefaultMaxTokens {
		t.Fatalf("unexpected model/max tokens: %+v", got)
	}
	if got.Temperature != DefaultTemperature || got.TopP != DefaultTopP {
		t.Fatalf("unexpected sampling params: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[0].Content != prompt.SystemPrompt {
		t.Fatalf("unexpected system message: %+v", got.Messages)
	}
	if got.Messages[1].Role != "user" || !strings.HasPrefix(got.Messages[1].Content, "Questão do ENEM") {
		t.Fatalf("unexpected user message: %+v", got.Messages)
	}
}

// TestGenerateAPIErrorIsTransport verifies non-2xx responses surface as transport failures.
func TestGenerateAPIErrorIsTransport(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`)
	})
	_, err := client.Generate(context.Background(), "prompt")
	if !failure.Is(err, failure.Transport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("expected api message in error, got %v", err)
	}
}

// TestGenerateNoChoices verifies an empty choice list is reported.
func TestGenerateNoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","choices":[]}`)
	})
	_, err := client.Generate(context.Background(), "prompt")
	if !failure.Is(err, failure.Transport) || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("expected no choices transport error, got %v", err)
	}
}

func TestNewMaritacaClientRequiresKey(t *testing.T) {
	_, err := NewMaritacaClient(ClientConfig{}, nil)
	if !failure.Is(err, failure.Config) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestClientConfigDefaults(t *testing.T) {
	cfg := ClientConfig{Temperature: 0.2}.WithDefaults()
	if cfg.BaseURL != DefaultBaseURL || cfg.Model != DefaultModel || cfg.Timeout != DefaultTimeout {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Temperature != 0.2 {
		t.Fatalf("expected explicit temperature kept, got %v", cfg.Temperature)
	}
}

// TestFactoryFailsWithoutKey verifies client construction fails before any request.
func TestFactoryFailsWithoutKey(t *testing.T) {
	factory := NewFactory(ClientConfig{}, CredentialSources{
		LookupEnv: func(string) (string, bool) { return "", false },
	}, nil)
	if _, err := factory(); !failure.Is(err, failure.Config) {
		t.Fatalf("expected config error, got %v", err)
	}
}
