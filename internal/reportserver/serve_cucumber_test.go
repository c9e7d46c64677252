//go:build cucumber

package reportserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"enemeval/internal/eval"
	"enemeval/internal/report"
	"enemeval/internal/runner"
)

// TestServeReportScenarios runs the report server feature scenarios.
func TestServeReportScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "serve-reports",
		ScenarioInitializer: InitializeServeScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("testdata", "features", "serve.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeServeScenario wires steps for report server feature scenarios.
func InitializeServeScenario(ctx *godog.ScenarioContext) {
	state := &serveScenarioState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, state.reset()
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		state.cleanup()
		return ctx, err
	})

	ctx.Step(`^a reports directory with results for "([^"]+)" and "([^"]+)"$`, state.givenReports)
	ctx.Step(`^an empty reports directory$`, state.givenEmptyReports)
	ctx.Step(`^I start the report server$`, state.whenIStartTheReportServer)
	ctx.Step(`^I request "([^"]+)"$`, state.whenIRequest)
	ctx.Step(`^the response status is (\d+)$`, state.thenResponseStatus)
	ctx.Step(`^the response body contains "(.+)"$`, state.thenResponseBodyContains)
}

type serveScenarioState struct {
	dir      string
	handler  http.Handler
	response *httptest.ResponseRecorder
}

func (s *serveScenarioState) reset() error {
	dir, err := os.MkdirTemp("", "enemeval-serve-*")
	if err != nil {
		return err
	}
	*s = serveScenarioState{dir: dir}
	return nil
}

func (s *serveScenarioState) cleanup() {
	if s.dir != "" {
		_ = os.RemoveAll(s.dir)
	}
}

func (s *serveScenarioState) givenReports(first, second string) error {
	results := []runner.Result{
		{QuestionID: "1", Area: first, Expected: "A", Response: "A", Verdict: eval.True},
		{QuestionID: "2", Area: second, Expected: "B", Response: "D", Verdict: eval.False},
	}
	_, _, err := report.Write(s.dir, results, time.Now())
	return err
}

func (s *serveScenarioState) givenEmptyReports() error {
	return nil
}

func (s *serveScenarioState) whenIStartTheReportServer() error {
	handler, err := NewHandler(Config{ReportsDir: s.dir})
	if err != nil {
		return err
	}
	s.handler = handler
	return nil
}

func (s *serveScenarioState) whenIRequest(path string) error {
	if s.handler == nil {
		return fmt.Errorf("server not started")
	}
	req := httptest.NewRequest(http.MethodGet, "http://example.com"+path, nil)
	s.response = httptest.NewRecorder()
	s.handler.ServeHTTP(s.response, req)
	return nil
}

func (s *serveScenarioState) thenResponseStatus(code int) error {
	if s.response.Code != code {
		return fmt.Errorf("expected status %d, got %d", code, s.response.Code)
	}
	return nil
}

func (s *serveScenarioState) thenResponseBodyContains(fragment string) error {
	fragment = strings.ReplaceAll(fragment, `\"`, `"`)
	if !strings.Contains(s.response.Body.String(), fragment) {
		return fmt.Errorf("expected body to contain %q", fragment)
	}
	return nil
}
