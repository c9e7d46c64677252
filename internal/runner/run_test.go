package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"enemeval/internal/agent"
	"enemeval/internal/eval"
	"enemeval/internal/failure"
	"enemeval/internal/question"
	"enemeval/internal/testutil"
)

// fakeGenerator answers every prompt with the same letter unless an error is scripted.
type fakeGenerator struct {
	answer  string
	errAt   map[int]error
	calls   int
	prompts []string
	onCall  func(call int)
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.onCall != nil {
		g.onCall(g.calls)
	}
	if err, ok := g.errAt[g.calls]; ok {
		return "", err
	}
	return g.answer, nil
}

// recordingObserver captures events for assertions.
type recordingObserver struct {
	started     []RunInfo
	events      []QuestionEvent
	checkpoints []CheckpointEvent
	ended       []Outcome
}

func (o *recordingObserver) OnRunStart(info RunInfo)            { o.started = append(o.started, info) }
func (o *recordingObserver) OnQuestionEvent(event QuestionEvent) { o.events = append(o.events, event) }
func (o *recordingObserver) OnCheckpoint(event CheckpointEvent)  { o.checkpoints = append(o.checkpoints, event) }
func (o *recordingObserver) OnRunEnd(outcome Outcome)            { o.ended = append(o.ended, outcome) }

func (o *recordingObserver) count(eventType QuestionEventType) int {
	n := 0
	for _, event := range o.events {
		if event.Type == eventType {
			n++
		}
	}
	return n
}

func makeQuestions(n int, answer string) []question.Canonical {
	out := make([]question.Canonical, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, question.Canonical{
			ID:        fmt.Sprintf("q%d", i),
			Year:      "2023",
			Area:      "mathematics",
			AreaLabel: "MATEMATICA",
			Text:      fmt.Sprintf("Questão %d", i),
			Alternatives: []question.Alternative{
				{Letter: "A", Text: "um"},
				{Letter: "B", Text: "dois"},
			},
			Answer:     answer,
			SourceFile: "prova.jsonl",
			Line:       i,
		})
	}
	return out
}

func newTestClock() *testutil.FakeClock {
	return testutil.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)).WithStep(10 * time.Millisecond)
}

// testDeps paces the run with a fake clock that records every pause.
func testDeps(gen agent.Generator, clock *testutil.FakeClock) RunDependencies {
	return RunDependencies{
		NewClient: func() (agent.Generator, error) { return gen, nil },
		Sleep:     clock.Sleep,
		Now:       clock.Now,
	}
}

// TestRunScoresEveryQuestion verifies results, verdicts and the delay policy.
func TestRunScoresEveryQuestion(t *testing.T) {
	gen := &fakeGenerator{answer: "A resposta é a alternativa B"}
	clock := newTestClock()
	observer := &recordingObserver{}
	questions := makeQuestions(3, "B")
	questions[2].Answer = ""

	ctx := testutil.Context(t, 2*time.Second)
	outcome, err := Run(ctx, RunParams{
		Questions: questions,
		Delay:     250 * time.Millisecond,
		Observer:  observer,
	}, testDeps(gen, clock))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Processed != 3 || len(outcome.Results) != 3 || gen.calls != 3 {
		t.Fatalf("unexpected outcome: processed=%d results=%d calls=%d", outcome.Processed, len(outcome.Results), gen.calls)
	}
	if outcome.Results[0].Verdict != eval.True || outcome.Results[2].Verdict != eval.Unknown {
		t.Fatalf("unexpected verdicts: %v %v", outcome.Results[0].Verdict, outcome.Results[2].Verdict)
	}
	if !outcome.Results[2].NoGroundTruth() || outcome.Results[2].Failed() {
		t.Fatalf("expected no-ground-truth result, got %+v", outcome.Results[2])
	}
	if len(clock.Sleeps()) != 2 {
		t.Fatalf("expected 2 pauses (none after last), got %d", len(clock.Sleeps()))
	}
	if clock.Sleeps()[0] != 250*time.Millisecond {
		t.Fatalf("unexpected delay %s", clock.Sleeps()[0])
	}
	if !strings.HasPrefix(gen.prompts[0], "Questão do ENEM 2023 - MATEMATICA") {
		t.Fatalf("unexpected prompt %q", gen.prompts[0])
	}
	if observer.count(QuestionQueued) != 3 || observer.count(QuestionCorrect) != 2 || observer.count(QuestionUnknown) != 1 {
		t.Fatalf("unexpected events: %+v", observer.events)
	}
	if len(observer.started) != 1 || len(observer.ended) != 1 {
		t.Fatalf("expected start and end events")
	}
	if outcome.Results[0].Area != "MATEMATICA" || outcome.Results[0].Prompt == "" {
		t.Fatalf("unexpected result fields: %+v", outcome.Results[0])
	}
}

// TestRunRecordsFailuresAndContinues verifies a failed call is recorded without aborting.
func TestRunRecordsFailuresAndContinues(t *testing.T) {
	gen := &fakeGenerator{answer: "Letra A", errAt: map[int]error{2: errors.New("status 503")}}
	observer := &recordingObserver{}
	outcome, err := Run(context.Background(), RunParams{
		Questions: makeQuestions(3, "A"),
		Observer:  observer,
	}, testDeps(gen, newTestClock()))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	failed := outcome.Results[1]
	if !failed.Failed() || failed.Error != "status 503" || failed.Response != "" {
		t.Fatalf("expected failure result, got %+v", failed)
	}
	if failed.Verdict != eval.Unknown || failed.NoGroundTruth() {
		t.Fatalf("failure must be distinguishable from no ground truth: %+v", failed)
	}
	if gen.calls != 3 || observer.count(QuestionFailed) != 1 {
		t.Fatalf("expected run to continue after failure")
	}
}

// TestRunClientFactoryFailureIsFatal verifies nothing is processed when the client cannot be built.
func TestRunClientFactoryFailureIsFatal(t *testing.T) {
	observer := &recordingObserver{}
	_, err := Run(context.Background(), RunParams{
		Questions: makeQuestions(2, "A"),
		Observer:  observer,
	}, RunDependencies{
		NewClient: func() (agent.Generator, error) { return nil, errors.New("missing key") },
	})
	if !failure.Is(err, failure.Config) {
		t.Fatalf("expected config error, got %v", err)
	}
	if len(observer.started) != 0 || len(observer.events) != 0 {
		t.Fatalf("expected no processing, got %+v", observer.events)
	}
}

// TestRunCheckpointsEveryTenth verifies checkpoint cadence and the final flush.
func TestRunCheckpointsEveryTenth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	observer := &recordingObserver{}
	gen := &fakeGenerator{answer: "A"}
	gen.onCall = func(call int) {
		if call != 11 {
			return
		}
		cp, err := LoadCheckpoint(path)
		if err != nil {
			t.Errorf("expected checkpoint after 10 questions: %v", err)
			return
		}
		if cp.Processed != 10 || cp.Total != 25 || len(cp.Results) != 10 {
			t.Errorf("unexpected checkpoint after 10: %+v", cp.Processed)
		}
	}
	outcome, err := Run(context.Background(), RunParams{
		Questions:      makeQuestions(25, "A"),
		CheckpointPath: path,
		Observer:       observer,
	}, testDeps(gen, newTestClock()))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Checkpoints != 3 {
		t.Fatalf("expected checkpoints at 10, 20 and final, got %d", outcome.Checkpoints)
	}
	if len(observer.checkpoints) != 3 || observer.checkpoints[1].Processed != 20 {
		t.Fatalf("unexpected checkpoint events: %+v", observer.checkpoints)
	}
	cp, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if cp.Processed != 25 || len(cp.Results) != 25 {
		t.Fatalf("expected final checkpoint with 25 results, got %d", cp.Processed)
	}
}

// TestRunResumeSkipsCheckpointedQuestions verifies resumed runs call the client total-N times.
func TestRunResumeSkipsCheckpointedQuestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	questions := makeQuestions(12, "A")

	prior := make([]Result, 0, 4)
	for _, q := range questions[:4] {
		prior = append(prior, Result{QuestionID: q.ID, Area: q.AreaLabel, Expected: "A", Response: "A", Verdict: eval.True})
	}
	if err := WriteCheckpoint(path, Checkpoint{Processed: 4, Total: 12, Results: prior}); err != nil {
		t.Fatalf("write checkpoint: %v", err)
	}

	gen := &fakeGenerator{answer: "A"}
	clock := newTestClock()
	observer := &recordingObserver{}
	outcome, err := Run(context.Background(), RunParams{
		Questions:      questions,
		CheckpointPath: path,
		Resume:         true,
		Observer:       observer,
		Delay:          time.Millisecond,
	}, testDeps(gen, clock))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if gen.calls != 8 {
		t.Fatalf("expected 8 client calls, got %d", gen.calls)
	}
	if outcome.Resumed != 4 || outcome.Skipped != 4 || outcome.Processed != 8 || len(outcome.Results) != 12 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if len(clock.Sleeps()) != 7 {
		t.Fatalf("expected no pause for skipped questions or after the last, got %d", len(clock.Sleeps()))
	}
	if observer.count(QuestionSkipped) != 4 {
		t.Fatalf("expected 4 skipped events")
	}
	if outcome.Checkpoints != 1 {
		t.Fatalf("expected only the final checkpoint for 8 processed questions, got %d", outcome.Checkpoints)
	}
}

// TestRunResumeCheckpointsTenthProcessed verifies the cadence counts questions
// processed in this run, not results carried over from the checkpoint.
func TestRunResumeCheckpointsTenthProcessed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	questions := makeQuestions(20, "A")
	prior := make([]Result, 0, 5)
	for _, q := range questions[:5] {
		prior = append(prior, Result{QuestionID: q.ID, Area: q.AreaLabel, Expected: "A", Response: "A", Verdict: eval.True})
	}
	if err := WriteCheckpoint(path, Checkpoint{Processed: 5, Total: 20, Results: prior}); err != nil {
		t.Fatalf("write checkpoint: %v", err)
	}

	gen := &fakeGenerator{answer: "A"}
	gen.onCall = func(call int) {
		if call != 11 {
			return
		}
		cp, err := LoadCheckpoint(path)
		if err != nil {
			t.Errorf("load checkpoint at call 11: %v", err)
			return
		}
		if cp.Processed != 15 || len(cp.Results) != 15 {
			t.Errorf("expected checkpoint with 15 results before call 11, got %d", len(cp.Results))
		}
	}
	outcome, err := Run(context.Background(), RunParams{
		Questions:      questions,
		CheckpointPath: path,
		Resume:         true,
	}, testDeps(gen, newTestClock()))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if gen.calls != 15 || outcome.Processed != 15 {
		t.Fatalf("expected 15 calls, got %d", gen.calls)
	}
	if outcome.Checkpoints != 2 {
		t.Fatalf("expected checkpoints at 10 processed and final, got %d", outcome.Checkpoints)
	}
	cp, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if len(cp.Results) != 20 {
		t.Fatalf("expected final checkpoint with 20 results, got %d", len(cp.Results))
	}
}

// TestRunResumeResubmitsMissingIDs verifies questions without ids are never treated as done.
func TestRunResumeResubmitsMissingIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	questions := makeQuestions(3, "A")
	for i := range questions {
		questions[i].ID = ""
	}
	prior := []Result{{QuestionID: "", Response: "A", Verdict: eval.True}}
	if err := WriteCheckpoint(path, Checkpoint{Processed: 1, Total: 3, Results: prior}); err != nil {
		t.Fatalf("write checkpoint: %v", err)
	}
	gen := &fakeGenerator{answer: "A"}
	outcome, err := Run(context.Background(), RunParams{
		Questions:      questions,
		CheckpointPath: path,
		Resume:         true,
	}, testDeps(gen, newTestClock()))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if gen.calls != 3 || len(outcome.Results) != 4 {
		t.Fatalf("expected all 3 resubmitted, calls=%d results=%d", gen.calls, len(outcome.Results))
	}
}

// TestRunWithoutResumeIgnoresCheckpoint verifies a stale checkpoint is not loaded.
func TestRunWithoutResumeIgnoresCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	questions := makeQuestions(2, "A")
	prior := []Result{{QuestionID: "q1", Response: "A", Verdict: eval.True}}
	if err := WriteCheckpoint(path, Checkpoint{Processed: 1, Total: 2, Results: prior}); err != nil {
		t.Fatalf("write checkpoint: %v", err)
	}
	var logs bytes.Buffer
	gen := &fakeGenerator{answer: "A"}
	outcome, err := Run(context.Background(), RunParams{
		Questions:      questions,
		CheckpointPath: path,
		Logger:         slog.New(slog.NewTextHandler(&logs, nil)),
	}, testDeps(gen, newTestClock()))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if gen.calls != 2 || outcome.Resumed != 0 {
		t.Fatalf("expected fresh run, calls=%d resumed=%d", gen.calls, outcome.Resumed)
	}
	if !strings.Contains(logs.String(), "--resume") {
		t.Fatalf("expected overwrite warning, got %q", logs.String())
	}
}

// TestRunResumeMalformedCheckpoint verifies an undecodable checkpoint is logged and ignored.
func TestRunResumeMalformedCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var logs bytes.Buffer
	gen := &fakeGenerator{answer: "A"}
	_, err := Run(context.Background(), RunParams{
		Questions:      makeQuestions(2, "A"),
		CheckpointPath: path,
		Resume:         true,
		Logger:         slog.New(slog.NewTextHandler(&logs, nil)),
	}, testDeps(gen, newTestClock()))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if gen.calls != 2 || !strings.Contains(logs.String(), "ignoring unreadable checkpoint") {
		t.Fatalf("expected warning and full run, calls=%d logs=%q", gen.calls, logs.String())
	}
}

// TestRunInterruptFlushesCheckpoint verifies cancellation returns an interrupt and keeps progress.
func TestRunInterruptFlushesCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gen := &fakeGenerator{answer: "A"}
	sleeps := 0
	deps := testDeps(gen, newTestClock())
	deps.Sleep = func(ctx context.Context, _ time.Duration) error {
		sleeps++
		if sleeps == 3 {
			cancel()
			return ctx.Err()
		}
		return nil
	}
	outcome, err := Run(ctx, RunParams{
		Questions:      makeQuestions(6, "A"),
		CheckpointPath: path,
		Delay:          time.Second,
	}, deps)
	if !failure.Is(err, failure.Interrupt) {
		t.Fatalf("expected interrupt, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
	if !outcome.Interrupted || outcome.Processed != 3 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	cp, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if len(cp.Results) != 3 {
		t.Fatalf("expected 3 results in checkpoint, got %d", len(cp.Results))
	}
}

// TestRunInterruptDuringCallDropsQuestion verifies an in-flight cancelled question is not recorded.
func TestRunInterruptDuringCallDropsQuestion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gen := &fakeGenerator{answer: "A", errAt: map[int]error{2: context.Canceled}}
	gen.onCall = func(call int) {
		if call == 2 {
			cancel()
		}
	}
	outcome, err := Run(ctx, RunParams{Questions: makeQuestions(3, "A")}, testDeps(gen, newTestClock()))
	if !failure.Is(err, failure.Interrupt) {
		t.Fatalf("expected interrupt, got %v", err)
	}
	if len(outcome.Results) != 1 || gen.calls != 2 {
		t.Fatalf("expected only the first result, got %d results after %d calls", len(outcome.Results), gen.calls)
	}
}

// TestRunVerboseOutput verifies verbose progress lines are written without color.
func TestRunVerboseOutput(t *testing.T) {
	var out bytes.Buffer
	gen := &fakeGenerator{answer: "C"}
	_, err := Run(context.Background(), RunParams{
		RunID:         "run-1",
		Questions:     makeQuestions(1, "B"),
		Verbose:       true,
		VerboseWriter: &out,
		NoColor:       true,
	}, testDeps(gen, newTestClock()))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "[verbose] run run-1: 1 questions") {
		t.Fatalf("missing run header: %q", text)
	}
	if !strings.Contains(text, "id=q1 area=MATEMATICA expected=B verdict=false") {
		t.Fatalf("missing question line: %q", text)
	}
	if strings.Contains(text, "\x1b[") {
		t.Fatalf("expected no ANSI codes: %q", text)
	}
}
