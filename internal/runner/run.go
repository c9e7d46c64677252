package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"enemeval/internal/agent"
	"enemeval/internal/eval"
	"enemeval/internal/failure"
	"enemeval/internal/prompt"
	"enemeval/internal/question"
)

// DefaultDelay is the pause between consecutive model calls.
const DefaultDelay = 500 * time.Millisecond

// RunParams configures a batch run.
type RunParams struct {
	RunID     string
	Questions []question.Canonical
	// CheckpointPath disables checkpointing when empty.
	CheckpointPath  string
	Resume          bool
	Delay           time.Duration
	CheckpointEvery int
	Observer        RunObserver
	Logger          *slog.Logger
	Verbose         bool
	VerboseWriter   io.Writer
	NoColor         bool
}

// RunDependencies holds the collaborators a run needs.
type RunDependencies struct {
	NewClient agent.Factory
	Sleep     func(ctx context.Context, d time.Duration) error
	Now       func() time.Time
}

// Outcome summarizes a finished or interrupted run. Results holds every
// result known to the run, including those loaded from a checkpoint.
type Outcome struct {
	RunID       string
	Results     []Result
	Total       int
	Resumed     int
	Processed   int
	Skipped     int
	Checkpoints int
	StartedAt   time.Time
	FinishedAt  time.Time
	Interrupted bool
}

// Run evaluates every question in order, one model call at a time.
//
// A client construction failure aborts before any question is processed.
// A failed model call is recorded as a failure result and the run continues.
// Cancelling ctx stops the run, flushes the checkpoint and returns an
// Interrupt error alongside the partial outcome.
func Run(ctx context.Context, params RunParams, deps RunDependencies) (Outcome, error) {
	deps = deps.withDefaults()
	logger := params.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	every := params.CheckpointEvery
	if every <= 0 {
		every = DefaultCheckpointEvery
	}
	if deps.NewClient == nil {
		return Outcome{}, failure.New(failure.Config, "create model client", "no client factory configured")
	}
	client, err := deps.NewClient()
	if err != nil {
		return Outcome{}, failure.Wrap(failure.Config, "create model client", err)
	}

	s := &runState{
		params:   params,
		deps:     deps,
		logger:   logger,
		verbose:  newVerboseLog(params.Verbose, params.VerboseWriter, params.NoColor),
		observer: params.Observer,
		skip:     map[string]struct{}{},
		outcome: Outcome{
			RunID:     params.RunID,
			Total:     len(params.Questions),
			StartedAt: deps.Now(),
		},
	}
	s.restore()

	s.emitStart()
	for i, q := range params.Questions {
		if err := ctx.Err(); err != nil {
			return s.interrupt(err)
		}
		index := i + 1
		if _, done := s.skip[q.ID]; done {
			s.outcome.Skipped++
			s.emit(index, q, QuestionSkipped, "", 0)
			continue
		}

		started := deps.Now()
		s.emit(index, q, QuestionRunning, "", 0)
		promptText, expected := prompt.Format(q)
		response, genErr := client.Generate(ctx, promptText)
		if genErr != nil && ctx.Err() != nil {
			return s.interrupt(ctx.Err())
		}
		wall := deps.Now().Sub(started)

		result := newResult(q, promptText, expected)
		eventType := QuestionFailed
		if genErr != nil {
			result.Error = genErr.Error()
			s.verbose.printf(styleWarning, "question %d/%d id=%s failed: %v", index, s.outcome.Total, displayID(q.ID), genErr)
		} else {
			result.Response = response
			result.Verdict = eval.Evaluate(response, expected)
			eventType = eventForVerdict(result.Verdict)
			s.verbose.printf(styleForEvent(eventType), "question %d/%d id=%s area=%s expected=%s verdict=%s wall=%s",
				index, s.outcome.Total, displayID(q.ID), result.Area, displayID(expected), result.Verdict, wall.Round(time.Millisecond))
		}
		s.outcome.Results = append(s.outcome.Results, result)
		s.outcome.Processed++
		s.dirty = true
		s.emit(index, q, eventType, result.Error, wall)

		if s.outcome.Processed%every == 0 {
			s.saveCheckpoint()
		}
		if i < len(params.Questions)-1 && params.Delay > 0 {
			if err := deps.Sleep(ctx, params.Delay); err != nil {
				return s.interrupt(err)
			}
		}
	}

	if s.dirty {
		s.saveCheckpoint()
	}
	s.outcome.FinishedAt = deps.Now()
	s.emitEnd()
	return s.outcome, nil
}

func (d RunDependencies) withDefaults() RunDependencies {
	if d.Sleep == nil {
		d.Sleep = sleepContext
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

type runState struct {
	params   RunParams
	deps     RunDependencies
	logger   *slog.Logger
	verbose  verboseLog
	observer RunObserver
	skip     map[string]struct{}
	outcome  Outcome
	// dirty is set when results exist that the checkpoint does not hold.
	dirty bool
}

// restore loads prior results when resuming. Questions without an id are
// never added to the skip set and are always resubmitted.
func (s *runState) restore() {
	path := s.params.CheckpointPath
	if path == "" {
		return
	}
	if !s.params.Resume {
		if _, err := os.Stat(path); err == nil {
			s.logger.Warn("existing checkpoint will be overwritten; pass --resume to continue it", "path", path)
		}
		return
	}
	cp, err := LoadCheckpoint(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("no checkpoint to resume; starting fresh", "path", path)
			return
		}
		s.logger.Warn("ignoring unreadable checkpoint", "path", path, "error", err)
		return
	}
	s.outcome.Results = append(s.outcome.Results, cp.Results...)
	s.outcome.Resumed = len(cp.Results)
	for _, r := range cp.Results {
		if r.QuestionID != "" {
			s.skip[r.QuestionID] = struct{}{}
		}
	}
	s.verbose.printf(styleHeading, "resumed %d results from %s", len(cp.Results), path)
}

func (s *runState) saveCheckpoint() {
	path := s.params.CheckpointPath
	if path == "" {
		return
	}
	cp := Checkpoint{
		Processed: len(s.outcome.Results),
		Total:     s.outcome.Total,
		Results:   s.outcome.Results,
	}
	err := WriteCheckpoint(path, cp)
	if err != nil {
		s.logger.Warn("checkpoint write failed", "path", path, "error", err)
	} else {
		s.dirty = false
		s.outcome.Checkpoints++
		s.verbose.printf(styleDefault, "checkpoint saved: %d results -> %s", cp.Processed, path)
	}
	if s.observer != nil {
		s.observer.OnCheckpoint(CheckpointEvent{Path: path, Processed: cp.Processed, Err: err})
	}
}

func (s *runState) interrupt(cause error) (Outcome, error) {
	s.outcome.Interrupted = true
	if s.dirty {
		s.saveCheckpoint()
	}
	s.outcome.FinishedAt = s.deps.Now()
	s.emitEnd()
	return s.outcome, failure.Wrap(failure.Interrupt, "run interrupted", cause)
}

func (s *runState) emitStart() {
	s.verbose.printf(styleHeading, "run %s: %d questions, delay %s", displayID(s.outcome.RunID), s.outcome.Total, s.params.Delay)
	if s.observer == nil {
		return
	}
	s.observer.OnRunStart(RunInfo{
		RunID:          s.outcome.RunID,
		Total:          s.outcome.Total,
		Resumed:        s.outcome.Resumed,
		CheckpointPath: s.params.CheckpointPath,
		Delay:          s.params.Delay,
	})
	for i, q := range s.params.Questions {
		s.emit(i+1, q, QuestionQueued, "", 0)
	}
}

func (s *runState) emitEnd() {
	s.verbose.printf(styleHeading, "run finished: processed=%d skipped=%d resumed=%d", s.outcome.Processed, s.outcome.Skipped, s.outcome.Resumed)
	if s.observer != nil {
		s.observer.OnRunEnd(s.outcome)
	}
}

func (s *runState) emit(index int, q question.Canonical, eventType QuestionEventType, errText string, wall time.Duration) {
	if s.observer == nil {
		return
	}
	s.observer.OnQuestionEvent(QuestionEvent{
		Index:      index,
		Total:      s.outcome.Total,
		QuestionID: q.ID,
		Area:       q.AreaLabel,
		Type:       eventType,
		Error:      errText,
		WallTime:   wall,
		EmittedAt:  s.deps.Now(),
	})
}

func eventForVerdict(v eval.Verdict) QuestionEventType {
	switch v {
	case eval.True:
		return QuestionCorrect
	case eval.False:
		return QuestionIncorrect
	default:
		return QuestionUnknown
	}
}

func displayID(id string) string {
	if id == "" {
		return "-"
	}
	return id
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
