package live

import (
	"time"

	"enemeval/internal/runner"
)

// QuestionRow holds UI state for a single question.
type QuestionRow struct {
	Index      int
	ID         string
	Area       string
	Status     runner.QuestionEventType
	StartedAt  time.Time
	FinishedAt time.Time
	WallTime   time.Duration
	Error      string
}

// StatusCounts aggregates counts by status bucket.
type StatusCounts struct {
	Queued    int
	Running   int
	Done      int
	Correct   int
	Incorrect int
	Unknown   int
	Failed    int
	Skipped   int
}

// State captures the live UI state for a run.
type State struct {
	RunID      string
	Total      int
	Resumed    int
	Checkpoint string
	Delay      time.Duration
	StartedAt  time.Time
	LastEvent  string
	Rows       []QuestionRow
	Counts     StatusCounts
	Finished   bool

	// Interrupting is set once ctrl+c was pressed and the run is winding down.
	Interrupting bool
}
